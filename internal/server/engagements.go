package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"crewplan/internal/domain"
	"crewplan/internal/engine"
)

func registerEngagements(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-engagement",
		Method:        http.MethodPost,
		Path:          "/engagements",
		Summary:       "Create engagement",
		Description:   "Allocates a member to a project. Fails with 422 when the allocation exceeds remaining capacity unless force is set.",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		Body CreateEngagementRequest `json:"body"`
	}) (*struct {
		Body EngagementResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		eng, verdict, err := e.CreateEngagement(ctx, engine.EngagementCreateOptions{
			MemberID:     input.Body.MemberID,
			ProjectID:    input.Body.ProjectID,
			HoursPerWeek: input.Body.HoursPerWeek,
			StartDate:    input.Body.StartDate,
			EndDate:      input.Body.EndDate,
			Role:         input.Body.Role,
			ActorID:      actorID,
			Force:        input.Body.Force,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body EngagementResponse `json:"body"`
		}{Body: EngagementResponse{Engagement: eng, Validation: verdict}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-engagement",
		Method:      http.MethodPatch,
		Path:        "/engagements/{engagement_id}",
		Summary:     "Update engagement",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		EngagementID string                  `path:"engagement_id"`
		Body         UpdateEngagementRequest `json:"body"`
	}) (*struct {
		Body EngagementResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		eng, verdict, err := e.UpdateEngagement(ctx, engine.EngagementUpdateOptions{
			ID:           input.EngagementID,
			HoursPerWeek: input.Body.HoursPerWeek,
			StartDate:    input.Body.StartDate,
			EndDate:      input.Body.EndDate,
			ClearEndDate: input.Body.ClearEndDate,
			Role:         input.Body.Role,
			IsActive:     input.Body.IsActive,
			ActorID:      actorID,
			Force:        input.Body.Force,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body EngagementResponse `json:"body"`
		}{Body: EngagementResponse{Engagement: eng, Validation: verdict}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "end-engagement",
		Method:      http.MethodPost,
		Path:        "/engagements/{engagement_id}/end",
		Summary:     "End engagement",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		EngagementID string `path:"engagement_id"`
		Body         struct {
			EndDate string `json:"end_date,omitempty" format:"date"`
		} `json:"body"`
	}) (*struct {
		Body domain.Engagement `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		eng, err := e.EndEngagement(ctx, input.EngagementID, input.Body.EndDate, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Engagement `json:"body"`
		}{Body: eng}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-member-engagements",
		Method:      http.MethodGet,
		Path:        "/members/{member_id}/engagements",
		Summary:     "List a member's engagements",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		MemberID string `path:"member_id"`
	}) (*struct {
		Body []domain.Engagement `json:"body"`
	}, error) {
		if _, err := e.Repo.GetMember(ctx, input.MemberID); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListEngagementsByMember(ctx, input.MemberID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Engagement `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-engagement",
		Method:      http.MethodPost,
		Path:        "/engagements/validate",
		Summary:     "Validate engagement without writing",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body ValidateEngagementRequest `json:"body"`
	}) (*struct {
		Body ValidationVerdictResponse `json:"body"`
	}, error) {
		candidate := domain.Engagement{
			MemberID:     input.Body.MemberID,
			ProjectID:    input.Body.ProjectID,
			HoursPerWeek: input.Body.HoursPerWeek,
			IsActive:     true,
			StartDate:    input.Body.StartDate,
		}
		if input.Body.EndDate != "" {
			candidate.EndDate = &input.Body.EndDate
		}
		verdict, err := e.ValidateEngagementCandidate(ctx, input.Body.MemberID, candidate, input.Body.ExcludeID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ValidationVerdictResponse `json:"body"`
		}{Body: ValidationVerdictResponse{Engagement: &verdict}}, nil
	})
}
