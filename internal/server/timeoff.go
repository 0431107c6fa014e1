package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"crewplan/internal/domain"
	"crewplan/internal/engine"
)

func registerTimeOff(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "request-time-off",
		Method:        http.MethodPost,
		Path:          "/timeoff",
		Summary:       "Request time off",
		Description:   "Records a pending request. Overlapping pending or approved entries fail with 422 unless force is set.",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		Body RequestTimeOffRequest `json:"body"`
	}) (*struct {
		Body TimeOffResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		entry, verdict, err := e.RequestTimeOff(ctx, engine.TimeOffRequestOptions{
			MemberID:    input.Body.MemberID,
			Type:        input.Body.Type,
			StartDate:   input.Body.StartDate,
			EndDate:     input.Body.EndDate,
			Description: input.Body.Description,
			ActorID:     actorID,
			Force:       input.Body.Force,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TimeOffResponse `json:"body"`
		}{Body: TimeOffResponse{Entry: entry, Validation: verdict}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-time-off-status",
		Method:      http.MethodPost,
		Path:        "/timeoff/{entry_id}/status",
		Summary:     "Approve or reject time off",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		EntryID string `path:"entry_id"`
		Body    struct {
			Status string `json:"status" enum:"approved,rejected"`
		} `json:"body"`
	}) (*struct {
		Body domain.TimeOffEntry `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		entry, err := e.SetTimeOffStatus(ctx, input.EntryID, input.Body.Status, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.TimeOffEntry `json:"body"`
		}{Body: entry}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-member-time-off",
		Method:      http.MethodGet,
		Path:        "/members/{member_id}/timeoff",
		Summary:     "List a member's time off",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		MemberID string `path:"member_id"`
	}) (*struct {
		Body []domain.TimeOffEntry `json:"body"`
	}, error) {
		if _, err := e.Repo.GetMember(ctx, input.MemberID); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListTimeOffByMember(ctx, input.MemberID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.TimeOffEntry `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-time-off",
		Method:      http.MethodPost,
		Path:        "/timeoff/validate",
		Summary:     "Validate time off without writing",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body ValidateTimeOffRequest `json:"body"`
	}) (*struct {
		Body ValidationVerdictResponse `json:"body"`
	}, error) {
		candidate := domain.TimeOffEntry{
			MemberID:  input.Body.MemberID,
			Type:      input.Body.Type,
			StartDate: input.Body.StartDate,
			EndDate:   input.Body.EndDate,
			Status:    "pending",
		}
		verdict, err := e.ValidateTimeOffCandidate(ctx, input.Body.MemberID, candidate, input.Body.ExcludeID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ValidationVerdictResponse `json:"body"`
		}{Body: ValidationVerdictResponse{TimeOff: &verdict}}, nil
	})
}
