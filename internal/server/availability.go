package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"crewplan/internal/engine"
)

func registerAvailability(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "member-availability",
		Method:      http.MethodGet,
		Path:        "/members/{member_id}/availability",
		Summary:     "Member availability snapshot",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		MemberID string `path:"member_id"`
	}) (*struct {
		Body engine.MemberAvailabilityResult `json:"body"`
	}, error) {
		res, err := e.MemberAvailability(ctx, input.MemberID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body engine.MemberAvailabilityResult `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "member-period-availability",
		Method:      http.MethodGet,
		Path:        "/members/{member_id}/availability/period",
		Summary:     "Member availability over a date range",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		MemberID  string `path:"member_id"`
		StartDate string `query:"start_date" required:"true" format:"date"`
		EndDate   string `query:"end_date" required:"true" format:"date"`
	}) (*struct {
		Body PeriodAvailabilityResponse `json:"body"`
	}, error) {
		sum, err := e.MemberPeriodAvailability(ctx, input.MemberID, input.StartDate, input.EndDate)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PeriodAvailabilityResponse `json:"body"`
		}{Body: PeriodAvailabilityResponse{
			MemberID:  input.MemberID,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
			Summary:   sum,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "team-availability",
		Method:      http.MethodGet,
		Path:        "/team/availability",
		Summary:     "Availability snapshot for the whole team",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []engine.MemberAvailabilityResult `json:"body"`
	}, error) {
		res, err := e.TeamAvailability(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []engine.MemberAvailabilityResult `json:"body"`
		}{Body: res}, nil
	})
}
