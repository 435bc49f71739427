package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prajwalbasnet/kinbech-backend/api/responses"
	"github.com/prajwalbasnet/kinbech-backend/api/validators"
	"github.com/prajwalbasnet/kinbech-backend/internal/payouts"
	pkgerrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/logger"
	"github.com/prajwalbasnet/kinbech-backend/pkg/pagination"
)

type decidePayoutRequest struct {
	Decision  string  `json:"decision" validate:"required,oneof=paid rejected"`
	AdminNote *string `json:"admin_note" validate:"omitempty,max=2000"`
}

// AdminListPendingPayouts returns the queue of undecided payout requests.
func AdminListPendingPayouts(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPending(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminDecidePayout settles a pending payout request.
func AdminDecidePayout(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}

		rawID := strings.TrimSpace(chi.URLParam(r, "requestId"))
		requestID, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id"))
			return
		}

		var body decidePayoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Decide(r.Context(), payouts.DecideInput{
			RequestID: requestID,
			Decision:  body.Decision,
			AdminNote: body.AdminNote,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
