package controllers

import (
	"net/http"

	"github.com/prajwalbasnet/kinbech-backend/api/responses"
	"github.com/prajwalbasnet/kinbech-backend/api/validators"
	"github.com/prajwalbasnet/kinbech-backend/internal/payments"
	pkgerrors "github.com/prajwalbasnet/kinbech-backend/pkg/errors"
	"github.com/prajwalbasnet/kinbech-backend/pkg/logger"
)

// AdminPaymentsOverview returns the per-vendor settlement summary for a date range.
// The range is inclusive of `from` and inclusive of the whole `to` day.
func AdminPaymentsOverview(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Overview(r.Context(), from, to.AddDate(0, 0, 1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
