package controllers

import (
	"net/http"
	"strings"

	"github.com/tmaseko/veldmarket-backend/api/responses"
	"github.com/tmaseko/veldmarket-backend/api/validators"
	"github.com/tmaseko/veldmarket-backend/internal/tenders"
	pkgerrors "github.com/tmaseko/veldmarket-backend/pkg/errors"
	"github.com/tmaseko/veldmarket-backend/pkg/logger"
)

// TenderSearch fetches, filters, sorts, and pages public tender releases.
func TenderSearch(svc tenders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tender service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		q := r.URL.Query()
		input := tenders.Input{
			Page:     page,
			PageSize: pageSize,
			Province: strings.TrimSpace(q.Get("province")),
			Filters: tenders.Filters{
				Query:    validators.SanitizeString(q.Get("q"), 200),
				Status:   strings.TrimSpace(q.Get("status")),
				Category: strings.TrimSpace(q.Get("category")),
				SortBy:   strings.TrimSpace(q.Get("sortBy")),
			},
		}

		result, err := svc.Search(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
