package controllers

import (
	"net/http"
	"time"

	"github.com/dmarceau/cartline-backend/api/responses"
	"github.com/dmarceau/cartline-backend/api/validators"
	analyticssvc "github.com/dmarceau/cartline-backend/internal/analytics"
	pkgerrors "github.com/dmarceau/cartline-backend/pkg/errors"
	"github.com/dmarceau/cartline-backend/pkg/logger"
)

const (
	defaultTrendingWindowDays = 7
	maxTrendingWindowDays     = 90
	defaultSeriesDays         = 30
	maxSeriesDays             = 365
)

// TopProducts returns the most-viewed products over a trailing window.
func TopProducts(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		since, limit, err := trendingWindowFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.TopProducts(r.Context(), since, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// TopSearches returns the most-frequent search queries over a trailing window.
func TopSearches(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		since, limit, err := trendingWindowFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.TopSearches(r.Context(), since, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// SellerSalesSeries returns the calling seller's daily sales rollup.
func SellerSalesSeries(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		sellerID, _, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		days, err := validators.ParseQueryInt(r, "days", defaultSeriesDays, 1, maxSeriesDays)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		to := time.Now().UTC()
		from := to.AddDate(0, 0, -days)
		points, err := svc.SellerSalesSeries(r.Context(), sellerID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, points)
	}
}

func trendingWindowFromQuery(r *http.Request) (time.Time, int, error) {
	days, err := validators.ParseQueryInt(r, "days", defaultTrendingWindowDays, 1, maxTrendingWindowDays)
	if err != nil {
		return time.Time{}, 0, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 50)
	if err != nil {
		return time.Time{}, 0, err
	}
	return time.Now().UTC().AddDate(0, 0, -days), limit, nil
}
