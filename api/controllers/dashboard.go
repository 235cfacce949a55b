package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/api/responses"
	"github.com/angelmondragon/wishlist-backend/api/validators"
	"github.com/angelmondragon/wishlist-backend/internal/shops"
	"github.com/angelmondragon/wishlist-backend/internal/stats"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
	"github.com/angelmondragon/wishlist-backend/pkg/logger"
	"github.com/angelmondragon/wishlist-backend/pkg/types"
)

// StatsComputer produces dashboard aggregates. Implementations never fail.
type StatsComputer interface {
	Compute(ctx context.Context, shop string, periodDays int) stats.Stats
}

type dashboardResponse struct {
	types.SuccessEnvelope
	Stats    stats.Stats `json:"stats"`
	Settings any         `json:"settings"`
	Period   string      `json:"period"`
}

type settingsResponse struct {
	types.SuccessEnvelope
	Settings shops.Settings `json:"settings"`
}

// Dashboard returns the merchant's wishlist stats and storefront settings.
// Without a resolved shop it answers the empty stats and empty settings.
func Dashboard(engine StatsComputer, settings shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if engine == nil || settings == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard services unavailable"))
			return
		}

		period := stats.ParsePeriod(validators.QueryString(r, "period"))
		resp := dashboardResponse{
			SuccessEnvelope: types.OK(),
			Stats:           stats.Empty(),
			Settings:        map[string]any{},
			Period:          strconv.Itoa(period),
		}

		shop := middleware.ShopDomainFromContext(ctx)
		if shop == "" {
			resp.Period = strconv.Itoa(stats.DefaultPeriodDays)
			responses.WriteSuccess(w, resp)
			return
		}

		resp.Stats = engine.Compute(ctx, shop, period)
		resp.Settings = settings.Get(ctx, shop)
		responses.WriteSuccess(w, resp)
	}
}

// SettingsGet returns the merchant's storefront settings.
func SettingsGet(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		shop := middleware.ShopDomainFromContext(ctx)
		if shop == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "shop context missing"))
			return
		}

		responses.WriteSuccess(w, settingsResponse{SuccessEnvelope: types.OK(), Settings: svc.Get(ctx, shop)})
	}
}

// SettingsUpdate merges a partial settings document into the stored one.
func SettingsUpdate(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		shop := middleware.ShopDomainFromContext(ctx)
		if shop == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "shop context missing"))
			return
		}

		var payload shops.SettingsUpdate
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.Update(ctx, shop, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, settingsResponse{SuccessEnvelope: types.OK(), Settings: updated})
	}
}
