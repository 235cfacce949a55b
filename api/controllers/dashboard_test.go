package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/wishlist-backend/api/middleware"
	"github.com/angelmondragon/wishlist-backend/internal/shops"
	"github.com/angelmondragon/wishlist-backend/internal/stats"
	pkgerrors "github.com/angelmondragon/wishlist-backend/pkg/errors"
)

type stubStats struct {
	result    stats.Stats
	gotShop   string
	gotPeriod int
	calls     int
}

func (s *stubStats) Compute(_ context.Context, shop string, periodDays int) stats.Stats {
	s.calls++
	s.gotShop = shop
	s.gotPeriod = periodDays
	return s.result
}

type stubSettings struct {
	settings shops.Settings
	update   shops.SettingsUpdate
	err      error
}

func (s *stubSettings) Get(context.Context, string) shops.Settings { return s.settings }

func (s *stubSettings) Update(_ context.Context, _ string, update shops.SettingsUpdate) (shops.Settings, error) {
	s.update = update
	if s.err != nil {
		return shops.Settings{}, s.err
	}
	return update.Apply(s.settings), nil
}

func adminRequest(method, target, body, shop string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if shop != "" {
		req = req.WithContext(middleware.WithShopDomain(req.Context(), shop))
	}
	return req
}

func TestDashboardReturnsStatsAndSettings(t *testing.T) {
	engine := &stubStats{result: stats.Stats{
		TotalItems:    10,
		TopProducts:   []stats.TopProduct{{ID: "1", Title: "Tee", Count: 4, Percentage: "40.00"}},
		AddToCartRate: "30.00",
	}}
	settings := &stubSettings{settings: shops.DefaultSettings()}

	rec := httptest.NewRecorder()
	Dashboard(engine, settings, nil).ServeHTTP(rec, adminRequest(http.MethodGet, "/app/dashboard?period=7", "", testShop))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if engine.gotShop != testShop || engine.gotPeriod != 7 {
		t.Fatalf("unexpected compute args %q %d", engine.gotShop, engine.gotPeriod)
	}
	body := decodeBody(t, rec)
	if body["period"] != "7" {
		t.Fatalf("unexpected period %v", body["period"])
	}
	statsBody := body["stats"].(map[string]any)
	if statsBody["addToCartRate"] != "30.00" || statsBody["totalItems"] != float64(10) {
		t.Fatalf("unexpected stats %v", statsBody)
	}
	settingsBody := body["settings"].(map[string]any)
	if settingsBody["pageTitle"] != "My Wishlist" {
		t.Fatalf("unexpected settings %v", settingsBody)
	}
}

func TestDashboardDefaultsPeriod(t *testing.T) {
	engine := &stubStats{result: stats.Empty()}
	rec := httptest.NewRecorder()
	Dashboard(engine, &stubSettings{}, nil).ServeHTTP(rec, adminRequest(http.MethodGet, "/app/dashboard", "", testShop))

	if engine.gotPeriod != stats.DefaultPeriodDays {
		t.Fatalf("expected default period, got %d", engine.gotPeriod)
	}
	if body := decodeBody(t, rec); body["period"] != "30" {
		t.Fatalf("unexpected period %v", body["period"])
	}
}

func TestDashboardWithoutShop(t *testing.T) {
	engine := &stubStats{}
	rec := httptest.NewRecorder()
	Dashboard(engine, &stubSettings{}, nil).ServeHTTP(rec, adminRequest(http.MethodGet, "/app/dashboard?period=90", "", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if engine.calls != 0 {
		t.Fatalf("stats must not be computed without a shop")
	}
	body := decodeBody(t, rec)
	if body["period"] != "30" {
		t.Fatalf("unexpected period %v", body["period"])
	}
	if settings := body["settings"].(map[string]any); len(settings) != 0 {
		t.Fatalf("expected empty settings, got %v", settings)
	}
	if top := body["stats"].(map[string]any)["topProducts"].([]any); len(top) != 0 {
		t.Fatalf("expected empty top products")
	}
}

func TestSettingsGetRequiresShop(t *testing.T) {
	rec := httptest.NewRecorder()
	SettingsGet(&stubSettings{}, nil).ServeHTTP(rec, adminRequest(http.MethodGet, "/app/settings", "", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestSettingsUpdate(t *testing.T) {
	settings := &stubSettings{settings: shops.DefaultSettings()}
	rec := httptest.NewRecorder()
	SettingsUpdate(settings, nil).ServeHTTP(rec, adminRequest(http.MethodPut, "/app/settings", `{"buttonStyle":"icon","iconOnly":true}`, testShop))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if settings.update.ButtonStyle == nil || *settings.update.ButtonStyle != "icon" {
		t.Fatalf("unexpected update %+v", settings.update)
	}
	body := decodeBody(t, rec)
	if got := body["settings"].(map[string]any); got["iconOnly"] != true || got["buttonStyle"] != "icon" {
		t.Fatalf("unexpected settings %v", got)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	SettingsUpdate(&stubSettings{}, nil).ServeHTTP(rec, adminRequest(http.MethodPut, "/app/settings", `{"buttonStyle":"banner"}`, testShop))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSettingsUpdateStorageFailure(t *testing.T) {
	settings := &stubSettings{err: pkgerrors.New(pkgerrors.CodeStorage, "Failed to save settings")}
	rec := httptest.NewRecorder()
	SettingsUpdate(settings, nil).ServeHTTP(rec, adminRequest(http.MethodPut, "/app/settings", `{}`, testShop))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
