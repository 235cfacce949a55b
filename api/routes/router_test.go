package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/wishlist-backend/api/controllers"
	"github.com/angelmondragon/wishlist-backend/internal/shops"
	"github.com/angelmondragon/wishlist-backend/internal/stats"
	"github.com/angelmondragon/wishlist-backend/internal/wishlist"
	"github.com/angelmondragon/wishlist-backend/pkg/auth"
	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/angelmondragon/wishlist-backend/pkg/db"
	"github.com/angelmondragon/wishlist-backend/pkg/metrics"
	"github.com/angelmondragon/wishlist-backend/pkg/migrate"
)

const testShop = "s1.myshopify.com"

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: "dev"},
		Shopify:   config.ShopifyConfig{APIKey: "api-key", APISecret: "api-secret"},
		RateLimit: config.RateLimitConfig{Window: time.Minute, Limit: 100},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migrate.AutoMigrateModels(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := wishlist.NewRepository(conn)
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{Store: store})
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}
	engine, err := stats.NewEngine(stats.EngineParams{Store: store})
	if err != nil {
		t.Fatalf("stats engine: %v", err)
	}
	shopService, err := shops.NewService(shops.ServiceParams{Store: shops.NewRepository(conn), Tx: db.NewFromGorm(conn)})
	if err != nil {
		t.Fatalf("shops service: %v", err)
	}

	reg := prometheus.NewRegistry()
	router := NewRouter(
		cfg,
		nil,
		metrics.New(reg),
		reg,
		map[string]controllers.Pinger{"db": db.NewFromGorm(conn), "stub": stubPinger{}},
		nil,
		wishlistService,
		engine,
		shopService,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, target, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestWishlistLifecycle(t *testing.T) {
	server := newTestServer(t, testConfig())
	base := server.URL + "/wishlist"
	shopQuery := "?shop=" + testShop

	status, body := doJSON(t, http.MethodPost, base+"/c1/add"+shopQuery,
		`{"product":{"id":1,"price":1000,"title":"Tee","handle":"tee","featured_image":"//cdn.example/x.jpg","variants":[{"id":9}]}}`, nil)
	if status != http.StatusOK {
		t.Fatalf("add: expected 200 got %d %v", status, body)
	}

	status, body = doJSON(t, http.MethodGet, base+"/c1"+shopQuery, "", nil)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", status)
	}
	items := body["wishlist"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %v", items)
	}
	item := items[0].(map[string]any)
	if item["id"] != "1" || item["variantId"] != "9" || item["price"] != "10.00" || item["addedToCartAt"] != nil {
		t.Fatalf("unexpected item %v", item)
	}
	if item["image"] != "https://cdn.example/x.jpg" {
		t.Fatalf("unexpected image %v", item["image"])
	}

	status, body = doJSON(t, http.MethodPost, base+"/add-to-cart"+shopQuery, `{"productId":1}`, nil)
	if status != http.StatusOK || body["updatedCount"] != float64(1) {
		t.Fatalf("add-to-cart: unexpected %d %v", status, body)
	}

	_, body = doJSON(t, http.MethodGet, base+"/c1"+shopQuery, "", nil)
	item = body["wishlist"].([]any)[0].(map[string]any)
	if item["addedToCartAt"] == nil {
		t.Fatalf("expected addedToCartAt to be set")
	}

	status, body = doJSON(t, http.MethodPost, base+"/c1/remove"+shopQuery, `{"productId":"1"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("remove: expected 200 got %d", status)
	}
	if remaining := body["wishlist"].([]any); len(remaining) != 0 {
		t.Fatalf("expected empty wishlist, got %v", remaining)
	}
}

func TestAddSameProductTwiceKeepsOneItem(t *testing.T) {
	server := newTestServer(t, testConfig())
	target := server.URL + "/api/wishlist/c1/add?shop=" + testShop

	doJSON(t, http.MethodPost, target, `{"product":{"id":1,"price":1000,"title":"Old","variants":[{"id":9}]}}`, nil)
	status, body := doJSON(t, http.MethodPost, target, `{"product":{"id":1,"price":1250,"title":"New","variants":[{"id":9}]}}`, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	items := body["wishlist"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	item := items[0].(map[string]any)
	if item["title"] != "New" || item["price"] != "12.50" {
		t.Fatalf("expected second add to win, got %v", item)
	}
}

func TestStorefrontErrors(t *testing.T) {
	server := newTestServer(t, testConfig())
	base := server.URL + "/wishlist"

	cases := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		message string
	}{
		{"missing shop", http.MethodGet, base + "/c1", "", http.StatusBadRequest, "Shop parameter required"},
		{"foreign customer", http.MethodGet, base + "/c1?shop=" + testShop + "&logged_in_customer_id=c2", "", http.StatusForbidden, "Unauthorized access"},
		{"invalid json", http.MethodPost, base + "/c1/add?shop=" + testShop, "{", http.StatusBadRequest, "Invalid JSON payload"},
		{"missing product", http.MethodPost, base + "/c1/add?shop=" + testShop, `{}`, http.StatusBadRequest, "Product data required"},
		{"missing variant", http.MethodPost, base + "/c1/add?shop=" + testShop, `{"product":{"id":1}}`, http.StatusBadRequest, "Product variant required"},
		{"missing product id", http.MethodPost, base + "/c1/remove?shop=" + testShop, `{}`, http.StatusBadRequest, "Product ID required"},
		{"cart without product", http.MethodPost, base + "/add-to-cart?shop=" + testShop, `{}`, http.StatusBadRequest, "Product ID is required"},
		{"cart get", http.MethodGet, base + "/add-to-cart?shop=" + testShop, "", http.StatusMethodNotAllowed, "Method not allowed"},
		{"cart get without shop", http.MethodGet, base + "/add-to-cart", "", http.StatusMethodNotAllowed, "Method not allowed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, tc.method, tc.target, tc.body, nil)
			if status != tc.status {
				t.Fatalf("expected %d got %d (%v)", tc.status, status, body)
			}
			if body["success"] != false || body["message"] != tc.message {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

func TestAppProxySignatureEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.Shopify.VerifyProxySignature = true
	server := newTestServer(t, cfg)

	status, _ := doJSON(t, http.MethodGet, server.URL+"/wishlist/c1?shop="+testShop, "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected unsigned request to fail, got %d", status)
	}

	query := url.Values{}
	query.Set("shop", testShop)
	query.Set("timestamp", "1700000000")
	query.Set(auth.ProxySignatureParam, auth.SignProxyQuery(cfg.Shopify.APISecret, query))
	status, _ = doJSON(t, http.MethodGet, server.URL+"/wishlist/c1?"+query.Encode(), "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected signed request to pass, got %d", status)
	}

	status, body := doJSON(t, http.MethodGet, server.URL+"/wishlist/add-to-cart?shop="+testShop, "", nil)
	if status != http.StatusMethodNotAllowed || body["message"] != "Method not allowed" {
		t.Fatalf("expected unsigned cart GET to be 405, got %d %v", status, body)
	}
}

func TestAdminDashboardAndSettings(t *testing.T) {
	cfg := testConfig()
	server := newTestServer(t, cfg)

	status, _ := doJSON(t, http.MethodGet, server.URL+"/app/dashboard", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session token, got %d", status)
	}

	token, err := auth.MintSessionToken(cfg.Shopify, time.Now().UTC(), testShop, time.Minute)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	headers := map[string]string{"Authorization": "Bearer " + token}

	status, body := doJSON(t, http.MethodGet, server.URL+"/app/dashboard?period=0", "", headers)
	if status != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d", status)
	}
	statsBody := body["stats"].(map[string]any)
	if statsBody["totalItems"] != float64(0) || statsBody["addToCartRate"] != "0.00" || body["period"] != "0" {
		t.Fatalf("unexpected dashboard %v", body)
	}
	if body["settings"].(map[string]any)["buttonText"] != "Add to Wishlist" {
		t.Fatalf("expected default settings, got %v", body["settings"])
	}

	status, body = doJSON(t, http.MethodPut, server.URL+"/app/settings", `{"pageTitle":"Saved"}`, headers)
	if status != http.StatusOK || body["settings"].(map[string]any)["pageTitle"] != "Saved" {
		t.Fatalf("settings update: unexpected %d %v", status, body)
	}

	_, body = doJSON(t, http.MethodGet, server.URL+"/app/settings", "", headers)
	if body["settings"].(map[string]any)["pageTitle"] != "Saved" {
		t.Fatalf("expected persisted settings, got %v", body)
	}
}

func TestOpsRoutes(t *testing.T) {
	server := newTestServer(t, testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		status, body := doJSON(t, http.MethodGet, server.URL+path, "", nil)
		if status != http.StatusOK || body["success"] != true {
			t.Fatalf("%s: unexpected %d %v", path, status, body)
		}
	}

	doJSON(t, http.MethodGet, server.URL+"/wishlist/c1?shop="+testShop, "", nil)
	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `wishlist_http_requests_total{method="GET",route="/wishlist/{customerId}",status="200"}`) {
		t.Fatalf("expected route-labelled request counter, got:\n%s", raw)
	}
}
