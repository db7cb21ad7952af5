package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/commissary-backend/api/controllers"
	"github.com/angelmondragon/commissary-backend/internal/dashboard"
	"github.com/angelmondragon/commissary-backend/internal/eventlog"
	"github.com/angelmondragon/commissary-backend/internal/ledger"
	"github.com/angelmondragon/commissary-backend/internal/orders"
	"github.com/angelmondragon/commissary-backend/internal/purchases"
	"github.com/angelmondragon/commissary-backend/pkg/config"
	"github.com/angelmondragon/commissary-backend/pkg/db"
	"github.com/angelmondragon/commissary-backend/pkg/db/dbtest"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/commissary-backend/pkg/redis"
	"github.com/angelmondragon/commissary-backend/pkg/storage/storagetest"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type memoryIdempotency struct {
	data map[string]string
}

func (m *memoryIdempotency) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", pkgredis.Nil
}

func (m *memoryIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	m.data[key] = str
	return true, nil
}

func (m *memoryIdempotency) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryIdempotency) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("test:%s:%s", scope, id)
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test", Port: "0"},
		Storage: config.StorageConfig{MaxUploadMB: 1},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://kitchen.local"}},
	}
}

func newTestRouter(t *testing.T, idem pkgredis.IdempotencyStore) (http.Handler, *prometheus.Registry) {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	now := func() time.Time { return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) }
	files := storagetest.NewMemory()
	reg := prometheus.NewRegistry()

	stock, err := ledger.NewService(ledger.NewRepository(conn), logg, ledger.Options{Location: time.UTC, Now: now})
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	logs, err := eventlog.NewService(eventlog.NewRepository(conn), files, logg, time.UTC, now)
	if err != nil {
		t.Fatalf("eventlog service: %v", err)
	}
	buys, err := purchases.NewService(purchases.NewRepository(conn), files, logg, time.UTC, now)
	if err != nil {
		t.Fatalf("purchases service: %v", err)
	}
	docs, err := orders.NewService(db.Wrap(conn), orders.NewRepository(conn), logg, time.UTC, now)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	dash, err := dashboard.NewService(stock, buys, logs, docs, time.UTC, now)
	if err != nil {
		t.Fatalf("dashboard service: %v", err)
	}

	router := NewRouter(
		testConfig(),
		logg,
		reg,
		metrics.NewHTTPMetrics(reg),
		map[string]controllers.Pinger{"db": stubPinger{}},
		idem,
		files,
		stock,
		logs,
		buys,
		docs,
		dash,
	)
	return router, reg
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
		if resp.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: expected request id header", path)
		}
	}
}

func TestMaterialFormPostRedirectsToMaterials(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	form := url.Values{
		"item": {"Napkins"}, "uoi": {"pack"},
		"beginning": {"30"}, "incoming": {"0"}, "outgoing": {"5"}, "waste": {"0"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materials", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := serve(router, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d: %s", resp.Code, resp.Body.String())
	}
	if loc := resp.Header().Get("Location"); loc != "/api/v1/materials" {
		t.Fatalf("unexpected redirect %q", loc)
	}

	inventory := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/1", nil))
	if inventory.Code != http.StatusNotFound {
		t.Fatalf("material record must not be visible as inventory, got %d", inventory.Code)
	}

	del := httptest.NewRequest(http.MethodPost, "/api/v1/materials/1/delete", strings.NewReader(""))
	del.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = serve(router, del)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 on delete got %d", resp.Code)
	}
	if got := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/materials/1", nil)); got.Code != http.StatusNotFound {
		t.Fatalf("expected deleted record to 404, got %d", got.Code)
	}
}

func TestCreateReplaysWithIdempotencyKey(t *testing.T) {
	router, _ := newTestRouter(t, &memoryIdempotency{data: map[string]string{}})

	body := `{"item":"Oil","quantity":1,"unit_price":"15"}`
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "purchase-1")
		return serve(router, req)
	}

	first := post()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}
	second := post()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay header")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %s vs %s", second.Body.String(), first.Body.String())
	}

	list := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/purchases", nil))
	if strings.Count(list.Body.String(), `"item":"Oil"`) != 1 {
		t.Fatalf("expected exactly one purchase, got %s", list.Body.String())
	}
}

func TestMetricsEndpointExposesRouteCounters(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	resp := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/api/v1/dashboard"`) {
		t.Fatalf("expected dashboard route in metrics output")
	}
}

func TestBodyLimitRejectsOversizedJSON(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	huge := `{"item":"` + strings.Repeat("a", 3<<20) + `","uoi":"kg"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader(huge))
	req.Header.Set("Content-Type", "application/json")
	resp := serve(router, req)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/orders", nil)
	req.Header.Set("Origin", "http://kitchen.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := serve(router, req)
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://kitchen.local" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestLogoutAcceptsGetAndPost(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		resp := serve(router, httptest.NewRequest(method, "/api/v1/auth/logout", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s logout: expected 200 got %d", method, resp.Code)
		}
	}
}
