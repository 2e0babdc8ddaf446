package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/analyst"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/cache"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/config"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/diagnostics"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	infraRepo "github.com/BruksfildServices01/kingdom-dashboard/internal/infra/repository"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/market"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/middleware"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func id(v int64) *int64        { return &v }
func price(v float64) *float64 { return &v }

type staticLoader struct{ ds source.Dataset }

func (l staticLoader) Load(context.Context) *source.Dataset {
	ds := l.ds
	return &ds
}

func (l staticLoader) CacheKey() string { return "dataset:handlers" }

type nopAuditor struct{}

func (nopAuditor) Dispatch(audit.Event) bool { return true }

type fakeMarket struct{ frame market.Frame }

func (f fakeMarket) Load(context.Context, market.Dataset) (market.Frame, error) { return f.frame, nil }

type fakeRunner struct{}

func (fakeRunner) Run(context.Context) []diagnostics.Check {
	return []diagnostics.Check{{Name: "generative-api", OK: true, Detail: "3 models available"}}
}

type fakeAuditRepo struct{ got infraRepo.AuditFilter }

func (f *fakeAuditRepo) List(_ context.Context, flt infraRepo.AuditFilter) ([]models.AuditLog, int64, error) {
	f.got = flt
	return []models.AuditLog{{ID: 1, Actor: "admin", Action: audit.ActionLogin}}, 1, nil
}

func testData() *dashboard.Data {
	rel := models.Relations{
		Clients: []models.Client{
			{ID: id(1), FirstName: "Ana", LastName: "Gomez"},
			{ID: id(2), FirstName: "Luis", LastName: "Rojas"},
		},
		Barbers:  []models.Barber{{ID: id(10), FirstName: "Juan", LastName: "Perez"}},
		Services: []models.Service{{ID: id(5), Name: "Corte", Price: price(25000)}},
		Venues:   []models.Venue{{ID: id(100), Name: "Centro"}},
		Appointments: []models.Appointment{
			{ID: id(1), ClientID: id(1), BarberID: id(10), ServiceID: id(5), VenueID: id(100), Date: "2024-03-01", Time: "10:00"},
		},
	}
	c := cache.New(cache.NewMemoryStore(), time.Minute, zap.NewNop())
	return dashboard.NewData(staticLoader{ds: source.Dataset{Relations: rel, Backend: "file:test"}}, c, view.DefaultOptions())
}

func newRouter(t *testing.T, cfg *config.Config, auditRepo AuditLister) *gin.Engine {
	t.Helper()
	data := testData()
	narrator := narrative.NewNarrator(nil, time.Second, nil)
	aud := nopAuditor{}

	vh := NewViewHandler(
		dashboard.NewGetView(data),
		dashboard.NewGetFilters(data),
		dashboard.NewGetDashboard(data),
		dashboard.NewRenderChart(data),
		dashboard.NewExportView(data, aud, "UTC"),
		dashboard.NewGetTable(data),
		dashboard.NewListProducts(data),
		dashboard.NewRefreshData(data, aud, zap.NewNop()),
	)
	ah := NewAssistantHandler(
		dashboard.NewAskAnalyst(data, analyst.New(narrator), aud),
		dashboard.NewDraftCampaign(data, narrator),
		dashboard.NewGenerateImage(narrator),
	)
	rh := NewReportHandler(dashboard.NewGenerateReport(data, narrator, nil, aud, "UTC", nil))
	auth := NewAuthHandler(cfg, aud)
	mh := NewMarketHandler(fakeMarket{frame: market.Frame{
		Columns: []string{"municipio", "nombre"},
		Rows:    [][]string{{"Pereira", "A"}, {"Pereira", "B"}, {"Dosquebradas", "C"}},
	}})

	r := gin.New()
	r.POST("/api/auth/login", auth.Login)
	api := r.Group("/api", middleware.AuthMiddleware(cfg))
	api.GET("/me", auth.Me)
	api.GET("/view", vh.View)
	api.GET("/view.xlsx", vh.ExportXLSX)
	api.GET("/dashboard", vh.Dashboard)
	api.GET("/filters", vh.Filters)
	api.GET("/charts/:name", vh.Chart)
	api.GET("/tables/:entity", vh.Table)
	api.POST("/data/refresh", vh.Refresh)
	api.POST("/reports", rh.Create)
	api.POST("/assistant/analyst", ah.Analyst)
	api.POST("/assistant/image", ah.Image)
	api.GET("/market/datasets/:key", mh.Get)
	api.GET("/diagnostics", NewDiagnosticsHandler(fakeRunner{}).Run)
	api.GET("/audit-logs", NewAuditLogsHandler(auditRepo).List)
	return r
}

func do(r http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func openConfig() *config.Config {
	return &config.Config{JWTSecret: "test"}
}

func TestView_LeftJoinRowsAndFilterValidation(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodGet, "/api/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 2, body["total"])

	rows := body["rows"].([]any)
	luis := rows[1].(map[string]any)
	assert.Equal(t, "Luis Rojas", luis["client_name"])
	assert.Nil(t, luis["appointment_id"])
	assert.Nil(t, luis["price"])

	w = do(r, http.MethodGet, "/api/view?from=01/03/2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_filter", decode(t, w)["error_code"])

	w = do(r, http.MethodGet, "/api/view?client_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardAndFilters(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodGet, "/api/dashboard?venue_id=100", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]any)
	assert.EqualValues(t, 25000, summary["revenue"])
	assert.Equal(t, "Juan Perez", summary["top_barber"])

	w = do(r, http.MethodGet, "/api/filters", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["clients"], 2)
}

func TestChartsAndTables(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodGet, "/api/charts/revenue-by-service", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(r, http.MethodGet, "/api/charts/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "unknown_chart", decode(t, w)["error_code"])

	w = do(r, http.MethodGet, "/api/tables/citas", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/tables/appointments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["rows"], 1)
}

func TestExportAndReport(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodGet, "/api/view.xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Vista_Citas_")

	w = do(r, http.MethodPost, "/api/reports", `{"filter":{"client_id":1}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Report-Id"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w = do(r, http.MethodPost, "/api/reports?format=json", `{"narrative":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Contains(t, body["notices"], narrative.NoticeNotConfigured)

	w = do(r, http.MethodPost, "/api/reports", `{"filter":{"from":"mañana"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantWithoutModel(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodPost, "/api/assistant/analyst", `{"prompt":"¿Cuántas citas hubo?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, narrative.NoticeNotConfigured, decode(t, w)["notice"])

	w = do(r, http.MethodPost, "/api/assistant/image", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarketDiagnosticsAndRefresh(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodGet, "/api/market/datasets/risaralda?filter[municipio]=Pereira", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["shown"])
	assert.Equal(t, "Pereira", body["summary"].(map[string]any)["mode"])

	w = do(r, http.MethodGet, "/api/market/datasets/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/diagnostics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["healthy"])

	w = do(r, http.MethodPost, "/api/data/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file:test", decode(t, w)["backend"])
}

func TestAuditLogs(t *testing.T) {
	w := do(newRouter(t, openConfig(), nil), http.MethodGet, "/api/audit-logs", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	repo := &fakeAuditRepo{}
	w = do(newRouter(t, openConfig(), repo), http.MethodGet, "/api/audit-logs?action=login&limit=999&from=2024-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, infraRepo.DefaultAuditLimit, body["limit"])
	assert.Equal(t, "login", repo.got.Action)
	require.NotNil(t, repo.got.From)
}

func TestLoginAndProtectedRoutes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3creto"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{JWTSecret: "test", AdminEmail: "admin@kingdom.co", AdminPasswordHash: string(hash)}
	r := newRouter(t, cfg, nil)

	w := do(r, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"admin@kingdom.co","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auth/login", `{"email":"Admin@Kingdom.co","password":"s3creto"}`)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = do(r, http.MethodGet, "/api/me", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@kingdom.co", decode(t, w)["actor"])

	w = do(r, http.MethodGet, "/api/me", "", "Authorization", "Bearer "+token+"x")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	r := newRouter(t, openConfig(), nil)

	w := do(r, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, middleware.LocalActor, decode(t, w)["actor"])
}
