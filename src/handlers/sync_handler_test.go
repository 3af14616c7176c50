package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/dealsync/src/logger"
	"github.com/username/dealsync/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type fakeSyncService struct {
	report    *models.SyncReport
	err       error
	cached    *models.SyncReport
	ranDryRun []bool
}

func (f *fakeSyncService) Run(dryRun bool) (*models.SyncReport, error) {
	f.ranDryRun = append(f.ranDryRun, dryRun)
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeSyncService) LastReport() (*models.SyncReport, bool) {
	return f.cached, f.cached != nil
}

func newTestRouter(svc *fakeSyncService, token string) http.Handler {
	h := NewSyncHandler(svc, false)
	r := chi.NewRouter()
	r.Get("/health", HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(TokenAuthMiddleware(token))
			r.Post("/sync", h.HandleRunSync)
			r.Get("/sync/report", h.HandleGetLastReport)
		})
	})
	return r
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestRouter(&fakeSyncService{}, "secret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSyncRequiresToken(t *testing.T) {
	svc := &fakeSyncService{report: &models.SyncReport{RunID: "r1"}}
	router := newTestRouter(svc, "secret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Empty(t, svc.ranDryRun)
}

func TestSyncRunsWithValidToken(t *testing.T) {
	svc := &fakeSyncService{report: &models.SyncReport{RunID: "r1", Status: models.RunCompleted}}
	router := newTestRouter(svc, "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, []bool{false}, svc.ranDryRun)
}

func TestSyncDryRunOverride(t *testing.T) {
	svc := &fakeSyncService{report: &models.SyncReport{RunID: "r1"}}
	router := newTestRouter(svc, "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync?dry_run=true", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{true}, svc.ranDryRun)
}

func TestSyncRejectsBadDryRunValue(t *testing.T) {
	svc := &fakeSyncService{report: &models.SyncReport{RunID: "r1"}}
	router := newTestRouter(svc, "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync?dry_run=maybe", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.ranDryRun)
}

func TestSyncRunFailure(t *testing.T) {
	svc := &fakeSyncService{err: errors.New("store unreachable")}
	router := newTestRouter(svc, "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetLastReport(t *testing.T) {
	svc := &fakeSyncService{}
	router := newTestRouter(svc, "secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sync/report", nil)
	req.Header.Set("Authorization", "Bearer secret")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.cached = &models.SyncReport{RunID: "r9"}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r9", got.RunID)
}
