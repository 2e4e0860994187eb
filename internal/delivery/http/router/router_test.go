package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/delivery/http/handler"
	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/pkg/metrics"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type emptySelector struct{}

func (emptySelector) SelectSince(context.Context, time.Time) ([]entity.ReportItem, error) {
	return []entity.ReportItem{}, nil
}

type noopRunner struct{}

func (noopRunner) Run(context.Context) (*entity.RunSummary, error) {
	return &entity.RunSummary{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()

	reportsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(reportsDir, "index.html"), []byte("<div></div>"), 0o644))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := handler.NewHandler(okPinger{}, emptySelector{}, noopRunner{}, nil, zap.NewNop())
	return New(h, m, zap.NewNop(), Options{Gatherer: reg, ReportsDir: reportsDir}), reportsDir
}

func TestRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/reports/latest", http.StatusOK},
		{http.MethodPost, "/api/runs", http.StatusOK},
		{http.MethodGet, "/api/runs", http.StatusMethodNotAllowed},
		{http.MethodGet, "/reports/", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_MetricsUseRoutePattern(t *testing.T) {
	r, _ := newTestRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/health",status="200"} 1`)
}
