package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SourcesPolledTotal.WithLabelValues("success").Inc()
	m.LastRunMatches.Set(3)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SourcesPolledTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.LastRunMatches), 0)

	// A second set of metrics needs its own registry.
	assert.Panics(t, func() { New(reg) })
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		gotBody = buf.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.LastRunMatches.Set(2)

	require.NoError(t, Push(context.Background(), srv.URL, "imagewatch", reg))
	assert.Equal(t, "/metrics/job/imagewatch", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPush_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	New(reg)
	assert.Error(t, Push(context.Background(), srv.URL, "imagewatch", reg))
}
