package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/blogs/{slug}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, slug := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/blogs/"+slug, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/blogs/{slug}", "GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestLoginAndUploadCounters(t *testing.T) {
	m := New()
	m.Login("success")
	m.Login("invalid")
	m.Login("invalid")
	m.Uploaded(1024)
	m.Uploaded(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.logins.WithLabelValues("invalid")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.uploadedBytes))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Login("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `portfolio_cms_auth_logins_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
