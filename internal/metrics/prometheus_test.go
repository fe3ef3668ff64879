package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-web/internal/metrics"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/items/1", "/items/2", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP shelfmark_http_requests_total Total number of HTTP requests
# TYPE shelfmark_http_requests_total counter
shelfmark_http_requests_total{method="GET",route="/items/:id",status="204"} 2
shelfmark_http_requests_total{method="GET",route="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "shelfmark_http_requests_total"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "shelfmark_http_request_duration_seconds")
}

func TestObserveTier(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveTier("dealer")
	m.ObserveTier("dealer")
	m.ObserveTier("collector")

	expected := `
# HELP shelfmark_tier_resolutions_total Tier data resolved for a render pass, by effective tier
# TYPE shelfmark_tier_resolutions_total counter
shelfmark_tier_resolutions_total{tier="collector"} 1
shelfmark_tier_resolutions_total{tier="dealer"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "shelfmark_tier_resolutions_total"))
}

func TestMutationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := gin.New()
	router.Use(m.MutationMiddleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.PUT("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/x", nil))
	}

	expected := `
# HELP shelfmark_tier_admin_mutations_total Admin changes to tier features and limits
# TYPE shelfmark_tier_admin_mutations_total counter
shelfmark_tier_admin_mutations_total{method="PUT",status="200"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "shelfmark_tier_admin_mutations_total"))
}
