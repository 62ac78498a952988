package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCommandCounters(t *testing.T) {
	before := counterValue(t, CommandsTotal.WithLabelValues("swap"))
	CommandsTotal.WithLabelValues("swap").Inc()
	after := counterValue(t, CommandsTotal.WithLabelValues("swap"))
	assert.Equal(t, before+1, after)
}

func TestExecutionCounters(t *testing.T) {
	before := counterValue(t, ExecutionsTotal.WithLabelValues("stake", "pending"))
	ExecutionsTotal.WithLabelValues("stake", "pending").Inc()
	after := counterValue(t, ExecutionsTotal.WithLabelValues("stake", "pending"))
	assert.Equal(t, before+1, after)
}

func TestMetricsEndpoint(t *testing.T) {
	SwapVolumeLamports.Add(100)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "treasuryagent_swap_volume_lamports_total")
}
