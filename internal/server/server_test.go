package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/smallbiznis/profitable/internal/billing/memory"
	"github.com/smallbiznis/profitable/internal/clock"
	"github.com/smallbiznis/profitable/internal/config"
	"github.com/smallbiznis/profitable/internal/observability"
	"github.com/smallbiznis/profitable/internal/report"
	"github.com/smallbiznis/profitable/internal/revenue/adapters"
	"github.com/smallbiznis/profitable/internal/revenue/adapters/stripe"
	"github.com/smallbiznis/profitable/internal/revenue/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var now = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	store := memory.NewStore()
	customer := billingdomain.Customer{ID: node.Generate(), Processor: "stripe", CreatedAt: now.AddDate(0, 0, -100)}
	store.AddCustomer(customer)
	store.AddSubscription(billingdomain.Subscription{
		ID:         node.Generate(),
		CustomerID: customer.ID,
		Status:     billingdomain.SubscriptionStatusActive,
		CreatedAt:  now.AddDate(0, 0, -90),
		Data:       datatypes.JSON(`{"subscription_items":[{"price":{"unit_amount":2000,"recurring":{"interval":"month"}}}]}`),
	})

	clk := clock.NewFakeClock(now)
	svc := service.NewService(service.Params{
		Provider: store,
		Registry: adapters.NewRegistry(stripe.New()),
		Clock:    clk,
		Log:      zap.NewNop(),
	})
	registry := prometheus.NewRegistry()
	builder := report.NewBuilder(report.Params{
		Service: svc,
		Clock:   clk,
		Log:     zap.NewNop(),
		Gauges:  report.NewGauges(registry, config.Config{Environment: "test"}),
	})

	engine := NewEngine(observability.Config{LogLevel: "debug"}, registry, zap.NewNop())
	return NewServer(ServerParams{Gin: engine, Reports: builder}), store
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	resp := httptest.NewRecorder()
	s.Engine().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, target, nil))
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Error.Type
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	resp := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestGetReport(t *testing.T) {
	s, _ := newTestServer(t)
	resp := get(t, s, "/api/v1/metrics?period=30d")
	require.Equal(t, http.StatusOK, resp.Code)

	var out report.Report
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	entry, ok := out.Lookup(report.MetricMRR)
	require.True(t, ok)
	assert.Equal(t, "$20", entry.Display)
	assert.Equal(t, "720h0m0s", out.Period)
}

func TestGetMetric(t *testing.T) {
	s, _ := newTestServer(t)
	resp := get(t, s, "/api/v1/metrics/estimated_valuation?multiplier=10x")
	require.Equal(t, http.StatusOK, resp.Code)

	var entry report.Entry
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entry))
	assert.Equal(t, report.MetricEstimatedValuation, entry.Name)
	assert.Equal(t, 240000.0, entry.Value)
}

func TestGetMetric_Errors(t *testing.T) {
	s, store := newTestServer(t)

	resp := get(t, s, "/api/v1/metrics/ebitda")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "unknown_metric", decodeError(t, resp))

	resp = get(t, s, "/api/v1/metrics/mrr?period=-3d")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "invalid_period", decodeError(t, resp))

	resp = get(t, s, "/api/v1/metrics?period=soon")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	store.FailWith(errors.New("db down"))
	resp = get(t, s, "/api/v1/metrics/mrr")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "metrics_unavailable", decodeError(t, resp))
}

func TestMetricsEndpointExposesGauges(t *testing.T) {
	s, _ := newTestServer(t)
	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/metrics").Code)

	resp := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `profitable_metric_value{env="test",metric="mrr"} 2000`)
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)
	resp := get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "not_found", decodeError(t, resp))
}
