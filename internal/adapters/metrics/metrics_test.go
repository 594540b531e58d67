package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/craftplan-go/internal/application/mediator"
	"github.com/andrescamacho/craftplan-go/internal/domain/crafting"
)

type planQuery struct{}

func TestPlannerMetricsCollector_RecordsPlans(t *testing.T) {
	InitRegistry()
	defer func() { Registry = nil }()

	collector := NewPlannerMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalPlannerCollector(collector)
	defer SetGlobalPlannerCollector(nil)

	RecordPlan(PlanSummary{Mode: "SIMULATE", Outcome: "PARTIAL", Bytes: 12, Invocations: 3, MissingUnits: 4})
	RecordPlanFailure("MODULATE", "too_complex")
	RecordPatternPush("gear", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.plansTotal.WithLabelValues("SIMULATE", "PARTIAL", "false", "false")))
	assert.Equal(t, 4.0, testutil.ToFloat64(collector.missingUnitsTotal.WithLabelValues("SIMULATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.planFailuresTotal.WithLabelValues("MODULATE", "too_complex")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.pushesTotal.WithLabelValues("gear", "rejected")))
}

func TestRecordWithoutCollectorIsNoop(t *testing.T) {
	SetGlobalPlannerCollector(nil)
	assert.NotPanics(t, func() {
		RecordPlan(PlanSummary{})
		RecordPlanFailure("SIMULATE", "error")
	})
	assert.False(t, IsEnabled())
}

func TestPrometheusMiddleware_RecordsStatus(t *testing.T) {
	collector := NewCommandMetricsCollector()
	middleware := PrometheusMiddleware(collector)
	ok := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return "ok", nil }
	fail := func(ctx context.Context, request mediator.Request) (mediator.Response, error) { return nil, errors.New("boom") }
	tooComplex := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, fmt.Errorf("failed to plan: %w", &crafting.PlanTooComplexError{Bytes: 9, Ceiling: 4})
	}
	invalid := func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, &crafting.ErrInvalidRequest{Reason: "amount must be positive"}
	}

	_, err := middleware(context.Background(), &planQuery{}, ok)
	require.NoError(t, err)
	_, err = middleware(context.Background(), &planQuery{}, fail)
	require.Error(t, err)
	_, err = middleware(context.Background(), &planQuery{}, tooComplex)
	require.Error(t, err)
	_, err = middleware(context.Background(), &planQuery{}, invalid)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("planQuery", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("planQuery", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("planQuery", "too_complex")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("planQuery", "rejected")))
}

func TestServer_ServesRegistry(t *testing.T) {
	InitRegistry()
	defer func() { Registry = nil }()

	collector := NewPlannerMetricsCollector()
	require.NoError(t, collector.Register())
	SetGlobalPlannerCollector(collector)
	defer SetGlobalPlannerCollector(nil)
	RecordPlan(PlanSummary{Mode: "SIMULATE", Outcome: "SATISFIED", Bytes: 1, Invocations: 1})

	server, err := NewServer("127.0.0.1", 0, "/metrics")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "craftplan_planner_plans_total")
}

func TestNewServer_RequiresRegistry(t *testing.T) {
	Registry = nil
	_, err := NewServer("127.0.0.1", 0, "/metrics")
	assert.Error(t, err)
}
