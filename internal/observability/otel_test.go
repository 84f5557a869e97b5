package observability

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestManager(t *testing.T, cfg *config.Config) *ObservabilityManager {
	t.Helper()
	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName:    "resumeforge-test",
		ServiceVersion: "test",
		Enabled:        true,
		SampleRate:     1.0,
	}, cfg, errors.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })
	require.NotNil(t, om.manualReader)
	return om
}

func collect(t *testing.T, om *ObservabilityManager) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, om.manualReader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func counterTotal(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestObserveCompletion(t *testing.T) {
	om := newTestManager(t, nil)
	ctx := context.Background()

	om.ObserveCompletion(ctx, "generate", 2*time.Second, &ai.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil)
	om.ObserveCompletion(ctx, "analyze", time.Second, nil,
		errors.NewAIError(errors.ErrCodeCompletionTimeout, "timed out", nil))

	metrics := collect(t, om)
	assert.Equal(t, int64(2), counterTotal(t, metrics["resumeforge_ai_requests_total"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumeforge_ai_errors_total"]))
	assert.Contains(t, metrics, "resumeforge_ai_completion_duration_seconds")

	tokens, ok := metrics["resumeforge_ai_token_usage"].(metricdata.Histogram[int64])
	require.True(t, ok)
	assert.Len(t, tokens.DataPoints, 3)
}

func TestObserveWorkflow(t *testing.T) {
	om := newTestManager(t, nil)
	ctx := context.Background()

	om.ObserveStage(ctx, "generate_initial", 0, 0, 0)
	om.ObserveStage(ctx, "validate_ats", 2, 0, 0)
	om.ObserveRun(ctx, 1, "completed", nil)
	om.ObserveRun(ctx, 3, "iteration_limit", stderrors.New("boom"))

	metrics := collect(t, om)
	assert.Equal(t, int64(2), counterTotal(t, metrics["resumeforge_workflow_stages_total"]))
	assert.Equal(t, int64(2), counterTotal(t, metrics["resumeforge_workflow_runs_total"]))
	assert.Contains(t, metrics, "resumeforge_workflow_validation_errors")
	assert.Contains(t, metrics, "resumeforge_workflow_iterations")
}

func TestMetricGroupsCanBeDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.CustomMetrics.AIOperations.Enabled = false
	cfg.Observability.CustomMetrics.Workflow.Enabled = false
	cfg.Observability.CustomMetrics.TrackRateLimits = false

	om := newTestManager(t, cfg)
	ctx := context.Background()
	om.ObserveCompletion(ctx, "generate", time.Second, nil, nil)
	om.ObserveRun(ctx, 1, "completed", nil)
	om.RecordBusinessMetric(ctx, MetricRateLimitHit, false)
	om.RecordBusinessMetric(ctx, MetricJobParsed, true)

	metrics := collect(t, om)
	assert.NotContains(t, metrics, "resumeforge_ai_requests_total")
	assert.NotContains(t, metrics, "resumeforge_workflow_runs_total")
	assert.NotContains(t, metrics, "resumeforge_rate_limit_hits_total")
	assert.Equal(t, int64(1), counterTotal(t, metrics["resumeforge_jobs_parsed_total"]))
}

func TestDisabledManagerIsNoop(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false}, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		om.ObserveCompletion(ctx, "generate", time.Second, nil, nil)
		om.ObserveStage(ctx, "validate_ats", 1, 0, 0)
		om.ObserveRun(ctx, 1, "completed", nil)
		om.RecordBusinessMetric(ctx, MetricResumeExported, true)
	})
	assert.NotNil(t, om.GetMetrics())
	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(ctx))
}

func TestGetObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.ServiceName = "svc"
	cfg.Observability.Enabled = true
	cfg.Observability.Prometheus.Port = "9100"

	got := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "svc", got.ServiceName)
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, "9100", got.Prometheus.Port)

	fallback := GetObservabilityConfig(nil, "dev")
	assert.Equal(t, "resumeforge", fallback.ServiceName)
	assert.Equal(t, "/metrics", fallback.Prometheus.Endpoint)
}
