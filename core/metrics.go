package core

import "context"

const (
	MetricRequestTotal      = "remitlink.request.total"
	MetricRequestDurationMS = "remitlink.request.duration_ms"
	MetricAuthTotal         = "remitlink.auth.total"
)

// MetricsRecorder receives counters and histograms. Tags are copies and may
// be retained.
type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// OutcomeTag is the "outcome" tag value for err: "ok", the error kind, or
// "error" for untyped failures.
func OutcomeTag(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return "error"
}

var _ MetricsRecorder = NopMetricsRecorder{}
