package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordCommand(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCommand(ctx, "start", "started")
	m.RecordCommand(ctx, "start", "started")
	m.RecordCommand(ctx, "stop", "no_session")

	rm := collect(t, reader)
	found := findMetric(rm, "caseclock.commands")
	if found == nil {
		t.Fatal("caseclock.commands not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Fatalf("expected 2 attribute sets, got %d", len(sum.DataPoints))
	}
	for _, dp := range sum.DataPoints {
		intent, _ := dp.Attributes.Value(attribute.Key("intent"))
		switch intent.AsString() {
		case "start":
			if dp.Value != 2 {
				t.Errorf("start count = %d, want 2", dp.Value)
			}
		case "stop":
			if dp.Value != 1 {
				t.Errorf("stop count = %d, want 1", dp.Value)
			}
		default:
			t.Errorf("unexpected intent %q", intent.AsString())
		}
	}
}

func TestRecordResolution(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordResolution(ctx, 92, true)
	m.RecordResolution(ctx, 34, false)

	rm := collect(t, reader)

	scores := findMetric(rm, "caseclock.resolver.score")
	if scores == nil {
		t.Fatal("caseclock.resolver.score not found")
	}
	hist, ok := scores.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", scores.Data)
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("score observations = %d, want 2", got)
	}

	fallbacks := findMetric(rm, "caseclock.resolver.fallbacks")
	if fallbacks == nil {
		t.Fatal("caseclock.resolver.fallbacks not found")
	}
	sum, ok := fallbacks.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", fallbacks.Data)
	}
	if got := sum.DataPoints[0].Value; got != 1 {
		t.Errorf("fallbacks = %d, want 1 (only the rejected resolution)", got)
	}
}

func TestRecordListenWindow(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordListenWindow(ctx, "transcript")
	m.RecordListenWindow(ctx, "no-speech")
	m.RecordListenWindow(ctx, "no-speech")

	rm := collect(t, reader)
	found := findMetric(rm, "caseclock.listen.windows")
	if found == nil {
		t.Fatal("caseclock.listen.windows not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("total listen windows = %d, want 3", total)
	}
}

func TestLoggedDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.LoggedDuration.Record(ctx, 1500)

	rm := collect(t, reader)
	found := findMetric(rm, "caseclock.logged.duration")
	if found == nil {
		t.Fatal("caseclock.logged.duration not found")
	}
	if found.Unit != "s" {
		t.Errorf("unit = %q, want s", found.Unit)
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	if got := hist.DataPoints[0].Sum; got != 1500 {
		t.Errorf("sum = %v, want 1500", got)
	}
}

func TestAttr(t *testing.T) {
	kv := Attr("outcome", "started")
	if kv.Key != "outcome" || kv.Value.AsString() != "started" {
		t.Errorf("Attr() = %v", kv)
	}
}
