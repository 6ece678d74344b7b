package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func metricNames(rm metricdata.ResourceMetrics) map[string]bool {
	names := make(map[string]bool)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	return names
}

func TestRecordCycle(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCycle(ctx, "completed")
	m.RecordCycle(ctx, "interrupted")
	m.RecordCycle(ctx, "completed")

	names := metricNames(collect(t, reader))
	if !names["sable.cycles"] {
		t.Fatalf("sable.cycles not recorded; got %v", names)
	}
}

func TestStageHistograms(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordingDuration.Record(ctx, 2.1)
	m.STTDuration.Record(ctx, 0.4)
	m.LLMDuration.Record(ctx, 0.9)
	m.SpeakDuration.Record(ctx, 3.0)

	names := metricNames(collect(t, reader))
	for _, want := range []string{
		"sable.recording.duration",
		"sable.stt.duration",
		"sable.llm.duration",
		"sable.speak.duration",
	} {
		if !names[want] {
			t.Errorf("%s not recorded", want)
		}
	}
}

func TestRecordStateChange(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStateChange(ctx, "", "wake_listening")
	m.RecordStateChange(ctx, "wake_listening", "capturing")

	rm := collect(t, reader)
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "sable.state" {
				continue
			}
			data, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("sable.state data type = %T", met.Data)
			}
			for _, dp := range data.DataPoints {
				if v, ok := dp.Attributes.Value("state"); ok {
					sums[v.AsString()] = dp.Value
				}
			}
		}
	}
	if sums["wake_listening"] != 0 || sums["capturing"] != 1 {
		t.Fatalf("state gauge = %v", sums)
	}
}

func TestProviderCounters(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordProviderRequest(ctx, "deepgram", "stt", "ok")
	m.RecordProviderError(ctx, "groq", "llm")

	names := metricNames(collect(t, reader))
	if !names["sable.provider.requests"] || !names["sable.provider.errors"] {
		t.Fatalf("provider counters missing; got %v", names)
	}
}
