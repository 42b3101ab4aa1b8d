package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestGlobalHelpersDoNotPanic(t *testing.T) {
	// The helpers write through the package-level manager; they must be
	// safe to call from any component at any time.
	RecordEventProcessed()
	RecordEventDuplicate()
	RecordEncodeError()
	RecordBoardWrite()
	RecordRankingsServed()
	RecordFrozenFiltered()
	RecordBoardUpdateLatency(1.5)
	RecordBoardQueryLatency(0.5)
	UpdateBoardMembers("regular_spark_202311_early", 42)
	UpdateQueueSize(10)
	UpdateQueueCapacity(100)
	UpdateQueueUtilization(0.1)
	RecordQueueEnqueue()
	RecordQueueDequeue()
	RecordQueueEnqueueError()
	UpdateWorkerCount(8)
	RecordWorkerProcessingLatency(2.0)
	RecordWorkerError()
	RecordHTTPRequest("rankings", "GET", "200")
	RecordHTTPRequestDuration("rankings", "GET", "200", 3.2)
	RecordErrorByComponent("scoreboard", "redis_zadd")
	UpdateSystemMemoryUsage(1 << 20)
	UpdateSystemGoroutineCount(12)
	RecordSystemGCPauseTime(0.3)
}

func TestGetRegistry(t *testing.T) {
	reg := GetRegistry()
	if reg == nil {
		t.Fatal("expected a registry")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

func TestNewManagerWithCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(
		WithPrometheusRegistry(reg),
		WithNamespace("testns"),
		WithSubsystem("testsub"),
		WithHistogramBuckets([]float64{1, 5, 10}),
	)
	if m == nil {
		t.Fatal("expected a manager")
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		name := f.GetName()
		if len(name) < len("testns_testsub_") || name[:len("testns_testsub_")] != "testns_testsub_" {
			t.Errorf("metric %s missing custom namespace/subsystem", name)
		}
	}
}
