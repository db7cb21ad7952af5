package cron

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/metrics"
)

type fakeLock struct {
	held     bool
	acquires int
	err      error
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error
	runs atomic.Int32
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs.Add(1)
	return t.err
}

func TestNewServiceRequiresLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc, err := NewService(ServiceParams{Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if svc.Interval() != defaultInterval {
		t.Fatalf("expected default interval, got %s", svc.Interval())
	}
	if _, ok := svc.lock.(*LocalLock); !ok {
		t.Fatalf("expected local lock fallback, got %T", svc.lock)
	}
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success"}
	failure := &testJob{name: "fail", err: errors.New("boom")}
	reg := prometheus.NewRegistry()
	jobMetrics := metrics.NewCronJobMetrics(reg)
	lock := &fakeLock{}

	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(failure, success),
		Lock:     lock,
		Metrics:  jobMetrics,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	err = svc.RunOnce(context.Background())
	if err == nil || !strings.Contains(err.Error(), "fail: boom") {
		t.Fatalf("expected combined job error, got %v", err)
	}
	if success.runs.Load() != 1 || failure.runs.Load() != 1 {
		t.Fatalf("expected both jobs to run once, got success=%d fail=%d", success.runs.Load(), failure.runs.Load())
	}
	if lock.held {
		t.Fatal("lock should be released after the cycle")
	}
	expected := `
# HELP commissary_cron_job_failure_total Failed cron job executions.
# TYPE commissary_cron_job_failure_total counter
commissary_cron_job_failure_total{job="fail"} 1
# HELP commissary_cron_job_success_total Successful cron job executions.
# TYPE commissary_cron_job_success_total counter
commissary_cron_job_success_total{job="success"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"commissary_cron_job_success_total", "commissary_cron_job_failure_total"); err != nil {
		t.Fatalf("unexpected job metrics: %v", err)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "digest"}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Lock:     &fakeLock{held: true},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs.Load() != 0 {
		t.Fatalf("job must not run without the lock, ran %d", job.runs.Load())
	}
}

func TestRunOnceSurfacesLockErrors(t *testing.T) {
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Lock: &fakeLock{err: errors.New("redis down")}})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := svc.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "digest"}
	svc, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for job.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first cycle did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
