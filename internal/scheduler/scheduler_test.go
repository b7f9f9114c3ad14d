package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingTask struct {
	name     string
	schedule string
	startup  bool
	runs     atomic.Int32
	fail     error
	panics   bool
}

func (t *countingTask) Name() string           { return t.name }
func (t *countingTask) Schedule() string       { return t.schedule }
func (t *countingTask) ExecuteOnStartup() bool { return t.startup }

func (t *countingTask) Execute(ctx context.Context) error {
	t.runs.Add(1)
	if t.panics {
		panic("kaboom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("run without deadline")
	}
	return t.fail
}

func waitFor(t *testing.T, cond func() bool, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New()
	if err := s.Register(&countingTask{name: "bad", schedule: "every tuesday"}); err == nil {
		t.Fatal("expected error")
	}
	if err := s.Register(&countingTask{name: "ok", schedule: "0 */2 * * *"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].Name() != "ok" {
		t.Fatalf("tasks = %v", got)
	}
}

func TestRunOnceReportsErrorsAndPanics(t *testing.T) {
	s := New(WithRunTimeout(time.Second))

	failing := &countingTask{name: "failing", fail: errors.New("stage broke")}
	if err := s.RunOnce(context.Background(), failing); err == nil {
		t.Fatal("expected error")
	}

	panicking := &countingTask{name: "panicking", panics: true}
	if err := s.RunOnce(context.Background(), panicking); err == nil {
		t.Fatal("expected panic to surface as error")
	}

	ok := &countingTask{name: "ok"}
	if err := s.RunOnce(context.Background(), ok); err != nil {
		t.Fatal(err)
	}
}

func TestStartRunsStartupTasks(t *testing.T) {
	s := New(WithStartupDelay(0))
	eager := &countingTask{name: "eager", schedule: "0 0 1 1 *", startup: true}
	lazy := &countingTask{name: "lazy", schedule: "0 0 1 1 *"}
	for _, task := range []Task{eager, lazy} {
		if err := s.Register(task); err != nil {
			t.Fatal(err)
		}
	}

	s.Start()
	waitFor(t, func() bool { return eager.runs.Load() == 1 }, 2*time.Second)
	s.Stop(time.Second)

	if lazy.runs.Load() != 0 {
		t.Errorf("lazy task ran %d times", lazy.runs.Load())
	}
}

func TestFailingTaskStaysScheduled(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for two cron ticks")
	}
	s := New()
	task := &countingTask{name: "flaky", schedule: "@every 1s", fail: errors.New("upstream down")}
	if err := s.Register(task); err != nil {
		t.Fatal(err)
	}

	s.Start()
	defer s.Stop(time.Second)
	waitFor(t, func() bool { return task.runs.Load() >= 2 }, 5*time.Second)
}

// slowTask runs for d unless its context ends first, and records which
// happened.
type slowTask struct {
	d         time.Duration
	started   atomic.Bool
	cancelled atomic.Bool
	finished  atomic.Bool
}

func (t *slowTask) Name() string           { return "slow" }
func (t *slowTask) Schedule() string       { return "0 0 1 1 *" }
func (t *slowTask) ExecuteOnStartup() bool { return true }

func (t *slowTask) Execute(ctx context.Context) error {
	t.started.Store(true)
	select {
	case <-time.After(t.d):
		t.finished.Store(true)
		return nil
	case <-ctx.Done():
		t.cancelled.Store(true)
		return ctx.Err()
	}
}

func TestStopLetsInFlightRunFinish(t *testing.T) {
	s := New(WithStartupDelay(0))
	task := &slowTask{d: 200 * time.Millisecond}
	if err := s.Register(task); err != nil {
		t.Fatal(err)
	}
	s.Start()
	waitFor(t, task.started.Load, 2*time.Second)

	s.Stop(5 * time.Second)
	if !task.finished.Load() || task.cancelled.Load() {
		t.Fatalf("finished=%v cancelled=%v", task.finished.Load(), task.cancelled.Load())
	}
}

func TestStopCancelsRunsAfterGrace(t *testing.T) {
	s := New(WithStartupDelay(0))
	task := &slowTask{d: time.Hour}
	if err := s.Register(task); err != nil {
		t.Fatal(err)
	}
	s.Start()
	waitFor(t, task.started.Load, 2*time.Second)

	start := time.Now()
	s.Stop(100 * time.Millisecond)
	if !task.cancelled.Load() {
		t.Fatal("run not cancelled after grace")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Stop took %v", elapsed)
	}
}

func TestStopSkipsPendingStartupRuns(t *testing.T) {
	s := New(WithStartupDelay(time.Hour))
	task := &countingTask{name: "delayed", schedule: "0 0 1 1 *", startup: true}
	if err := s.Register(task); err != nil {
		t.Fatal(err)
	}
	s.Start()
	s.Stop(time.Second)
	if task.runs.Load() != 0 {
		t.Errorf("startup run fired after Stop: %d", task.runs.Load())
	}
}
