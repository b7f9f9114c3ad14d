// Package scheduler runs pipeline tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled work.
type Task interface {
	Name() string
	Schedule() string
	ExecuteOnStartup() bool
	Execute(ctx context.Context) error
}

// Scheduler runs registered tasks on their cron schedules. Runs of the
// same task may overlap; tasks are expected to be idempotent.
type Scheduler struct {
	cron   *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	stopping chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	timeout      time.Duration
	startupDelay time.Duration
	tasks        []Task
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRunTimeout bounds every task run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// WithStartupDelay sets how long Start waits before running startup tasks.
func WithStartupDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.startupDelay = d }
}

// New returns a stopped scheduler. Runs default to a 3h timeout and
// startup tasks to a 5s delay.
func New(opts ...Option) *Scheduler {
	logger := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		ctx:          ctx,
		cancel:       cancel,
		stopping:     make(chan struct{}),
		timeout:      3 * time.Hour,
		startupDelay: 5 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register validates the task's schedule and adds it.
func (s *Scheduler) Register(t Task) error {
	if _, err := cron.ParseStandard(t.Schedule()); err != nil {
		return fmt.Errorf("scheduler: task %s: bad schedule %q: %w", t.Name(), t.Schedule(), err)
	}
	_, err := s.cron.AddFunc(t.Schedule(), func() {
		s.wg.Add(1)
		defer s.wg.Done()
		_ = s.RunOnce(s.ctx, t)
	})
	if err != nil {
		return fmt.Errorf("scheduler: add %s: %w", t.Name(), err)
	}
	s.tasks = append(s.tasks, t)
	slog.Info("scheduler: task registered", "task", t.Name(), "schedule", t.Schedule(), "on_startup", t.ExecuteOnStartup())
	return nil
}

// Tasks returns the registered tasks in registration order.
func (s *Scheduler) Tasks() []Task {
	return append([]Task(nil), s.tasks...)
}

// Start starts the cron loop and runs every startup task once in the
// background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler: started", "jobs", len(s.cron.Entries()))

	for _, t := range s.tasks {
		if !t.ExecuteOnStartup() {
			continue
		}
		s.wg.Add(1)
		go func(t Task) {
			defer s.wg.Done()

			select {
			case <-time.After(s.startupDelay):
			case <-s.stopping:
				return
			}
			slog.Info("scheduler: running task on startup", "task", t.Name())
			_ = s.RunOnce(s.ctx, t)
		}(t)
	}
}

// RunOnce executes t with the run timeout. Errors and panics are logged
// and returned; they never affect later runs.
func (s *Scheduler) RunOnce(ctx context.Context, t Task) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	slog.Info("scheduler: task triggered", "task", t.Name())

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Name(), r)
		}
		if err != nil {
			slog.Error("scheduler: task failed", "task", t.Name(), "duration", time.Since(start).Round(time.Millisecond), "err", err)
			return
		}
		slog.Info("scheduler: task complete", "task", t.Name(), "duration", time.Since(start).Round(time.Millisecond))
	}()

	return t.Execute(ctx)
}

// Stop prevents future runs, including startup runs still waiting on
// their delay. In-flight runs get grace to finish on their own; runs still
// going after that are cancelled and given another grace to return.
func (s *Scheduler) Stop(grace time.Duration) {
	s.stopOnce.Do(func() { close(s.stopping) })
	cronCtx := s.cron.Stop()
	defer s.cancel()

	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("scheduler: all in-flight runs complete")
		return
	case <-time.After(grace):
		slog.Warn("scheduler: grace period over, cancelling in-flight runs")
	}

	s.cancel()
	select {
	case <-done:
		slog.Info("scheduler: cancelled runs returned")
	case <-time.After(grace):
		slog.Warn("scheduler: timed out waiting for cancelled runs")
	}
}

// cronLogger routes cron's own logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
