package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// TargetResult is the outcome of one fan-out branch. Err is nil on
// success.
type TargetResult struct {
	Target Target
	Err    error
}

// FanOut runs fn for every target on a pool of at most workers goroutines
// and returns once every branch has finished. A failing or panicking
// branch never cancels its siblings. Results are in target order.
func FanOut(ctx context.Context, targets []Target, workers int, fn func(ctx context.Context, t Target) error) []TargetResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(targets) {
		workers = len(targets)
	}

	results := make([]TargetResult, len(targets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = TargetResult{Target: targets[i], Err: runBranch(ctx, targets[i], fn)}
			}
		}()
	}

	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func runBranch(ctx context.Context, t Target, fn func(ctx context.Context, t Target) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("target %s: panic: %v", t, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, t)
}

// logFailures logs every failed branch and returns how many failed.
func logFailures(stage string, results []TargetResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Error(stage+": target failed", "country", r.Target.Country, "language", r.Target.Language, "err", r.Err)
		}
	}
	return failed
}
