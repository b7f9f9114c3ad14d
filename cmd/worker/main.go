// Command worker runs the newsdesk content pipeline on its cron schedules:
// story digestion, article generation and tier classification.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Saul-Punybz/newsdesk/internal/app"
	"github.com/Saul-Punybz/newsdesk/internal/config"
	"github.com/Saul-Punybz/newsdesk/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("worker: load config", "err", err)
		os.Exit(1)
	}

	// Structured JSON logging.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("worker: starting newsdesk worker", "targets", len(cfg.Pipeline.Targets))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.Build(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("worker: build failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	sched := scheduler.New(scheduler.WithRunTimeout(cfg.Pipeline.RunTimeout))
	for _, t := range a.Tasks {
		if err := sched.Register(t); err != nil {
			slog.Error("worker: register task", "task", t.Name(), "err", err)
			os.Exit(1)
		}
	}
	sched.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	slog.Info("worker: received shutdown signal", "signal", sig.String())

	sched.Stop(30 * time.Second)
	slog.Info("worker: shutdown complete")
}
