// Package cli implements the newsdeskctl operator commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Saul-Punybz/newsdesk/internal/app"
	"github.com/Saul-Punybz/newsdesk/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "newsdeskctl",
	Short: "Operate the newsdesk content pipeline",
	Long: `newsdeskctl runs pipeline tasks on demand and inspects their output.

Configuration comes from the environment, optionally seeded from a .env file
in the working directory.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(newTasksCmd(), newRunCmd(), newSnapshotCmd())
}

// loadConfig reads configuration and installs a text logger on stderr.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// buildApp loads configuration and wires the application.
func buildApp(ctx context.Context) (*app.App, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	a, err := app.Build(buildCtx, cfg)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("build: %w", err)
	}
	return a, cfg, nil
}
