package cli

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Saul-Punybz/newsdesk/internal/config"
	"github.com/Saul-Punybz/newsdesk/internal/pipeline"
	"github.com/Saul-Punybz/newsdesk/internal/scheduler"
)

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the scheduled tasks and their schedules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), cfg)
		},
	}
}

// printTasks lists the tasks the worker would register. It needs no
// database.
func printTasks(w io.Writer, cfg config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSCHEDULE\tON STARTUP")
	rows := []struct {
		name, schedule string
	}{
		{pipeline.TaskStoryDigest, cfg.Pipeline.DigestSchedule},
		{pipeline.TaskArticleGeneration, cfg.Pipeline.GenerationSchedule},
		{pipeline.TaskStoryClassification, cfg.Pipeline.ClassificationSchedule},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", r.name, r.schedule, cfg.Pipeline.RunOnStartup)
	}
	fmt.Fprintf(tw, "\ntargets:\t%d\n", len(cfg.Pipeline.Targets))
	return tw.Flush()
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "run <task>",
		Short:     "Execute one task once and exit",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{pipeline.TaskStoryDigest, pipeline.TaskArticleGeneration, pipeline.TaskStoryClassification},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, cfg, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			task, ok := a.Task(args[0])
			if !ok {
				return fmt.Errorf("unknown task %q", args[0])
			}
			sched := scheduler.New(scheduler.WithRunTimeout(cfg.Pipeline.RunTimeout))
			return sched.RunOnce(ctx, task)
		},
	}
}
