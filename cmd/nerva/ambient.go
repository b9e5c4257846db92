package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nerva/internal/frontend"
)

var ambientFlags struct {
	task     string
	every    time.Duration
	headless bool
}

var ambientCmd = &cobra.Command{
	Use:   "ambient",
	Short: "Run a task on a fixed interval until interrupted",
	RunE:  runAmbient,
}

func init() {
	f := ambientCmd.Flags()
	f.StringVar(&ambientFlags.task, "task", "", "the command to dispatch on every tick")
	f.DurationVar(&ambientFlags.every, "every", 30*time.Minute, "how often to run the task")
	f.BoolVar(&ambientFlags.headless, "headless", true, "run the browser headless")
	ambientCmd.MarkFlagRequired("task")
}

func runAmbient(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, ambientFlags.headless)
	if err != nil {
		return err
	}
	defer a.Close()

	monitor := frontend.NewAmbientMonitor(a.Dispatcher)
	monitor.Task = ambientFlags.task
	monitor.Interval = ambientFlags.every

	monitor.Start(ctx)
	<-ctx.Done()
	monitor.Stop()
	return ctx.Err()
}
