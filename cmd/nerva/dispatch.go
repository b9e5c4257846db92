package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"nerva/internal/dispatcher"
	"nerva/internal/tasktypes"
)

var dispatchFlags struct {
	nonInteractive bool
	headless       bool
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <utterance>",
	Short: "Run a single natural-language command through the dispatcher",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDispatch,
}

func init() {
	f := dispatchCmd.Flags()
	f.BoolVar(&dispatchFlags.nonInteractive, "non-interactive", false, "fail with a clarification error instead of blocking on stdin")
	f.BoolVar(&dispatchFlags.headless, "headless", true, "run the browser headless")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, dispatchFlags.headless)
	if err != nil {
		return err
	}
	defer a.Close()

	if dispatchFlags.nonInteractive {
		a.Dispatcher.Clarifier = nonInteractiveClarifier
	}

	command := strings.Join(args, " ")
	result, err := a.Dispatcher.Dispatch(ctx, command, tasktypes.TaskContext{Source: "cli"})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", result.Route, result.Summary)
	if result.Answer != "" && result.Answer != result.Summary {
		fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
	}
	return nil
}

func nonInteractiveClarifier(_ context.Context, question string) (string, error) {
	return "", fmt.Errorf("%w: %s", dispatcher.ErrAmbiguous, question)
}
