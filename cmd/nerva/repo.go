package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"nerva/internal/repoquery"
)

var repoCmd = &cobra.Command{
	Use:   "repo <question>",
	Short: "Answer a question about the local source tree",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRepo,
}

func runRepo(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	repoRoot, err := filepath.Abs(".")
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	answer, err := repoquery.Run(ctx, a.Dispatcher.LLM, a.Memory, repoRoot, question)
	if err != nil {
		return fmt.Errorf("run repo query: %w", err)
	}

	files, err := repoquery.Index(repoRoot)
	if err == nil && len(files) > 0 {
		summary := repoquery.SummarizeStructure(files)
		w := table.NewWriter()
		w.SetOutputMirror(cmd.OutOrStdout())
		w.AppendHeader(table.Row{"Extension", "Files"})
		for ext, count := range summary {
			w.AppendRow(table.Row{ext, count})
		}
		w.Render()
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}
