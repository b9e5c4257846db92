package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "nerva",
	Short: "A local-first multi-modal assistant",
	Long:  "nerva dispatches natural-language commands through intent routing,\nsafety gating, and a registry of skills - calendar, mail, drive,\nlookup, research, browser automation, daily ops, and repo questions.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "path to a YAML config file overlay")

	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(ambientCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(serveMCPCmd)
	rootCmd.AddCommand(serveMetricsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
