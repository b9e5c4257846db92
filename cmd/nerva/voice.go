package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nerva/internal/frontend"
)

var voiceFlags struct {
	bargeIn  bool
	silence  int
	max      int
	headless bool
}

var voiceCmd = &cobra.Command{
	Use:   "voice",
	Short: "Start a wake-word-gated voice control loop over stdin/stdout",
	RunE:  runVoice,
}

func init() {
	f := voiceCmd.Flags()
	f.BoolVar(&voiceFlags.bargeIn, "barge-in", false, "treat every utterance as a command instead of waiting for the wake word")
	f.IntVar(&voiceFlags.silence, "silence", 3000, "milliseconds of silence that end a capture")
	f.IntVar(&voiceFlags.max, "max", 30000, "maximum milliseconds per capture")
	f.BoolVar(&voiceFlags.headless, "headless", true, "run the browser headless")
}

func runVoice(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, voiceFlags.headless)
	if err != nil {
		return err
	}
	defer a.Close()

	agent := frontend.NewVoiceControlAgent(a.Dispatcher, frontend.NewStdinASR(), frontend.PrintTTS{})
	agent.BargeIn = voiceFlags.bargeIn
	agent.SilenceMS = voiceFlags.silence
	agent.MaxMS = voiceFlags.max
	return agent.Run(ctx)
}
