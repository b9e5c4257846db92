package frontend

import (
	"context"
	"fmt"
	"strings"

	"nerva/internal/dispatcher"
	"nerva/internal/safety"
	"nerva/internal/tasktypes"
)

// ASR is the external speech-recognition collaborator. A real
// implementation wraps a local Whisper model; this module only
// defines the contract so the voice loop can be driven by a fake in
// tests. TranscribeUntilSilence captures speech until silenceMS of
// quiet or maxMS total, and reports "no speech" as an empty string,
// never an error.
type ASR interface {
	TranscribeUntilSilence(ctx context.Context, silenceMS, maxMS int) (string, error)
}

// TTS is the external speech-synthesis collaborator.
type TTS interface {
	Speak(ctx context.Context, text string) error
}

// defaultSilenceMS and defaultMaxMS bound a single voice capture.
const (
	defaultSilenceMS = 3000
	defaultMaxMS     = 30000
)

// exitUtterances terminate the voice loop when spoken on their own or
// as the command after the wake word.
var exitUtterances = map[string]bool{"exit": true, "quit": true, "goodbye": true}

// VoiceControlAgent is a wake-word-gated loop: it keeps transcribing
// until the wake word appears in an utterance, then strips the wake
// word and dispatches the remainder as a command. With BargeIn set
// (or when no wake-word detector is available) every utterance is
// treated as a command directly.
type VoiceControlAgent struct {
	Dispatcher *dispatcher.Dispatcher
	ASR        ASR
	TTS        TTS
	WakeWord   string
	BargeIn    bool
	SilenceMS  int
	MaxMS      int
	Safety     *safety.Manager
}

// NewVoiceControlAgent returns an agent using "nerva" as the wake
// word, the default silence/max capture bounds, and the dispatcher's
// own safety manager unless overridden.
func NewVoiceControlAgent(d *dispatcher.Dispatcher, asr ASR, tts TTS) *VoiceControlAgent {
	return &VoiceControlAgent{
		Dispatcher: d,
		ASR:        asr,
		TTS:        tts,
		WakeWord:   "nerva",
		SilenceMS:  defaultSilenceMS,
		MaxMS:      defaultMaxMS,
		Safety:     d.Safety,
	}
}

// Run enters the voice loop until ctx is cancelled or an exit
// utterance is heard.
func (v *VoiceControlAgent) Run(ctx context.Context) error {
	if v.BargeIn {
		fmt.Println("[Voice] Listening (barge-in mode, say exit/quit/goodbye to stop).")
	} else {
		fmt.Println("[Voice] Say the wake word to issue a task (exit/quit/goodbye to stop).")
	}
	wake := strings.ToLower(v.WakeWord)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		text, err := v.ASR.TranscribeUntilSilence(ctx, v.SilenceMS, v.MaxMS)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("ASR error", "error", err)
			continue
		}
		if text == "" {
			continue
		}

		lower := strings.ToLower(strings.TrimSpace(text))
		if exitUtterances[lower] {
			v.speak(ctx, "Goodbye.")
			return nil
		}

		command := lower
		if !v.BargeIn {
			idx := strings.Index(lower, wake)
			if idx < 0 {
				continue
			}
			command = strings.TrimSpace(lower[idx+len(wake):])
			if command == "" {
				command = text
			}
		}
		if exitUtterances[strings.TrimSpace(command)] {
			v.speak(ctx, "Goodbye.")
			return nil
		}
		fmt.Printf("\n[Voice] Command detected: %s\n", command)

		if v.Safety != nil && v.Safety.RequiresConfirmation(command) {
			confirmed, err := v.Safety.Confirm(ctx, command)
			if err != nil {
				log.Warn("voice confirmation failed", "error", err)
				continue
			}
			if !confirmed {
				v.speak(ctx, "Action cancelled.")
				continue
			}
		}

		result, err := v.Dispatcher.Dispatch(ctx, command, tasktypes.TaskContext{
			Source: "voice",
			Meta:   map[string]any{"transcript": text},
		})
		if err != nil {
			v.speak(ctx, fmt.Sprintf("Sorry, that failed: %v", err))
			continue
		}
		v.speak(ctx, fmt.Sprintf("Task routed to %s. %s", result.Route, result.Summary))
		if result.Answer != "" && result.Answer != result.Summary {
			v.speak(ctx, result.Answer)
		}
	}
}

func (v *VoiceControlAgent) speak(ctx context.Context, text string) {
	if v.TTS == nil {
		fmt.Printf("[Voice] %s\n", text)
		return
	}
	if err := v.TTS.Speak(ctx, text); err != nil {
		log.Warn("TTS failed, falling back to print", "error", err)
		fmt.Printf("[Voice] %s\n", text)
	}
}

// DefaultHotkeys returns a HotkeyManager with the "*" macro registered:
// pressing it runs the three core status summaries in sequence.
func DefaultHotkeys(d *dispatcher.Dispatcher) *HotkeyManager {
	manager := NewHotkeyManager()
	manager.Register("*", func(ctx context.Context) error {
		fmt.Println("\n[Hotkey:*] Running quick status macro...")
		commands := []string{
			"Summarize today's calendar",
			"Show unread Gmail messages",
			"List my most recent Google Drive files",
		}
		for _, command := range commands {
			result, err := d.Dispatch(ctx, command, tasktypes.TaskContext{
				Source: "hotkey",
				Meta:   map[string]any{"macro": "*"},
			})
			if err != nil {
				fmt.Printf("[Hotkey:*] Error handling %q: %v\n", command, err)
				continue
			}
			fmt.Printf("[Hotkey:*] %s: %s\n", result.Route, result.Summary)
		}
		return nil
	})
	return manager
}
