package frontend

import (
	"context"
	"testing"
	"time"

	"nerva/internal/dispatcher"
	"nerva/internal/llmclient"
	"nerva/internal/skills"
)

type scriptedASR struct {
	utterances []string
	idx        int
}

func (a *scriptedASR) TranscribeUntilSilence(ctx context.Context, silenceMS, maxMS int) (string, error) {
	if a.idx >= len(a.utterances) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	u := a.utterances[a.idx]
	a.idx++
	return u, nil
}

type recordingTTS struct {
	said []string
}

func (t *recordingTTS) Speak(ctx context.Context, text string) error {
	t.said = append(t.said, text)
	return nil
}

func newTestDispatcher() *dispatcher.Dispatcher {
	llm := &llmclient.MockTextLLM{Responses: []string{`{"needs_clarification": false}`}}
	deps := &skills.Deps{LLM: llm}
	return dispatcher.New(llm, deps, nil)
}

func TestVoiceControlAgent_DispatchesAfterWakeWord(t *testing.T) {
	asr := &scriptedASR{utterances: []string{"just some noise", "nerva what is the capital of France"}}
	tts := &recordingTTS{}
	agent := NewVoiceControlAgent(newTestDispatcher(), asr, tts)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_ = agent.Run(ctx)

	if len(tts.said) == 0 {
		t.Fatal("expected the agent to speak a result after the wake word")
	}
}

func TestVoiceControlAgent_ExitUtteranceStopsLoop(t *testing.T) {
	asr := &scriptedASR{utterances: []string{"goodbye"}}
	tts := &recordingTTS{}
	agent := NewVoiceControlAgent(newTestDispatcher(), asr, tts)

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("expected a clean exit on goodbye, got %v", err)
	}
	if len(tts.said) != 1 || tts.said[0] != "Goodbye." {
		t.Errorf("expected a goodbye farewell, got %v", tts.said)
	}
}

func TestVoiceControlAgent_BargeInSkipsWakeWord(t *testing.T) {
	asr := &scriptedASR{utterances: []string{"what is the capital of France", "quit"}}
	tts := &recordingTTS{}
	agent := NewVoiceControlAgent(newTestDispatcher(), asr, tts)
	agent.BargeIn = true

	if err := agent.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(tts.said) < 2 {
		t.Fatalf("expected a task reply before the farewell, got %v", tts.said)
	}
}

func TestAmbientMonitor_RunsOnTick(t *testing.T) {
	d := newTestDispatcher()
	monitor := NewAmbientMonitor(d)
	monitor.Interval = 20 * time.Millisecond
	monitor.Task = "what is the capital of France"

	ctx, cancel := context.WithCancel(context.Background())
	monitor.Start(ctx)
	time.Sleep(60 * time.Millisecond)
	cancel()
	monitor.Stop()
}

func TestHotkeyManager_RegisterAndLookup(t *testing.T) {
	m := NewHotkeyManager()
	called := false
	m.Register("*", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err := m.handlers["*"](context.Background()); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Error("expected handler to run")
	}
}
