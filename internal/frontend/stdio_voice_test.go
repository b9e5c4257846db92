package frontend

import (
	"context"
	"testing"
)

func TestPrintTTS_Speak_NeverErrors(t *testing.T) {
	if err := (PrintTTS{}).Speak(context.Background(), "hello"); err != nil {
		t.Errorf("Speak: %v", err)
	}
}

func TestStdinASR_TranscribeUntilSilence_CancelledContext(t *testing.T) {
	asr := NewStdinASR()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := asr.TranscribeUntilSilence(ctx, 3000, 30000)
	if err == nil {
		t.Error("expected an error from an already-cancelled context")
	}
}
