package mock

import (
	"context"
	"testing"

	"github.com/caseclockapp/caseclock-mvp/pkg/provider/stt"
)

func TestListenReplaysScript(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := Transcripts("start logging Sierra Club", "", "stop logging")

	r, err := p.Listen(ctx, stt.ListenConfig{})
	if err != nil || r.Outcome != stt.OutcomeTranscript || r.Text != "start logging Sierra Club" {
		t.Fatalf("first window = %+v, %v", r, err)
	}

	r, _ = p.Listen(ctx, stt.ListenConfig{})
	if r.Outcome != stt.OutcomeNoSpeech {
		t.Errorf("second window outcome = %v, want no-speech", r.Outcome)
	}

	r, _ = p.Listen(ctx, stt.ListenConfig{})
	if r.Text != "stop logging" {
		t.Errorf("third window text = %q", r.Text)
	}

	// Exhausted scripts keep returning empty windows.
	r, _ = p.Listen(ctx, stt.ListenConfig{})
	if r.Outcome != stt.OutcomeNoSpeech {
		t.Errorf("exhausted window outcome = %v, want no-speech", r.Outcome)
	}
	if got := p.Listens(); got != 4 {
		t.Errorf("Listens() = %d, want 4", got)
	}
}

func TestListenHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Transcripts("never delivered")
	if _, err := p.Listen(ctx, stt.ListenConfig{}); err == nil {
		t.Error("Listen() error = nil, want context error")
	}
}
