package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/caseclockapp/caseclock-mvp/pkg/provider/llm"
)

func TestCompleteRecordsCalls(t *testing.T) {
	t.Parallel()

	p := &Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "ok"},
	}

	req := llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hello"}},
	}
	resp, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q, want ok", resp.Content)
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("Calls() = %d, want 1", len(calls))
	}
	if calls[0].Req.Messages[0].Content != "hello" {
		t.Errorf("recorded request = %+v", calls[0].Req)
	}

	p.Reset()
	if len(p.Calls()) != 0 {
		t.Error("Calls() not empty after Reset")
	}
}

func TestCompleteInjectedError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("backend down")
	p := &Provider{CompleteErr: wantErr}

	_, err := p.Complete(context.Background(), llm.CompletionRequest{})
	if !errors.Is(err, wantErr) {
		t.Errorf("Complete() error = %v, want injected error", err)
	}
}
