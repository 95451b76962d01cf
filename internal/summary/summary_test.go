package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
	"github.com/caseclockapp/caseclock-mvp/pkg/provider/llm"
	"github.com/caseclockapp/caseclock-mvp/pkg/provider/llm/mock"
)

func testEntries() []timelog.Entry {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	return []timelog.Entry{
		timelog.NewEntry("Sierra Club", start, start.Add(25*time.Minute), "", ""),
		timelog.NewEntry("Acme Corp", start.Add(time.Hour), start.Add(2*time.Hour), "", ""),
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "  Worked on two matters.  "},
	}

	got, err := New(p).Summarize(ctx, testEntries())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Worked on two matters." {
		t.Errorf("Summarize() = %q, want trimmed response", got)
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("provider saw %d calls, want 1", len(calls))
	}
	req := calls[0].Req
	if req.SystemPrompt != "You're a helpful assistant who summarizes legal time logs." {
		t.Errorf("SystemPrompt = %q", req.SystemPrompt)
	}
	if req.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", req.Temperature)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("Messages = %+v, want one user message", req.Messages)
	}
	content := req.Messages[0].Content
	if !strings.HasPrefix(content, "Summarize this log in 1-2 sentences:\n") {
		t.Errorf("prompt = %q, missing instruction prefix", content)
	}
	if !strings.Contains(content, "Sierra Club from 2026-03-14 09:00:00 to 2026-03-14 09:25:00 (0:25:00)") {
		t.Errorf("prompt = %q, missing flattened entry", content)
	}
}

func TestSummarizeEmptyLog(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{}
	if _, err := New(p).Summarize(context.Background(), nil); !errors.Is(err, ErrEmptyLog) {
		t.Errorf("Summarize(empty) error = %v, want ErrEmptyLog", err)
	}
	if len(p.Calls()) != 0 {
		t.Error("provider was called for an empty log")
	}
}

func TestSummarizeProviderError(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteErr: errors.New("backend down")}
	if _, err := New(p).Summarize(context.Background(), testEntries()); err == nil {
		t.Error("Summarize() error = nil, want provider failure")
	}
}

func TestSummarizeEmptyResponse(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "   "}}
	if _, err := New(p).Summarize(context.Background(), testEntries()); err == nil {
		t.Error("Summarize() error = nil, want empty-response failure")
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	got := Flatten(testEntries())
	want := "Sierra Club from 2026-03-14 09:00:00 to 2026-03-14 09:25:00 (0:25:00)\n" +
		"Acme Corp from 2026-03-14 10:00:00 to 2026-03-14 11:00:00 (1:00:00)\n"
	if got != want {
		t.Errorf("Flatten() = %q, want %q", got, want)
	}
}
