// Package summary produces a short natural-language synopsis of the time
// log. It sits outside the core pipeline: failures here never touch timer or
// log-store state.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
	"github.com/caseclockapp/caseclock-mvp/pkg/provider/llm"
)

// ErrEmptyLog is returned by Summarize when there are no entries to
// summarize.
var ErrEmptyLog = errors.New("summary: log is empty")

// systemPrompt matches the assistant persona the tracker has always used.
const systemPrompt = "You're a helpful assistant who summarizes legal time logs."

// Summariser produces a synopsis of a sequence of time entries.
type Summariser interface {
	Summarize(ctx context.Context, entries []timelog.Entry) (string, error)
}

// Compile-time assertion that LLMSummariser implements Summariser.
var _ Summariser = (*LLMSummariser)(nil)

// LLMSummariser asks an LLM for a 1-2 sentence synopsis of the flattened
// log.
type LLMSummariser struct {
	provider llm.Provider
}

// New returns an LLMSummariser backed by provider.
func New(provider llm.Provider) *LLMSummariser {
	return &LLMSummariser{provider: provider}
}

// Summarize implements Summariser.
func (s *LLMSummariser) Summarize(ctx context.Context, entries []timelog.Entry) (string, error) {
	if len(entries) == 0 {
		return "", ErrEmptyLog
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: "Summarize this log in 1-2 sentences:\n" + Flatten(entries)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summary: complete: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errors.New("summary: empty response")
	}
	return strings.TrimSpace(resp.Content), nil
}

// Flatten renders entries one per line in the form
// "<case> from <start> to <end> (<duration>)", the text handed to the LLM.
func Flatten(entries []timelog.Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s from %s to %s (%s)\n",
			e.Case,
			e.Start.Format(timelog.TimeLayout),
			e.End.Format(timelog.TimeLayout),
			timelog.FormatDuration(e.Duration()))
	}
	return sb.String()
}
