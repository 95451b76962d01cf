// Package mock provides a scripted stt.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/caseclockapp/caseclock-mvp/pkg/provider/stt"
)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider replays a fixed sequence of results, one per Listen call.
// Once the script is exhausted every further call returns OutcomeNoSpeech.
// Safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	script  []stt.Result
	next    int
	listens int
}

// New returns a Provider that will emit the given results in order.
func New(script ...stt.Result) *Provider {
	return &Provider{script: script}
}

// Transcripts is a convenience constructor that wraps plain strings as
// transcript results. Empty strings become OutcomeNoSpeech windows.
func Transcripts(texts ...string) *Provider {
	script := make([]stt.Result, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			script = append(script, stt.Result{Outcome: stt.OutcomeNoSpeech})
			continue
		}
		script = append(script, stt.Result{Text: t, Outcome: stt.OutcomeTranscript, Confidence: 1})
	}
	return &Provider{script: script}
}

// Listen implements stt.Provider.
func (p *Provider) Listen(ctx context.Context, _ stt.ListenConfig) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.listens++
	if p.next >= len(p.script) {
		return stt.Result{Outcome: stt.OutcomeNoSpeech}, nil
	}
	r := p.script[p.next]
	p.next++
	return r, nil
}

// Listens reports how many times Listen has been called.
func (p *Provider) Listens() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listens
}
