// Package pipeline wires the voice-command stages together: one transcript
// in, one Outcome out.
//
// Stages: normalize (intent + fragment) → resolve (fragment → case name) →
// timer transition → log-store append. Each command is processed under one
// mutex, so a stop commits fully (session cleared, entry appended) before
// the next command is looked at.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/caseclockapp/caseclock-mvp/internal/casematch"
	"github.com/caseclockapp/caseclock-mvp/internal/command"
	"github.com/caseclockapp/caseclock-mvp/internal/observe"
	"github.com/caseclockapp/caseclock-mvp/internal/registry"
	"github.com/caseclockapp/caseclock-mvp/internal/timelog"
	"github.com/caseclockapp/caseclock-mvp/internal/timer"
)

// Outcome reports what one transcript did to the system.
type Outcome struct {
	// Intent is the classified intent of the transcript.
	Intent command.Intent

	// Fragment is the residual case-name fragment after phrase stripping.
	Fragment string

	// Case is the resolved case name for start and expense intents, or the
	// stopped session's case for stop.
	Case string

	// FromRegistry reports whether Case was matched from the registry
	// rather than taken literally from the fragment.
	FromRegistry bool

	// Score is the best fuzzy-match score (0-100) seen while resolving.
	Score int

	// Category is the detected expense category for expense intents.
	Category timelog.Category

	// Entry is the log entry appended by a stop command, nil otherwise.
	Entry *timelog.Entry

	// AutoClosed is the entry appended for the prior session when a start
	// command switched cases under the autoclose policy.
	AutoClosed *timelog.Entry

	// NoOp is true when the transcript was empty or unrecognized and no
	// state changed.
	NoOp bool

	// Message is a short user-facing description of what happened.
	Message string

	// PersistErr is non-nil when the in-memory mutation succeeded but the
	// durable write did not. The command itself still counts as applied.
	PersistErr error
}

// Option is a functional option for configuring a [Pipeline].
type Option func(*Pipeline)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMetrics sets the metrics instance. Defaults to observe.DefaultMetrics().
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// Pipeline processes transcripts and direct commands against the shared
// timer, registry and log store. Safe for concurrent use; commands are
// serialised.
type Pipeline struct {
	mu sync.Mutex

	norm     *command.Normalizer
	resolver *casematch.Resolver
	cases    registry.Store
	machine  *timer.Machine
	store    timelog.Store

	log     *slog.Logger
	metrics *observe.Metrics
}

// New assembles a Pipeline from its collaborators.
func New(norm *command.Normalizer, resolver *casematch.Resolver, cases registry.Store, machine *timer.Machine, store timelog.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		norm:     norm,
		resolver: resolver,
		cases:    cases,
		machine:  machine,
		store:    store,
	}
	for _, o := range opts {
		o(p)
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// ProcessTranscript runs one transcript through the full pipeline. The
// returned error is reserved for registry or store failures that prevented
// the command from being interpreted at all; expected conditions (empty
// transcript, unrecognized command, stop without a session, persistence
// write failure) are reported in the Outcome.
func (p *Pipeline) ProcessTranscript(ctx context.Context, transcript string) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	intent, fragment := p.norm.Normalize(transcript)
	out := Outcome{Intent: intent, Fragment: fragment}

	switch intent {
	case command.IntentStart:
		return p.handleStart(ctx, out)
	case command.IntentStop:
		return p.handleStop(ctx, out)
	case command.IntentExpense:
		return p.handleExpense(ctx, out, transcript)
	default:
		out.NoOp = true
		if transcript == "" {
			out.Message = "nothing heard"
		} else {
			out.Message = "command not recognized"
		}
		p.metrics.RecordCommand(ctx, intent.String(), "noop")
		return out, nil
	}
}

func (p *Pipeline) handleStart(ctx context.Context, out Outcome) (Outcome, error) {
	known, err := p.cases.List(ctx)
	if err != nil {
		return out, fmt.Errorf("pipeline: list cases: %w", err)
	}

	match := p.resolver.Resolve(out.Fragment, known)
	out.Case = match.Case
	out.FromRegistry = match.FromRegistry
	out.Score = match.Score
	p.metrics.RecordResolution(ctx, match.Score, match.FromRegistry)

	if match.Case == "" {
		out.NoOp = true
		out.Message = "no case name heard"
		p.metrics.RecordCommand(ctx, out.Intent.String(), "noop")
		return out, nil
	}

	closed, err := p.machine.Start(match.Case)
	if err != nil {
		return out, fmt.Errorf("pipeline: start timer: %w", err)
	}

	if closed != nil {
		entry := timelog.NewEntry(closed.Case, closed.Start, closed.End, "", "")
		out.AutoClosed = &entry
		if appendErr := p.store.Append(ctx, entry); appendErr != nil {
			out.PersistErr = appendErr
			p.metrics.PersistFailures.Add(ctx, 1)
		}
		p.metrics.LoggedDuration.Record(ctx, closed.Duration().Seconds())
		out.Message = fmt.Sprintf("closed %s (%s), now logging %s",
			closed.Case, timelog.FormatDuration(closed.Duration()), match.Case)
	} else {
		out.Message = "now logging " + match.Case
	}

	p.log.Info("session started",
		"case", match.Case, "score", match.Score, "from_registry", match.FromRegistry)
	p.metrics.RecordCommand(ctx, out.Intent.String(), "started")
	return out, nil
}

func (p *Pipeline) handleStop(ctx context.Context, out Outcome) (Outcome, error) {
	iv, err := p.machine.Stop()
	if errors.Is(err, timer.ErrNoActiveSession) {
		out.NoOp = true
		out.Message = "no timer is running"
		p.metrics.RecordCommand(ctx, out.Intent.String(), "no_session")
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("pipeline: stop timer: %w", err)
	}

	entry := timelog.NewEntry(iv.Case, iv.Start, iv.End, "", "")
	out.Case = iv.Case
	out.Entry = &entry
	out.Message = fmt.Sprintf("stopped logging %s (%s)",
		iv.Case, timelog.FormatDuration(iv.Duration()))

	if appendErr := p.store.Append(ctx, entry); appendErr != nil {
		out.PersistErr = appendErr
		p.metrics.PersistFailures.Add(ctx, 1)
		p.log.Error("entry kept in memory but not persisted",
			"case", iv.Case, "error", appendErr)
	}

	p.metrics.LoggedDuration.Record(ctx, iv.Duration().Seconds())
	p.log.Info("session stopped", "case", iv.Case, "duration", iv.Duration())
	p.metrics.RecordCommand(ctx, out.Intent.String(), "stopped")
	return out, nil
}

// handleExpense resolves the case and category for an expense command. The
// amount and notes arrive later through [Pipeline.RecordExpense], since they
// are collected interactively rather than spoken.
func (p *Pipeline) handleExpense(ctx context.Context, out Outcome, transcript string) (Outcome, error) {
	known, err := p.cases.List(ctx)
	if err != nil {
		return out, fmt.Errorf("pipeline: list cases: %w", err)
	}

	match := p.resolver.Resolve(out.Fragment, known)
	out.Case = match.Case
	out.FromRegistry = match.FromRegistry
	out.Score = match.Score
	out.Category = timelog.DetectCategory(transcript)
	p.metrics.RecordResolution(ctx, match.Score, match.FromRegistry)

	if match.Case == "" {
		out.NoOp = true
		out.Message = "no case name heard"
		p.metrics.RecordCommand(ctx, out.Intent.String(), "noop")
		return out, nil
	}

	out.Message = fmt.Sprintf("expense for %s (%s)", match.Case, out.Category)
	p.metrics.RecordCommand(ctx, out.Intent.String(), "expense_pending")
	return out, nil
}

// RecordExpense appends an expense entry for caseName. Persistence failures
// are returned but, for stores with an in-memory mirror, the entry is still
// retained.
func (p *Pipeline) RecordExpense(ctx context.Context, caseName string, category timelog.Category, amount, notes string) (timelog.ExpenseEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := timelog.NewExpenseEntry(caseName, category, amount, notes, time.Now())
	if err := p.store.AppendExpense(ctx, entry); err != nil {
		p.metrics.PersistFailures.Add(ctx, 1)
		return entry, err
	}
	p.log.Info("expense recorded", "case", caseName, "category", category, "amount", amount)
	return entry, nil
}

// Active exposes the current timer session for status display.
func (p *Pipeline) Active() (timer.Session, bool) {
	return p.machine.Active()
}
