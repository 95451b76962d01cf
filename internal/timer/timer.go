// Package timer implements the single-session timing state machine.
//
// The machine is either Idle or Running one session. Starting while already
// running is governed by a [SwitchPolicy]: the historical behavior discards
// the in-progress interval without a trace, while the autoclose policy
// closes it out first and hands the completed interval back to the caller.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoActiveSession is returned by Stop when the machine is Idle. This is a
// warning-level outcome: nothing was running, nothing was lost.
var ErrNoActiveSession = errors.New("timer: no active session")

// SwitchPolicy names what happens when Start is called while a session is
// already running.
type SwitchPolicy string

const (
	// SwitchDiscard drops the in-progress interval with no entry produced.
	// This reproduces the tracker's historical behavior and is the default.
	SwitchDiscard SwitchPolicy = "discard"

	// SwitchAutoClose completes the in-progress interval and returns it
	// from Start so the caller can log it before the new session begins.
	SwitchAutoClose SwitchPolicy = "autoclose"
)

// IsValid reports whether p is a known policy.
func (p SwitchPolicy) IsValid() bool {
	return p == SwitchDiscard || p == SwitchAutoClose
}

// ParseSwitchPolicy converts a config string into a SwitchPolicy.
func ParseSwitchPolicy(s string) (SwitchPolicy, error) {
	p := SwitchPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("timer: unknown switch policy %q (want %q or %q)",
			s, SwitchDiscard, SwitchAutoClose)
	}
	return p, nil
}

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Session is the single in-progress timing interval.
type Session struct {
	Case      string
	StartedAt time.Time
}

// Interval is a completed timing interval.
type Interval struct {
	Case  string
	Start time.Time
	End   time.Time
}

// Duration returns End − Start. Non-negative by construction since End is
// always polled after Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Option is a functional option for configuring a [Machine].
type Option func(*Machine)

// WithClock injects a Clock. Defaults to the system clock.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithSwitchPolicy sets the switch-while-running policy. Defaults to
// SwitchDiscard.
func WithSwitchPolicy(p SwitchPolicy) Option {
	return func(m *Machine) { m.policy = p }
}

// Machine is the timer state machine. All transitions run under one mutex,
// so session clearing and interval emission are atomic with respect to each
// other.
type Machine struct {
	mu      sync.Mutex
	clock   Clock
	policy  SwitchPolicy
	session *Session
}

// New returns an Idle Machine configured with the supplied options.
func New(opts ...Option) *Machine {
	m := &Machine{
		clock:  SystemClock(),
		policy: SwitchDiscard,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start begins a session for caseName. When a session is already running,
// the returned *Interval is non-nil only under SwitchAutoClose and holds the
// prior session's completed interval; under SwitchDiscard it is always nil
// and the prior interval is lost.
func (m *Machine) Start(caseName string) (*Interval, error) {
	if caseName == "" {
		return nil, errors.New("timer: case name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()

	var closed *Interval
	if m.session != nil && m.policy == SwitchAutoClose {
		closed = &Interval{
			Case:  m.session.Case,
			Start: m.session.StartedAt,
			End:   now,
		}
	}

	m.session = &Session{Case: caseName, StartedAt: now}
	return closed, nil
}

// Stop ends the active session and returns its completed interval. Returns
// ErrNoActiveSession when the machine is Idle.
func (m *Machine) Stop() (Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Interval{}, ErrNoActiveSession
	}

	iv := Interval{
		Case:  m.session.Case,
		Start: m.session.StartedAt,
		End:   m.clock.Now(),
	}
	m.session = nil
	return iv, nil
}

// Active returns the current session and whether one is running.
func (m *Machine) Active() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}
