package timer

import (
	"errors"
	"testing"
	"time"
)

// fakeClock returns a fixed sequence of instants, one per Now call.
type fakeClock struct {
	times []time.Time
	idx   int
}

func (c *fakeClock) Now() time.Time {
	t := c.times[c.idx]
	if c.idx < len(c.times)-1 {
		c.idx++
	}
	return t
}

func clockAt(times ...time.Time) *fakeClock {
	return &fakeClock{times: times}
}

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)

func TestStartStopProducesOneInterval(t *testing.T) {
	t.Parallel()

	m := New(WithClock(clockAt(base, base.Add(25*time.Minute))))

	closed, err := m.Start("Sierra Club")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if closed != nil {
		t.Fatalf("Start() from Idle returned interval %+v, want nil", closed)
	}

	iv, err := m.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if iv.Case != "Sierra Club" {
		t.Errorf("Case = %q, want %q", iv.Case, "Sierra Club")
	}
	if got, want := iv.Duration(), 25*time.Minute; got != want {
		t.Errorf("Duration() = %v, want %v", got, want)
	}

	if _, running := m.Active(); running {
		t.Error("machine still running after Stop")
	}
}

func TestStopWhileIdle(t *testing.T) {
	t.Parallel()

	m := New()
	if _, err := m.Stop(); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Stop() error = %v, want ErrNoActiveSession", err)
	}
}

func TestStartEmptyCaseName(t *testing.T) {
	t.Parallel()

	m := New()
	if _, err := m.Start(""); err == nil {
		t.Error("Start(\"\") error = nil, want error")
	}
	if _, running := m.Active(); running {
		t.Error("failed Start left a session running")
	}
}

func TestSwitchDiscardDropsPriorInterval(t *testing.T) {
	t.Parallel()

	m := New(WithClock(clockAt(base, base.Add(10*time.Minute), base.Add(30*time.Minute))))

	if _, err := m.Start("Alpha"); err != nil {
		t.Fatalf("Start(Alpha) error = %v", err)
	}
	closed, err := m.Start("Beta")
	if err != nil {
		t.Fatalf("Start(Beta) error = %v", err)
	}
	if closed != nil {
		t.Fatalf("discard policy returned interval %+v, want nil", closed)
	}

	iv, err := m.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if iv.Case != "Beta" {
		t.Errorf("Case = %q, want %q", iv.Case, "Beta")
	}
	if got, want := iv.Duration(), 20*time.Minute; got != want {
		t.Errorf("Duration() = %v, want %v", got, want)
	}
}

func TestSwitchAutoCloseReturnsPriorInterval(t *testing.T) {
	t.Parallel()

	m := New(
		WithClock(clockAt(base, base.Add(10*time.Minute))),
		WithSwitchPolicy(SwitchAutoClose),
	)

	if _, err := m.Start("Alpha"); err != nil {
		t.Fatalf("Start(Alpha) error = %v", err)
	}
	closed, err := m.Start("Beta")
	if err != nil {
		t.Fatalf("Start(Beta) error = %v", err)
	}
	if closed == nil {
		t.Fatal("autoclose policy returned nil interval")
	}
	if closed.Case != "Alpha" {
		t.Errorf("closed.Case = %q, want %q", closed.Case, "Alpha")
	}
	if got, want := closed.Duration(), 10*time.Minute; got != want {
		t.Errorf("closed.Duration() = %v, want %v", got, want)
	}

	// The new session starts at the same instant the old one closed.
	sess, running := m.Active()
	if !running {
		t.Fatal("no session running after switch")
	}
	if sess.Case != "Beta" {
		t.Errorf("Active().Case = %q, want %q", sess.Case, "Beta")
	}
	if !sess.StartedAt.Equal(closed.End) {
		t.Errorf("StartedAt = %v, want %v", sess.StartedAt, closed.End)
	}
}

func TestActiveReportsSession(t *testing.T) {
	t.Parallel()

	m := New(WithClock(clockAt(base)))

	if _, running := m.Active(); running {
		t.Fatal("fresh machine reports a running session")
	}

	if _, err := m.Start("Sierra Club"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	sess, running := m.Active()
	if !running {
		t.Fatal("Active() = false after Start")
	}
	if sess.Case != "Sierra Club" || !sess.StartedAt.Equal(base) {
		t.Errorf("Active() = %+v, want Sierra Club at %v", sess, base)
	}
}

func TestParseSwitchPolicy(t *testing.T) {
	t.Parallel()

	if p, err := ParseSwitchPolicy("discard"); err != nil || p != SwitchDiscard {
		t.Errorf("ParseSwitchPolicy(discard) = %v, %v", p, err)
	}
	if p, err := ParseSwitchPolicy("autoclose"); err != nil || p != SwitchAutoClose {
		t.Errorf("ParseSwitchPolicy(autoclose) = %v, %v", p, err)
	}
	if _, err := ParseSwitchPolicy("keep"); err == nil {
		t.Error("ParseSwitchPolicy(keep) error = nil, want error")
	}
}
