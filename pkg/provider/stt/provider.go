// Package stt defines the Provider interface for the speech-to-text boundary.
//
// CaseClock consumes transcription as a one-shot operation: the user presses a
// key (or the listen loop re-arms), the provider captures one bounded window
// of audio, and the result is a single transcript string — or a classified
// non-result (no speech, unintelligible audio, or a service failure). The
// rest of the pipeline only ever sees the resulting text; a window that
// produced nothing usable is logically a no-op command.
//
// Audio acquisition itself is outside this package: providers read raw
// 16-bit signed little-endian PCM from an [io.Reader] supplied at
// construction time (an OS capture device, a pipe from an external recorder,
// or a test buffer).
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"time"
)

// Outcome classifies the result of one listening window.
type Outcome int

const (
	// OutcomeTranscript means the window produced usable transcript text.
	OutcomeTranscript Outcome = iota

	// OutcomeNoSpeech means the window elapsed without detectable speech.
	OutcomeNoSpeech

	// OutcomeUnintelligible means audio was captured but the provider could
	// not produce any text for it.
	OutcomeUnintelligible

	// OutcomeServiceError means the transcription backend failed (network,
	// server, or decode error). The accompanying error carries detail.
	OutcomeServiceError
)

// String returns the human-readable name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeTranscript:
		return "transcript"
	case OutcomeNoSpeech:
		return "no-speech"
	case OutcomeUnintelligible:
		return "unintelligible"
	case OutcomeServiceError:
		return "service-error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one listening window.
type Result struct {
	// Text is the transcribed speech. Empty unless Outcome is
	// OutcomeTranscript.
	Text string

	// Outcome classifies the window.
	Outcome Outcome

	// Confidence is the provider's overall confidence in Text (0.0–1.0).
	// Zero when the provider does not report confidence.
	Confidence float64

	// AudioDuration is the length of audio actually captured in the window.
	AudioDuration time.Duration
}

// ListenConfig bounds a single listening window.
type ListenConfig struct {
	// Window is the maximum wall-clock duration of the capture. Zero means
	// the provider default (10 s).
	Window time.Duration

	// PhraseLimit caps the amount of audio submitted for transcription even
	// when the window has not elapsed. Zero means the provider default (10 s).
	PhraseLimit time.Duration

	// Language is the BCP-47 language tag for recognition (e.g., "en").
	// Empty lets the provider use its configured default.
	Language string
}

// Provider is the abstraction over any one-shot transcription backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Listen captures one bounded window of audio and transcribes it.
	//
	// Listen never blocks past the configured window: on timeout it returns a
	// Result with OutcomeNoSpeech and no error. A non-nil error is returned
	// only for service failures (paired with OutcomeServiceError) and for
	// context cancellation; callers should treat both as an empty transcript
	// and keep the pipeline running.
	Listen(ctx context.Context, cfg ListenConfig) (Result, error)
}
