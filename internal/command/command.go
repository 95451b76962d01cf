// Package command turns raw transcript text into a billing intent plus the
// residual case-name fragment. Normalization is pure and deterministic: the
// same transcript always yields the same (intent, fragment) pair, and no I/O
// happens here.
package command

import (
	"sort"
	"strings"
)

// Intent classifies what the speaker asked for.
type Intent int

const (
	// IntentUnrecognized means no known marker was found in the transcript.
	// This is a normal outcome, not an error.
	IntentUnrecognized Intent = iota

	// IntentStart begins (or switches) a timing session for a case.
	IntentStart

	// IntentStop ends the active timing session.
	IntentStop

	// IntentExpense records an expense against a case.
	IntentExpense
)

// String returns a human-readable name for the intent.
func (i Intent) String() string {
	switch i {
	case IntentStart:
		return "start"
	case IntentStop:
		return "stop"
	case IntentExpense:
		return "expense"
	default:
		return "unrecognized"
	}
}

// Config holds the marker and phrase lists that drive classification.
// All matching is done on lower-cased text, so entries should be lower-case.
type Config struct {
	// StartMarkers are words or phrases whose presence classifies a
	// transcript as IntentStart.
	StartMarkers []string

	// StopMarkers classify a transcript as IntentStop. A stop marker is
	// overridden when a start marker is also present ("start logging" must
	// not read as stop just because it contains no stop marker conflict).
	StopMarkers []string

	// ExpenseMarkers classify a transcript as IntentExpense. Checked after
	// start and stop markers.
	ExpenseMarkers []string

	// StripPhrases are trigger phrases removed from the front of the
	// transcript when extracting the case-name fragment. They are applied
	// longest-first so that "switch to" is consumed before "to" ever could
	// be.
	StripPhrases []string
}

// DefaultConfig returns the marker and phrase lists matching the spoken
// grammar the tracker was built around ("start logging Sierra Club",
// "switch to Three Rivers", "stop logging", "add expense for Acme").
func DefaultConfig() Config {
	return Config{
		StartMarkers: []string{
			"start", "begin", "log", "logging", "track", "billing",
			"switch to", "change to",
		},
		StopMarkers: []string{
			"stop", "end", "pause logging",
		},
		ExpenseMarkers: []string{
			"add expense", "log expense", "bill", "expense",
		},
		StripPhrases: []string{
			"start logging", "start billing", "start tracking",
			"begin logging", "begin billing", "begin tracking",
			"add expense for", "log expense for",
			"add expense", "log expense",
			"switch to", "change to", "pause logging",
			"start", "begin", "logging", "log", "tracking", "track",
			"billing", "bill", "expense", "stop", "end",
		},
	}
}

// Normalizer classifies transcripts and extracts case-name fragments.
// Safe for concurrent use once constructed.
type Normalizer struct {
	cfg Config

	// stripPhrases is cfg.StripPhrases sorted longest-first.
	stripPhrases []string
}

// NewNormalizer builds a Normalizer from cfg. Zero-value marker lists are
// replaced with the defaults, so NewNormalizer(command.Config{}) behaves like
// NewNormalizer(command.DefaultConfig()).
func NewNormalizer(cfg Config) *Normalizer {
	def := DefaultConfig()
	if len(cfg.StartMarkers) == 0 {
		cfg.StartMarkers = def.StartMarkers
	}
	if len(cfg.StopMarkers) == 0 {
		cfg.StopMarkers = def.StopMarkers
	}
	if len(cfg.ExpenseMarkers) == 0 {
		cfg.ExpenseMarkers = def.ExpenseMarkers
	}
	if len(cfg.StripPhrases) == 0 {
		cfg.StripPhrases = def.StripPhrases
	}

	phrases := make([]string, len(cfg.StripPhrases))
	copy(phrases, cfg.StripPhrases)
	sort.SliceStable(phrases, func(i, j int) bool {
		return len(phrases[i]) > len(phrases[j])
	})

	return &Normalizer{cfg: cfg, stripPhrases: phrases}
}

// Normalize lower-cases and trims raw, classifies the intent, and extracts
// the residual fragment. The fragment is empty for stop and unrecognized
// intents; for start and expense intents it is the text remaining after
// trigger phrases are stripped from the front, or the whole lower-cased text
// when no phrase matched.
func (n *Normalizer) Normalize(raw string) (Intent, string) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return IntentUnrecognized, ""
	}

	words := strings.Fields(text)

	// Stop and start markers overlap ("stop logging" contains the start
	// marker "logging"), so precedence goes to whichever family appears
	// earliest in the transcript. Ties favor stop.
	startIdx := earliestMarker(words, n.cfg.StartMarkers)
	stopIdx := earliestMarker(words, n.cfg.StopMarkers)

	switch {
	case stopIdx >= 0 && (startIdx < 0 || stopIdx <= startIdx):
		return IntentStop, ""
	case startIdx >= 0:
		return IntentStart, n.extractFragment(text)
	case earliestMarker(words, n.cfg.ExpenseMarkers) >= 0:
		return IntentExpense, n.extractFragment(text)
	default:
		return IntentUnrecognized, ""
	}
}

// extractFragment strips trigger phrases from the front of text, longest
// match first, re-checking from the top after every strip so stacked
// triggers ("start logging") fall away one by one.
func (n *Normalizer) extractFragment(text string) string {
	for {
		stripped := false
		for _, phrase := range n.stripPhrases {
			if text == phrase {
				return ""
			}
			if strings.HasPrefix(text, phrase+" ") {
				text = strings.TrimSpace(text[len(phrase):])
				stripped = true
				break
			}
		}
		if !stripped {
			return text
		}
	}
}

// earliestMarker returns the lowest word index at which any marker occurs,
// or -1 when none does. Markers match on word boundaries: "end" matches
// "end logging" but not "calendar". Multi-word markers must occur as
// consecutive words.
func earliestMarker(words []string, markers []string) int {
	best := -1
	for _, m := range markers {
		if idx := markerIndex(words, m); idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}
	return best
}

func markerIndex(words []string, marker string) int {
	mwords := strings.Fields(marker)
	if len(mwords) == 0 || len(mwords) > len(words) {
		return -1
	}
	for i := 0; i+len(mwords) <= len(words); i++ {
		match := true
		for j, mw := range mwords {
			if strings.Trim(words[i+j], ".,!?") != mw {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
