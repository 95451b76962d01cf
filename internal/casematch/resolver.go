// Package casematch resolves a spoken case-name fragment against the
// registry of known case names.
//
// The algorithm combines Double Metaphone phonetic encoding with
// Jaro-Winkler string similarity:
//
//  1. Phonetic alignment: Double Metaphone codes are computed for each word
//     of the fragment and of every known case. An entity whose codes overlap
//     the fragment's is scored with long-string tolerance enabled, which
//     rewards mis-transcriptions that still sound right ("seeara" for
//     "Sierra").
//
//  2. Jaro-Winkler ranking: each case is scored with the best of three
//     comparison strategies (full string, space-stripped concatenation, best
//     pairwise token), scaled to 0–100.
//
// The highest-scoring case wins only when its score reaches the acceptance
// threshold; otherwise the trimmed fragment itself is returned, which is how
// previously-unseen case names enter the system. Ties resolve to the
// earliest position in the known list.
package casematch

import (
	"math"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultThreshold is the minimum 0–100 similarity score required to accept
// a fuzzy match instead of falling back to the literal fragment.
const DefaultThreshold = 80

// Match is the outcome of resolving one fragment.
type Match struct {
	// Case is the resolved case name: a registry entry when FromRegistry is
	// true, otherwise the trimmed fragment verbatim.
	Case string

	// Score is the best similarity score found, on a 0–100 scale. Zero when
	// the registry was empty.
	Score int

	// FromRegistry reports whether Case came from the known-case list.
	FromRegistry bool
}

// Option is a functional option for configuring a [Resolver].
type Option func(*Resolver)

// WithThreshold sets the acceptance threshold on the 0–100 scale.
// Values outside [0, 100] are clamped. Default: 80.
func WithThreshold(threshold int) Option {
	return func(r *Resolver) {
		r.threshold = min(max(threshold, 0), 100)
	}
}

// Resolver maps fragments to canonical case names. Read-only after
// construction, so safe for concurrent use.
type Resolver struct {
	threshold int
}

// New returns a Resolver configured with the supplied options.
func New(opts ...Option) *Resolver {
	r := &Resolver{threshold: DefaultThreshold}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Threshold returns the configured acceptance threshold.
func (r *Resolver) Threshold() int {
	return r.threshold
}

// Resolve scores fragment against every entry of known and returns the best
// match. When no entry reaches the threshold, or known is empty, the trimmed
// fragment is returned unchanged with FromRegistry false.
func (r *Resolver) Resolve(fragment string, known []string) Match {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" || len(known) == 0 {
		return Match{Case: trimmed}
	}

	fragLower := strings.ToLower(trimmed)
	fragTokens := strings.Fields(fragLower)
	fragCodes := codesForTokens(fragTokens)

	bestIdx := -1
	bestScore := 0

	for i, entity := range known {
		entityLower := strings.ToLower(strings.TrimSpace(entity))
		if entityLower == "" {
			continue
		}
		entityTokens := strings.Fields(entityLower)

		phonetic := codesOverlap(fragCodes, codesForTokens(entityTokens))
		similarity := bestSimilarity(fragTokens, entityTokens, fragLower, entityLower, phonetic)

		score := int(math.Round(similarity * 100))
		if score > 100 {
			score = 100
		}
		// Strictly greater keeps the earliest entry on ties.
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx >= 0 && bestScore >= r.threshold {
		return Match{Case: known[bestIdx], Score: bestScore, FromRegistry: true}
	}
	return Match{Case: trimmed, Score: bestScore}
}

// bestSimilarity computes the highest Jaro-Winkler similarity between the
// fragment and the entity using three strategies:
//
//  1. Full-string comparison ("seeara club" vs "sierra club").
//  2. Space-stripped comparison ("seearaclub" vs "sierraclub").
//  3. Best pairwise token comparison — the maximum score between any
//     fragment token and any entity token.
//
// longTolerance is enabled when the two sides overlap phonetically, which
// boosts scores for longer strings that agree on their leading sounds.
func bestSimilarity(fragTokens, entityTokens []string, fragFull, entityFull string, longTolerance bool) float64 {
	score := matchr.JaroWinkler(fragFull, entityFull, longTolerance)

	if len(fragTokens) > 1 || len(entityTokens) > 1 {
		concat1 := strings.Join(fragTokens, "")
		concat2 := strings.Join(entityTokens, "")
		if s := matchr.JaroWinkler(concat1, concat2, longTolerance); s > score {
			score = s
		}
	}

	for _, ft := range fragTokens {
		for _, et := range entityTokens {
			if s := matchr.JaroWinkler(ft, et, longTolerance); s > score {
				score = s
			}
		}
	}

	return score
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
