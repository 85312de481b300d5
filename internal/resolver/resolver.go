// Package resolver maps sanitized arguments to canonical reference
// entries, exactly where possible and by ranked fuzzy suggestion
// otherwise.
package resolver

import (
	"slices"
	"sort"

	"github.com/agext/levenshtein"

	"github.com/rNothingTech/NothingTechBot/internal/aliases"
)

const (
	// similarityCutoff is the minimum normalized similarity for a fuzzy
	// suggestion.
	similarityCutoff = 0.6
	// maxSuggestions caps how many fuzzy candidates are surfaced.
	maxSuggestions = 3
)

// Outcome tags a resolution result.
type Outcome int

const (
	// OutcomeNone: no exact match and no fuzzy candidate cleared the
	// cutoff.
	OutcomeNone Outcome = iota
	// OutcomeTooLong: the argument had more words than the category
	// allows; garbage rather than a short query.
	OutcomeTooLong
	// OutcomeExact: an alias matched the argument verbatim.
	OutcomeExact
	// OutcomeSuggestions: close-but-not-exact candidates were found.
	OutcomeSuggestions
)

// Match is a resolved reference.
type Match struct {
	DisplayName string
	Link        string
}

// Suggestion is one fuzzy candidate, carrying the alias that matched so
// replies can echo it back.
type Suggestion struct {
	Alias      string
	Match      Match
	Similarity float64
}

// Result is the outcome of one resolution attempt.
type Result struct {
	Outcome     Outcome
	Exact       Match
	Suggestions []Suggestion
}

// Resolve looks argument up against the category entries. The argument
// must already be sanitized. maxWords is the category's word budget; an
// argument over budget fails fast with OutcomeTooLong before any
// matching runs.
func Resolve(argument string, entries []aliases.Entry, maxWords int) Result {
	if maxWords > 0 && wordCount(argument) > maxWords {
		return Result{Outcome: OutcomeTooLong}
	}

	// Exact membership, first entry in document order wins.
	for _, entry := range entries {
		if slices.Contains(entry.Normalized, argument) {
			return Result{
				Outcome: OutcomeExact,
				Exact:   Match{DisplayName: entry.DisplayName, Link: entry.Link},
			}
		}
	}

	suggestions := fuzzyCandidates(argument, entries)
	if len(suggestions) == 0 {
		return Result{Outcome: OutcomeNone}
	}
	return Result{Outcome: OutcomeSuggestions, Suggestions: suggestions}
}

type candidate struct {
	Suggestion
	order int // position in dataset, breaks similarity ties
}

func fuzzyCandidates(argument string, entries []aliases.Entry) []Suggestion {
	var candidates []candidate
	order := 0
	for _, entry := range entries {
		for i, normalized := range entry.Normalized {
			sim := levenshtein.Similarity(argument, normalized, nil)
			if sim >= similarityCutoff {
				candidates = append(candidates, candidate{
					Suggestion: Suggestion{
						Alias:      entry.Aliases[i],
						Match:      Match{DisplayName: entry.DisplayName, Link: entry.Link},
						Similarity: sim,
					},
					order: order,
				})
			}
			order++
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Similarity != candidates[b].Similarity {
			return candidates[a].Similarity > candidates[b].Similarity
		}
		return candidates[a].order < candidates[b].order
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	// The same entry may own several close aliases; surface only its
	// first hit, preserving rank order.
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Match.DisplayName]; dup {
			continue
		}
		seen[c.Match.DisplayName] = struct{}{}
		out = append(out, c.Suggestion)
	}
	return out
}

func wordCount(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		if r == ' ' {
			inWord = false
		} else if !inWord {
			inWord = true
			n++
		}
	}
	return n
}
