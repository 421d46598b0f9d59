package referencedata

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// MinMatchScore is the lowest word-overlap score accepted as a candidate.
	MinMatchScore = 0.3
	// MaxCandidates bounds MatchOccupation results.
	MaxCandidates = 5
)

// Match is a classification candidate for a free-text occupation.
type Match struct {
	Occupation string
	Code       string
	Title      string
	Score      float64
}

// MatchOccupation returns up to MaxCandidates classification candidates,
// best first. An exact table hit is the single result with score 1.0.
func MatchOccupation(occupation string) []Match {
	norm := NormalizeOccupation(occupation)
	if norm == "" {
		return nil
	}
	if o, ok := occupationIndex[norm]; ok {
		return []Match{newMatch(o, 1.0)}
	}

	var candidates []Match
	for _, o := range occupations {
		score := WordOverlap(norm, o.Key)
		if title, ok := classificationTitles[o.SOCCode]; ok {
			if s := WordOverlap(norm, title); s > score {
				score = s
			}
		}
		if score >= MinMatchScore {
			candidates = append(candidates, newMatch(o, score))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}

// BestMatch returns the top candidate from MatchOccupation.
func BestMatch(occupation string) (Match, bool) {
	m := MatchOccupation(occupation)
	if len(m) == 0 {
		return Match{}, false
	}
	return m[0], true
}

func newMatch(o Occupation, score float64) Match {
	return Match{
		Occupation: o.Key,
		Code:       o.SOCCode,
		Title:      classificationTitles[o.SOCCode],
		Score:      score,
	}
}

// WordOverlap scores two phrases as shared words / max(word counts), with
// simple plural folding. Identical phrases score 1.0; disjoint ones 0.
func WordOverlap(a, b string) float64 {
	wa, wb := words(a), words(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(wb))
	for _, w := range wb {
		set[w] = struct{}{}
	}
	shared := 0
	seen := make(map[string]struct{}, len(wa))
	for _, w := range wa {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := set[w]; ok {
			shared++
		}
	}
	denom := len(seen)
	if len(set) > denom {
		denom = len(set)
	}
	return float64(shared) / float64(denom)
}

func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if f == "and" || f == "of" || f == "the" {
			continue
		}
		out = append(out, singular(f))
	}
	return out
}

func singular(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}
