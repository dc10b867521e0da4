package match

import (
	"sort"
)

// Candidate is a known name ranked by its similarity to a requested one.
type Candidate struct {
	Name string

	// Score is the similarity (0-1) computed by Score.
	Score float64

	// Metadata for debugging/explanation
	NormalizedName   string
	NormalizedTarget string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankNames scores every name against target and returns the candidates
// sorted by score (descending). Duplicate names are ranked once.
func RankNames(target string, names []string) CandidateList {
	var candidates CandidateList

	targetNorm := NormalizeIdent(target)

	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}

		seen[name] = true

		candidates = append(candidates, Candidate{
			Name:             name,
			Score:            Score(name, target),
			NormalizedName:   NormalizeIdent(name),
			NormalizedTarget: targetNorm,
		})
	}

	// Sort by score (descending), then by name for determinism
	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to n names close enough to target to be offered as
// "did you mean" hints. An exact match is never suggested.
func Suggest(target string, names []string, n int) []string {
	if n <= 0 {
		return nil
	}

	var out []string

	for _, c := range RankNames(target, names).AboveThreshold(DefaultSuggestionScore) {
		if c.Name == target {
			continue
		}

		out = append(out, c.Name)
		if len(out) == n {
			break
		}
	}

	return out
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}
	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}
	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}
	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates with a score of at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}
	return result
}

const (
	// DefaultSuggestionScore is the minimum score for a suggestion.
	DefaultSuggestionScore = 0.5
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.1
)
