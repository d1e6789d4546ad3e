package resolve

import (
	"math"

	"github.com/sells-group/station-linker/internal/model"
)

// DefaultThreshold is the minimum similarity (0-100) for a candidate to be
// accepted as a match.
const DefaultThreshold = 70

// Scorer compares a query name to a candidate base name on a 0-100 scale.
type Scorer func(query, candidate string) float64

// Matcher selects the best registry candidate for a station name within a
// region block. It is safe for concurrent use.
type Matcher struct {
	index      *Index
	threshold  float64
	scorer     Scorer
	preprocess bool
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithThreshold sets the minimum accepted score.
func WithThreshold(threshold int) MatcherOption {
	return func(m *Matcher) { m.threshold = float64(threshold) }
}

// WithScorer replaces the token-sort scorer.
func WithScorer(s Scorer) MatcherOption {
	return func(m *Matcher) { m.scorer = s }
}

// WithPreprocess lower-cases and strips punctuation from both sides before
// scoring.
func WithPreprocess(on bool) MatcherOption {
	return func(m *Matcher) { m.preprocess = on }
}

// NewMatcher creates a matcher over a blocking index.
func NewMatcher(idx *Index, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		index:     idx,
		threshold: DefaultThreshold,
		scorer:    TokenSortRatio,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Threshold returns the minimum accepted score.
func (m *Matcher) Threshold() int {
	return int(m.threshold)
}

// Match scans the region's block and returns the highest-scoring candidate
// if it clears the threshold. Ties keep the candidate seen first. An empty
// region or block, or a best score below the threshold, yields no match
// with score 0.
func (m *Matcher) Match(query, region string) model.MatchResult {
	if region == "" {
		return model.MatchResult{}
	}
	block := m.index.Block(region)
	if len(block) == 0 {
		return model.MatchResult{}
	}

	if m.preprocess {
		query = Preprocess(query)
	}

	best := -1
	bestScore := math.Inf(-1)
	for i := range block {
		candidate := block[i].BaseName
		if m.preprocess {
			candidate = Preprocess(candidate)
		}
		score := m.scorer(query, candidate)
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 || bestScore < m.threshold {
		return model.MatchResult{}
	}
	return model.MatchResult{
		Record: &block[best],
		Score:  clampScore(bestScore),
	}
}

func clampScore(s float64) int {
	r := int(math.Round(s))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
