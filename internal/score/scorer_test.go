package score

import (
	"testing"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/stretchr/testify/assert"
)

func pattern(confidence float64, count int) core.EmailPattern {
	return core.EmailPattern{
		PatternType: core.PatternTypeSender,
		Confidence:  confidence,
		EmailCount:  count,
	}
}

func TestScoreAddsSampleRatio(t *testing.T) {
	scorer := NewScorer(3)

	// 5 of 100: base 0.6 plus ratio 0.05.
	assert.InDelta(t, 0.65, scorer.Score(pattern(0.6, 5), 100), 1e-9)
}

func TestScoreCapsSampleRatio(t *testing.T) {
	scorer := NewScorer(3)

	// 8 of 10 is an 0.8 ratio, capped at 0.3.
	assert.InDelta(t, 0.3+0.3, scorer.Score(pattern(0.3, 8), 10), 1e-9)
}

func TestScoreSkipsRatioBelowMinSize(t *testing.T) {
	scorer := NewScorer(5)

	assert.InDelta(t, 0.6, scorer.Score(pattern(0.6, 4), 100), 1e-9)
}

func TestScoreVolumeBonuses(t *testing.T) {
	scorer := NewScorer(3)

	// 11 of 1000: ratio 0.011 plus the >10 bonus.
	assert.InDelta(t, 0.2+0.011+0.1, scorer.Score(pattern(0.2, 11), 1000), 1e-9)
	// 51 of 1000: ratio 0.051 plus both volume bonuses.
	assert.InDelta(t, 0.2+0.051+0.2, scorer.Score(pattern(0.2, 51), 1000), 1e-9)
}

func TestScoreClampsToOne(t *testing.T) {
	scorer := NewScorer(3)

	assert.Equal(t, 1.0, scorer.Score(pattern(0.9, 60), 100))
}

func TestScoreDefaultsMissingBase(t *testing.T) {
	scorer := NewScorer(3)

	withDefault := scorer.Score(pattern(0, 5), 100)
	assert.InDelta(t, 0.55, withDefault, 1e-9)
}

func TestScoreMonotonicInCount(t *testing.T) {
	scorer := NewScorer(3)

	previous := 0.0
	for _, count := range []int{3, 5, 10, 20, 30} {
		got := scorer.Score(pattern(0.4, count), 100)
		assert.GreaterOrEqual(t, got, previous, "count %d", count)
		previous = got
	}
}

func TestApplyScoresInPlace(t *testing.T) {
	scorer := NewScorer(3)
	patterns := []core.EmailPattern{pattern(0.6, 5), pattern(0.9, 60)}

	scored := scorer.Apply(patterns, 100)

	assert.InDelta(t, 0.65, scored[0].Confidence, 1e-9)
	assert.Equal(t, 1.0, scored[1].Confidence)
	assert.Equal(t, scored[0].Confidence, patterns[0].Confidence)
}
