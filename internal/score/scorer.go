// Package score adjusts the provisional confidence a detector assigned
// to a pattern. The detectors own the type-specific base tables; this
// layer is purely additive on top of them, so confidence heuristics live
// in exactly one place per concern.
package score

import "github.com/mailsift/mailsift/internal/core"

// sampleRatioCap bounds the sample-size contribution.
const sampleRatioCap = 0.3

// defaultBase is used when a detector emitted no provisional confidence.
const defaultBase = 0.5

// Scorer computes final pattern confidence. Pure and deterministic.
type Scorer struct {
	minPatternSize int
}

// NewScorer creates a new confidence scorer
func NewScorer(minPatternSize int) *Scorer {
	return &Scorer{minPatternSize: minPatternSize}
}

// Score returns the final confidence for a pattern: the detector's
// provisional confidence plus a capped sample-ratio term and volume
// bonuses, clamped to [0,1]. The sample-ratio term applies only once the
// pattern reaches the minimum size.
func (s *Scorer) Score(pattern core.EmailPattern, totalEmails int) float64 {
	confidence := pattern.Confidence
	if confidence <= 0 {
		confidence = defaultBase
	}

	if totalEmails > 0 && pattern.EmailCount >= s.minPatternSize {
		ratio := float64(pattern.EmailCount) / float64(totalEmails)
		if ratio > sampleRatioCap {
			ratio = sampleRatioCap
		}
		confidence += ratio
	}

	if pattern.EmailCount > 10 {
		confidence += 0.1
	}
	if pattern.EmailCount > 50 {
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}
	return confidence
}

// Apply scores every pattern in place and returns the slice.
func (s *Scorer) Apply(patterns []core.EmailPattern, totalEmails int) []core.EmailPattern {
	for i := range patterns {
		patterns[i].Confidence = s.Score(patterns[i], totalEmails)
	}
	return patterns
}
