// Package aggregate filters, deduplicates, and ranks the merged detector
// output.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// Aggregator applies the confidence floor, removes near-duplicate
// patterns, and returns the ranked top N.
type Aggregator struct {
	minConfidence float64
	maxPatterns   int
	logger        *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(minConfidence float64, maxPatterns int, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		minConfidence: minConfidence,
		maxPatterns:   maxPatterns,
		logger:        logger,
	}
}

// Aggregate sorts by (confidence desc, email count desc, description asc),
// drops patterns below the confidence floor, keeps the first occurrence
// of each signature, and caps the result.
func (a *Aggregator) Aggregate(patterns []core.EmailPattern) []core.EmailPattern {
	kept := make([]core.EmailPattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Confidence >= a.minConfidence {
			kept = append(kept, p)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Confidence != kept[j].Confidence {
			return kept[i].Confidence > kept[j].Confidence
		}
		if kept[i].EmailCount != kept[j].EmailCount {
			return kept[i].EmailCount > kept[j].EmailCount
		}
		return kept[i].Description < kept[j].Description
	})

	seen := make(map[string]bool)
	var result []core.EmailPattern
	for _, p := range kept {
		sig := signature(p)
		if seen[sig] {
			a.logger.Debug("Dropping duplicate pattern",
				zap.String("signature", sig),
				zap.String("description", p.Description))
			continue
		}
		seen[sig] = true
		result = append(result, p)
		if a.maxPatterns > 0 && len(result) >= a.maxPatterns {
			break
		}
	}

	return result
}

// signature identifies near-duplicate patterns: same type, same member
// count, same leading characteristics summary.
func signature(p core.EmailPattern) string {
	return fmt.Sprintf("%s|%d|%s", p.PatternType, p.EmailCount, truncate(characteristicsSummary(p), 48))
}

// characteristicsSummary flattens the per-type payload into a short
// comparable string.
func characteristicsSummary(p core.EmailPattern) string {
	c := p.Characteristics
	switch {
	case c.Sender != nil:
		return c.Sender.Sender + "/" + c.Sender.SenderType
	case c.Subject != nil:
		return c.Subject.Motif
	case c.Temporal != nil:
		return fmt.Sprintf("%s/%s/%d", c.Temporal.Granularity, c.Temporal.Weekday, c.Temporal.Hour)
	case c.Label != nil:
		return c.Label.Label
	case c.Attachment != nil:
		return c.Attachment.Kind
	case c.Cluster != nil:
		return c.Cluster.Theme + "/" + strings.Join(c.Cluster.CommonKeywords, ",")
	default:
		return p.Description
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
