package detect

import (
	"fmt"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/exclude"
	"go.uber.org/zap"
)

// LabelDetector groups records by label, skipping mailbox-state labels
// like INBOX and UNREAD.
type LabelDetector struct {
	minPatternSize int
	excluded       *exclude.Checker
	logger         *zap.Logger
}

// NewLabelDetector creates a new label detector
func NewLabelDetector(minPatternSize int, excluded *exclude.Checker, logger *zap.Logger) *LabelDetector {
	return &LabelDetector{
		minPatternSize: minPatternSize,
		excluded:       excluded,
		logger:         logger,
	}
}

// Name identifies the detector family
func (d *LabelDetector) Name() string {
	return "label"
}

// Detect emits a pattern per non-excluded label carried by at least
// minPatternSize records.
func (d *LabelDetector) Detect(records []core.EmailRecord, features map[string]core.EmailFeatures, embeddings map[string]*core.EmailEmbedding) []core.EmailPattern {
	groups := make(map[string][]core.EmailRecord)
	for _, record := range records {
		seen := make(map[string]bool, len(record.Labels))
		for _, label := range record.Labels {
			if label == "" || d.excluded.IsExcluded(label) || seen[label] {
				continue
			}
			seen[label] = true
			groups[label] = append(groups[label], record)
		}
	}

	var patterns []core.EmailPattern
	for _, label := range sortedKeys(groups) {
		group := groups[label]
		if len(group) < d.minPatternSize {
			continue
		}
		patterns = append(patterns, core.EmailPattern{
			PatternType:   core.PatternTypeLabel,
			Description:   fmt.Sprintf("Emails labeled %s", label),
			EmailCount:    len(group),
			TotalUniverse: len(records),
			Confidence:    0.8,
			Characteristics: core.PatternCharacteristics{
				Label: &core.LabelCharacteristics{Label: label},
			},
			ExampleEmailIDs: exampleIDs(group),
		})
	}

	return patterns
}
