package detect

import (
	"fmt"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

var (
	newsletterSubjectKeywords = []string{"newsletter", "digest", "weekly", "monthly", "update"}
	receiptSubjectKeywords    = []string{"receipt", "order", "invoice", "purchase", "payment"}
)

// SubjectDetector matches two fixed subject motifs: newsletters and
// receipts/transactions.
type SubjectDetector struct {
	minPatternSize int
	logger         *zap.Logger
}

// NewSubjectDetector creates a new subject detector
func NewSubjectDetector(minPatternSize int, logger *zap.Logger) *SubjectDetector {
	return &SubjectDetector{minPatternSize: minPatternSize, logger: logger}
}

// Name identifies the detector family
func (d *SubjectDetector) Name() string {
	return "subject"
}

// Detect emits at most two patterns, one per motif, when enough subjects
// match.
func (d *SubjectDetector) Detect(records []core.EmailRecord, features map[string]core.EmailFeatures, embeddings map[string]*core.EmailEmbedding) []core.EmailPattern {
	var patterns []core.EmailPattern

	if p := d.motifPattern(records, "newsletter", newsletterSubjectKeywords, 0.85); p != nil {
		patterns = append(patterns, *p)
	}
	if p := d.motifPattern(records, "receipt", receiptSubjectKeywords, 0.8); p != nil {
		patterns = append(patterns, *p)
	}

	return patterns
}

func (d *SubjectDetector) motifPattern(records []core.EmailRecord, motif string, keywords []string, baseConfidence float64) *core.EmailPattern {
	var matched []core.EmailRecord
	for _, record := range records {
		if containsAny(strings.ToLower(record.Subject), keywords) {
			matched = append(matched, record)
		}
	}
	if len(matched) < d.minPatternSize {
		return nil
	}

	return &core.EmailPattern{
		PatternType:   core.PatternTypeSubject,
		Description:   fmt.Sprintf("Subjects matching the %s motif", motif),
		EmailCount:    len(matched),
		TotalUniverse: len(records),
		Confidence:    baseConfidence,
		Characteristics: core.PatternCharacteristics{
			Subject: &core.SubjectCharacteristics{
				Motif:    motif,
				Keywords: keywords,
			},
		},
		ExampleEmailIDs: exampleIDs(matched),
	}
}
