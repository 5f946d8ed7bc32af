package detect

import (
	"fmt"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// largeSizeThreshold marks a record as a size outlier.
const largeSizeThreshold = 100_000

// AttachmentDetector emits patterns for the attachment-bearing subset
// and, independently, for the oversized subset.
type AttachmentDetector struct {
	minPatternSize int
	logger         *zap.Logger
}

// NewAttachmentDetector creates a new attachment/size detector
func NewAttachmentDetector(minPatternSize int, logger *zap.Logger) *AttachmentDetector {
	return &AttachmentDetector{minPatternSize: minPatternSize, logger: logger}
}

// Name identifies the detector family
func (d *AttachmentDetector) Name() string {
	return "attachment"
}

// Detect emits up to two patterns: attachments and large messages.
func (d *AttachmentDetector) Detect(records []core.EmailRecord, features map[string]core.EmailFeatures, embeddings map[string]*core.EmailEmbedding) []core.EmailPattern {
	var withAttachments, large []core.EmailRecord
	var attachmentBytes, largeBytes int64

	for _, record := range records {
		if record.HasAttachment {
			withAttachments = append(withAttachments, record)
			attachmentBytes += record.SizeEstimate
		}
		if record.SizeEstimate > largeSizeThreshold {
			large = append(large, record)
			largeBytes += record.SizeEstimate
		}
	}

	var patterns []core.EmailPattern

	if len(withAttachments) >= d.minPatternSize {
		patterns = append(patterns, core.EmailPattern{
			PatternType:   core.PatternTypeAttachment,
			Description:   "Emails with attachments",
			EmailCount:    len(withAttachments),
			TotalUniverse: len(records),
			Confidence:    0.75,
			Characteristics: core.PatternCharacteristics{
				Attachment: &core.AttachmentCharacteristics{
					Kind:         "attachment",
					AvgSizeBytes: attachmentBytes / int64(len(withAttachments)),
				},
			},
			ExampleEmailIDs: exampleIDs(withAttachments),
		})
	}

	if len(large) >= d.minPatternSize {
		patterns = append(patterns, core.EmailPattern{
			PatternType:   core.PatternTypeAttachment,
			Description:   fmt.Sprintf("Emails larger than %d bytes", largeSizeThreshold),
			EmailCount:    len(large),
			TotalUniverse: len(records),
			Confidence:    0.7,
			Characteristics: core.PatternCharacteristics{
				Attachment: &core.AttachmentCharacteristics{
					Kind:         "large",
					AvgSizeBytes: largeBytes / int64(len(large)),
				},
			},
			ExampleEmailIDs: exampleIDs(large),
		})
	}

	return patterns
}
