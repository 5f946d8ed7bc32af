package detect

import (
	"fmt"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// Share thresholds a time bucket must hold, relative to records with a
// parseable timestamp, before it counts as a pattern.
const (
	weekdayShareThreshold = 0.30
	hourShareThreshold    = 0.20
)

// TemporalDetector buckets records by weekday and by hour-of-day
// independently and emits a pattern for any dominant bucket.
type TemporalDetector struct {
	minPatternSize int
	logger         *zap.Logger
}

// NewTemporalDetector creates a new temporal detector
func NewTemporalDetector(minPatternSize int, logger *zap.Logger) *TemporalDetector {
	return &TemporalDetector{minPatternSize: minPatternSize, logger: logger}
}

// Name identifies the detector family
func (d *TemporalDetector) Name() string {
	return "temporal"
}

// Detect emits weekday patterns for buckets holding >= 30% of parseable
// records and hour patterns for buckets holding >= 20%.
func (d *TemporalDetector) Detect(records []core.EmailRecord, features map[string]core.EmailFeatures, embeddings map[string]*core.EmailEmbedding) []core.EmailPattern {
	weekdayBuckets := make(map[string][]core.EmailRecord)
	hourBuckets := make(map[int][]core.EmailRecord)
	parseable := 0

	for _, record := range records {
		t, ok := core.ParseTimestamp(record.Timestamp)
		if !ok {
			continue
		}
		parseable++
		weekday := t.Weekday().String()
		weekdayBuckets[weekday] = append(weekdayBuckets[weekday], record)
		hourBuckets[t.Hour()] = append(hourBuckets[t.Hour()], record)
	}
	if parseable == 0 {
		return nil
	}

	var patterns []core.EmailPattern

	for _, weekday := range sortedKeys(weekdayBuckets) {
		bucket := weekdayBuckets[weekday]
		share := float64(len(bucket)) / float64(parseable)
		if share < weekdayShareThreshold || len(bucket) < d.minPatternSize {
			continue
		}
		patterns = append(patterns, core.EmailPattern{
			PatternType:   core.PatternTypeTemporal,
			Description:   fmt.Sprintf("Emails concentrated on %s", weekday),
			EmailCount:    len(bucket),
			TotalUniverse: len(records),
			Confidence:    0.7,
			Characteristics: core.PatternCharacteristics{
				Temporal: &core.TemporalCharacteristics{
					Granularity: "weekday",
					Weekday:     weekday,
					Share:       share,
				},
			},
			ExampleEmailIDs: exampleIDs(bucket),
		})
	}

	for hour := 0; hour < 24; hour++ {
		bucket, ok := hourBuckets[hour]
		if !ok {
			continue
		}
		share := float64(len(bucket)) / float64(parseable)
		if share < hourShareThreshold || len(bucket) < d.minPatternSize {
			continue
		}
		patterns = append(patterns, core.EmailPattern{
			PatternType:   core.PatternTypeTemporal,
			Description:   fmt.Sprintf("Emails concentrated around %02d:00", hour),
			EmailCount:    len(bucket),
			TotalUniverse: len(records),
			Confidence:    0.65,
			Characteristics: core.PatternCharacteristics{
				Temporal: &core.TemporalCharacteristics{
					Granularity: "hour",
					Hour:        hour,
					Share:       share,
				},
			},
			ExampleEmailIDs: exampleIDs(bucket),
		})
	}

	return patterns
}
