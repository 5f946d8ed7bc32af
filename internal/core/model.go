package core

import (
	"strings"
	"time"
)

// EmailRecord is a single message from a mailbox snapshot. Records are
// immutable for the duration of an analysis run.
type EmailRecord struct {
	ID              string   `json:"id"`
	Sender          string   `json:"sender"`
	Subject         string   `json:"subject"`
	Snippet         string   `json:"snippet"`
	Labels          []string `json:"labels"`
	Timestamp       string   `json:"timestamp"`
	SizeEstimate    int64    `json:"size_estimate"`
	HasAttachment   bool     `json:"has_attachment"`
	AttachmentCount int      `json:"attachment_count"`
}

// EmailFingerprint holds four short content hashes. It is a pure function
// of record content: label changes do not alter any component.
type EmailFingerprint struct {
	ContentHash        string `json:"content_hash"`
	StructuralHash     string `json:"structural_hash"`
	SenderDomainHash   string `json:"sender_domain_hash"`
	SubjectPatternHash string `json:"subject_pattern_hash"`
}

// Key returns the combined fingerprint used as the embedding-cache key.
func (f EmailFingerprint) Key() string {
	return strings.Join([]string{f.ContentHash, f.StructuralHash, f.SenderDomainHash, f.SubjectPatternHash}, ":")
}

// EmailFeatures are scalar/boolean attributes derived per record.
// They are recomputed each run and never cached.
type EmailFeatures struct {
	EmailID           string  `json:"email_id"`
	WordCount         int     `json:"word_count"`
	CharCount         int     `json:"char_count"`
	SentimentScore    float64 `json:"sentiment_score"`
	UrgencyScore      float64 `json:"urgency_score"`
	FormalityScore    float64 `json:"formality_score"`
	HasURLs           bool    `json:"has_urls"`
	HasPhoneNumbers   bool    `json:"has_phone_numbers"`
	HasDates          bool    `json:"has_dates"`
	HasCurrency       bool    `json:"has_currency"`
	SentHour          int     `json:"sent_hour"`
	SentDayOfWeek     string  `json:"sent_day_of_week"`
	IsWeekend         bool    `json:"is_weekend"`
	IsBusinessHours   bool    `json:"is_business_hours"`
	SenderIsAutomated bool    `json:"sender_is_automated"`
}

// EmailEmbedding is a persisted vector keyed by content fingerprint.
// Dimension is constant per model version.
type EmailEmbedding struct {
	Fingerprint string    `json:"fingerprint"`
	Vector      []float64 `json:"vector"`
	Model       string    `json:"model"`
	Dimension   int       `json:"dimension"`
	CreatedAt   time.Time `json:"created_at"`
}

// PatternType is the closed set of detector families.
type PatternType string

const (
	PatternTypeSender     PatternType = "sender"
	PatternTypeSubject    PatternType = "subject"
	PatternTypeTemporal   PatternType = "temporal"
	PatternTypeLabel      PatternType = "label"
	PatternTypeAttachment PatternType = "attachment"
	PatternTypeCluster    PatternType = "cluster"
)

// SenderCharacteristics describe a recurring-sender pattern.
type SenderCharacteristics struct {
	Sender       string  `json:"sender"`
	SenderType   string  `json:"sender_type"`
	EmailsPerDay float64 `json:"emails_per_day,omitempty"`
}

// SubjectCharacteristics describe a subject-motif pattern.
type SubjectCharacteristics struct {
	Motif    string   `json:"motif"`
	Keywords []string `json:"keywords"`
}

// TemporalCharacteristics describe a weekday or hour-of-day cluster.
type TemporalCharacteristics struct {
	Granularity string  `json:"granularity"` // "weekday" or "hour"
	Weekday     string  `json:"weekday,omitempty"`
	Hour        int     `json:"hour"`
	Share       float64 `json:"share"`
}

// LabelCharacteristics describe a label-correlation pattern.
type LabelCharacteristics struct {
	Label string `json:"label"`
}

// AttachmentCharacteristics describe an attachment or size-outlier pattern.
type AttachmentCharacteristics struct {
	Kind         string `json:"kind"` // "attachment" or "large"
	AvgSizeBytes int64  `json:"avg_size_bytes,omitempty"`
}

// ClusterCharacteristics describe a semantic cluster.
type ClusterCharacteristics struct {
	Theme          string   `json:"theme"`
	Strategy       string   `json:"strategy"` // "density" or "partition"
	DominantSender string   `json:"dominant_sender,omitempty"`
	SenderShare    float64  `json:"sender_share,omitempty"`
	CommonKeywords []string `json:"common_keywords,omitempty"`
	CommonLabels   []string `json:"common_labels,omitempty"`
}

// PatternCharacteristics carries exactly one per-type payload, selected
// by the owning pattern's PatternType.
type PatternCharacteristics struct {
	Sender     *SenderCharacteristics     `json:"sender,omitempty"`
	Subject    *SubjectCharacteristics    `json:"subject,omitempty"`
	Temporal   *TemporalCharacteristics   `json:"temporal,omitempty"`
	Label      *LabelCharacteristics      `json:"label,omitempty"`
	Attachment *AttachmentCharacteristics `json:"attachment,omitempty"`
	Cluster    *ClusterCharacteristics    `json:"cluster,omitempty"`
}

// EmailPattern is a statistically supported regularity shared by a subset
// of the analyzed emails. Patterns are produced fresh each run and never
// mutated once emitted.
type EmailPattern struct {
	PatternType     PatternType            `json:"pattern_type"`
	Description     string                 `json:"description"`
	EmailCount      int                    `json:"email_count"`
	TotalUniverse   int                    `json:"total_email_universe"`
	Confidence      float64                `json:"confidence"`
	Characteristics PatternCharacteristics `json:"characteristics"`
	ExampleEmailIDs []string               `json:"example_email_ids"`
}

// RuleCondition is a field/operator/value triple.
type RuleCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// RuleAction is an action type plus parameters.
type RuleAction struct {
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// RuleComplexity buckets a suggestion by its condition count.
type RuleComplexity string

const (
	ComplexitySimple   RuleComplexity = "simple"
	ComplexityModerate RuleComplexity = "moderate"
	ComplexityComplex  RuleComplexity = "complex"
	ComplexityAdvanced RuleComplexity = "advanced"
)

// ROIBreakdown quantifies the value of applying a suggested rule.
type ROIBreakdown struct {
	TimeSavedHours     float64        `json:"time_saved_hours"`
	MonetaryValue      float64        `json:"monetary_value"`
	ImplementationCost float64        `json:"implementation_cost"`
	NetBenefit         float64        `json:"net_benefit"`
	ROIPercent         float64        `json:"roi_percent"`
	Complexity         RuleComplexity `json:"complexity"`
}

// CategorySuggestion is an actionable filtering rule derived from a
// pattern. RuleConditions is always non-empty.
type CategorySuggestion struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	SourcePatternType    PatternType     `json:"source_pattern_type"`
	SourceDescription    string          `json:"source_description"`
	RuleConditions       []RuleCondition `json:"rule_conditions"`
	RuleActions          []RuleAction    `json:"rule_actions"`
	Confidence           float64         `json:"confidence"`
	EstimatedTimeSavings float64         `json:"estimated_time_savings"`
	ROI                  ROIBreakdown    `json:"roi"`
	ExampleEmailIDs      []string        `json:"example_email_ids"`
}

// BatchError records a single per-item failure inside a batch run.
type BatchError struct {
	EmailID string `json:"email_id"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// BatchProcessingResult summarizes a chunked processing run.
type BatchProcessingResult struct {
	TotalItems            int          `json:"total_items"`
	ProcessedSuccessfully int          `json:"processed_successfully"`
	FailedItems           int          `json:"failed_items"`
	SkippedItems          int          `json:"skipped_items"`
	StartedAt             time.Time    `json:"started_at"`
	CompletedAt           time.Time    `json:"completed_at"`
	ElapsedSeconds        float64      `json:"elapsed_seconds"`
	ItemsPerSecond        float64      `json:"items_per_second"`
	Errors                []BatchError `json:"errors,omitempty"`
	SuccessRate           float64      `json:"success_rate"`
	ErrorRate             float64      `json:"error_rate"`
}

// Finalize computes the derived timing and rate fields.
func (r *BatchProcessingResult) Finalize(completedAt time.Time) {
	r.CompletedAt = completedAt
	r.ElapsedSeconds = completedAt.Sub(r.StartedAt).Seconds()
	if r.ElapsedSeconds > 0 {
		processed := r.ProcessedSuccessfully + r.FailedItems
		r.ItemsPerSecond = float64(processed) / r.ElapsedSeconds
	}
	if r.TotalItems > 0 {
		r.SuccessRate = float64(r.ProcessedSuccessfully) / float64(r.TotalItems)
		r.ErrorRate = float64(r.FailedItems) / float64(r.TotalItems)
	}
}

// AnalysisSummary is a compact statistics block for the whole run.
type AnalysisSummary struct {
	TotalEmails     int    `json:"total_emails"`
	UniqueSenders   int    `json:"unique_senders"`
	TopSender       string `json:"top_sender,omitempty"`
	TopSenderCount  int    `json:"top_sender_count,omitempty"`
	OldestTimestamp string `json:"oldest_timestamp,omitempty"`
	NewestTimestamp string `json:"newest_timestamp,omitempty"`
	PatternCount    int    `json:"pattern_count"`
	SuggestionCount int    `json:"suggestion_count"`
}

// EmailAnalysisResult is the terminal output of a pipeline run.
type EmailAnalysisResult struct {
	RunID       string                 `json:"run_id"`
	ModelUsed   string                 `json:"model_used"`
	AnalyzedAt  time.Time              `json:"analyzed_at"`
	Patterns    []EmailPattern         `json:"patterns"`
	Suggestions []CategorySuggestion   `json:"suggestions"`
	Summary     AnalysisSummary        `json:"summary"`
	BatchResult *BatchProcessingResult `json:"batch_result,omitempty"`
}

// ParseTimestamp parses a record timestamp, trying the formats mailbox
// exports actually produce. The second return is false when nothing matched.
func ParseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	formats := []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
