// Package features derives structural, temporal, and linguistic
// attributes per record. Extraction is a pure function and is recomputed
// each run; nothing here touches the embedding cache.
package features

import (
	"regexp"
	"strings"
	"time"

	"github.com/mailsift/mailsift/internal/core"
)

var (
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	phonePattern    = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	datePattern     = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b(?i:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? \d{1,2}\b`)
	currencyPattern = regexp.MustCompile(`[$€£¥]\s?\d|\b\d+(?:\.\d{2})?\s?(?:USD|EUR|GBP)\b`)
)

// automatedSenderKeywords mark senders that are almost certainly machines.
var automatedSenderKeywords = []string{"noreply", "no-reply", "automated", "notification", "system"}

// urgencyKeywords feed the urgency placeholder score.
var urgencyKeywords = []string{"urgent", "asap", "immediately", "action required", "expires"}

// Extract derives EmailFeatures for a single record. Timestamp parsing
// failures default to neutral values (hour 12, Monday, business hours)
// rather than failing.
func Extract(record core.EmailRecord) core.EmailFeatures {
	text := record.Subject + " " + record.Snippet
	lower := strings.ToLower(text)

	features := core.EmailFeatures{
		EmailID:           record.ID,
		WordCount:         len(strings.Fields(text)),
		CharCount:         len(text),
		SentimentScore:    0.5,
		UrgencyScore:      urgencyScore(lower),
		FormalityScore:    0.5,
		HasURLs:           urlPattern.MatchString(text),
		HasPhoneNumbers:   phonePattern.MatchString(text),
		HasDates:          datePattern.MatchString(text),
		HasCurrency:       currencyPattern.MatchString(text),
		SenderIsAutomated: SenderIsAutomated(record.Sender),
	}

	if t, ok := core.ParseTimestamp(record.Timestamp); ok {
		features.SentHour = t.Hour()
		features.SentDayOfWeek = t.Weekday().String()
		features.IsWeekend = t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
		features.IsBusinessHours = !features.IsWeekend && t.Hour() >= 9 && t.Hour() < 17
	} else {
		features.SentHour = 12
		features.SentDayOfWeek = time.Monday.String()
		features.IsBusinessHours = true
	}

	return features
}

// ExtractAll extracts features for every record, keyed by record ID.
func ExtractAll(records []core.EmailRecord) map[string]core.EmailFeatures {
	result := make(map[string]core.EmailFeatures, len(records))
	for _, record := range records {
		result[record.ID] = Extract(record)
	}
	return result
}

// SenderIsAutomated reports whether the sender address matches the
// automated-sender keyword list.
func SenderIsAutomated(sender string) bool {
	lower := strings.ToLower(sender)
	for _, keyword := range automatedSenderKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func urgencyScore(lower string) float64 {
	score := 0.0
	for _, keyword := range urgencyKeywords {
		if strings.Contains(lower, keyword) {
			score += 0.2
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
