package detect

import (
	"fmt"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// Sender type classification and the base confidence each type carries
// before scorer adjustment.
const (
	senderTypeNewsletter    = "Newsletter"
	senderTypeNotification  = "Notification"
	senderTypeShopping      = "Shopping"
	senderTypeSocialMedia   = "Social Media"
	senderTypeHighFrequency = "High-Frequency"
	senderTypeRegular       = "Regular"
)

var senderBaseConfidence = map[string]float64{
	senderTypeNewsletter:    0.9,
	senderTypeNotification:  0.85,
	senderTypeShopping:      0.8,
	senderTypeSocialMedia:   0.85,
	senderTypeHighFrequency: 0.7,
	senderTypeRegular:       0.6,
}

var (
	newsletterSenderKeywords = []string{"newsletter", "digest", "weekly", "mailing"}
	notificationKeywords     = []string{"noreply", "no-reply", "notification", "notify", "alert", "automated", "system"}
	shoppingKeywords         = []string{"order", "shop", "store", "sales", "deals", "receipt"}
	socialKeywords           = []string{"facebook", "twitter", "linkedin", "instagram", "social", "reddit"}
)

// SenderDetector groups records by sender address and emits one pattern
// per recurring sender.
type SenderDetector struct {
	minPatternSize int
	logger         *zap.Logger
}

// NewSenderDetector creates a new sender detector
func NewSenderDetector(minPatternSize int, logger *zap.Logger) *SenderDetector {
	return &SenderDetector{minPatternSize: minPatternSize, logger: logger}
}

// Name identifies the detector family
func (d *SenderDetector) Name() string {
	return "sender"
}

// Detect emits a pattern for every sender with at least minPatternSize
// messages in the snapshot.
func (d *SenderDetector) Detect(records []core.EmailRecord, features map[string]core.EmailFeatures, embeddings map[string]*core.EmailEmbedding) []core.EmailPattern {
	groups := make(map[string][]core.EmailRecord)
	for _, record := range records {
		addr := senderAddress(record.Sender)
		if addr == "" {
			continue
		}
		groups[addr] = append(groups[addr], record)
	}

	var patterns []core.EmailPattern
	for _, addr := range sortedKeys(groups) {
		group := groups[addr]
		if len(group) < d.minPatternSize {
			continue
		}

		senderType := classifySender(addr, group)
		characteristics := core.SenderCharacteristics{
			Sender:       addr,
			SenderType:   senderType,
			EmailsPerDay: emailsPerDay(group),
		}

		patterns = append(patterns, core.EmailPattern{
			PatternType:   core.PatternTypeSender,
			Description:   fmt.Sprintf("%s emails from %s", senderType, addr),
			EmailCount:    len(group),
			TotalUniverse: len(records),
			Confidence:    senderBaseConfidence[senderType],
			Characteristics: core.PatternCharacteristics{
				Sender: &characteristics,
			},
			ExampleEmailIDs: exampleIDs(group),
		})
	}

	return patterns
}

// classifySender assigns a sender type using keyword and frequency
// heuristics over the address and the group's subjects.
func classifySender(addr string, group []core.EmailRecord) string {
	subjects := make([]string, 0, len(group))
	for _, r := range group {
		subjects = append(subjects, strings.ToLower(r.Subject))
	}
	allSubjects := strings.Join(subjects, " ")

	switch {
	case containsAny(addr, newsletterSenderKeywords) || containsAny(allSubjects, []string{"newsletter", "digest"}):
		return senderTypeNewsletter
	case containsAny(addr, notificationKeywords):
		return senderTypeNotification
	case containsAny(addr, shoppingKeywords) || containsAny(allSubjects, []string{"order", "receipt", "invoice"}):
		return senderTypeShopping
	case containsAny(addr, socialKeywords):
		return senderTypeSocialMedia
	case emailsPerDay(group) >= 1.0:
		return senderTypeHighFrequency
	default:
		return senderTypeRegular
	}
}

// emailsPerDay computes average daily volume from the group's timestamp
// spread. Requires at least 5 parseable dates; returns 0 otherwise.
func emailsPerDay(group []core.EmailRecord) float64 {
	var oldest, newest int64
	parseable := 0
	for _, r := range group {
		t, ok := core.ParseTimestamp(r.Timestamp)
		if !ok {
			continue
		}
		unix := t.Unix()
		if parseable == 0 {
			oldest, newest = unix, unix
		} else {
			if unix < oldest {
				oldest = unix
			}
			if unix > newest {
				newest = unix
			}
		}
		parseable++
	}
	if parseable < 5 {
		return 0
	}

	spreadDays := float64(newest-oldest) / 86400.0
	if spreadDays < 1.0 {
		spreadDays = 1.0
	}
	return float64(parseable) / spreadDays
}
