// Package normalize builds the weighted plain-text representation of a
// record used for embedding and keyword analysis.
package normalize

import (
	"regexp"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/utils"
	"go.uber.org/zap"
)

var (
	htmlTags   = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalizer converts an EmailRecord into bounded-length labeled text.
type Normalizer struct {
	textProcessor *utils.TextProcessor
	maxChars      int
	logger        *zap.Logger
}

// NewNormalizer creates a new Normalizer. maxChars caps the output
// length; values <= 0 disable the cap.
func NewNormalizer(textProcessor *utils.TextProcessor, maxChars int, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		textProcessor: textProcessor,
		maxChars:      maxChars,
		logger:        logger,
	}
}

// Normalize builds the SUBJECT/CONTENT/FROM/LABELS text for a record,
// omitting empty segments.
func (n *Normalizer) Normalize(record core.EmailRecord) string {
	var segments []string

	if subject := cleanText(record.Subject); subject != "" {
		segments = append(segments, "SUBJECT: "+subject)
	}
	if content := cleanText(record.Snippet); content != "" {
		segments = append(segments, "CONTENT: "+content)
	}
	if sender := cleanSender(record.Sender); sender != "" {
		segments = append(segments, "FROM: "+sender)
	}
	if len(record.Labels) > 0 {
		segments = append(segments, "LABELS: "+strings.Join(record.Labels, ", "))
	}

	text := strings.Join(segments, "\n")
	return n.textProcessor.ProcessText(text, n.maxChars)
}

// cleanText strips HTML tags and collapses whitespace.
func cleanText(text string) string {
	text = htmlTags.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// cleanSender reduces "Display Name <addr@domain>" to the display name
// when one is present, otherwise returns the bare address.
func cleanSender(sender string) string {
	sender = strings.TrimSpace(sender)
	if start := strings.LastIndex(sender, "<"); start > 0 {
		name := strings.Trim(strings.TrimSpace(sender[:start]), `"`)
		if name != "" {
			return name
		}
	}
	return strings.Trim(sender, "<>")
}
