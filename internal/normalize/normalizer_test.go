package normalize

import (
	"strings"
	"testing"

	"github.com/mailsift/mailsift/internal/core"
	"github.com/mailsift/mailsift/internal/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestNormalizer(maxChars int) *Normalizer {
	return NewNormalizer(utils.NewTextProcessor(zap.NewNop()), maxChars, zap.NewNop())
}

func TestNormalizeSegmentOrder(t *testing.T) {
	normalizer := newTestNormalizer(0)

	text := normalizer.Normalize(core.EmailRecord{
		Sender:  "News <news@example.com>",
		Subject: "Weekly Digest",
		Snippet: "Top stories this week",
		Labels:  []string{"INBOX", "Newsletters"},
	})

	lines := strings.Split(text, "\n")
	assert.Equal(t, []string{
		"SUBJECT: Weekly Digest",
		"CONTENT: Top stories this week",
		"FROM: News",
		"LABELS: INBOX, Newsletters",
	}, lines)
}

func TestNormalizeOmitsEmptySegments(t *testing.T) {
	normalizer := newTestNormalizer(0)

	text := normalizer.Normalize(core.EmailRecord{Subject: "Hello"})

	assert.Equal(t, "SUBJECT: Hello", text)
	assert.NotContains(t, text, "CONTENT:")
	assert.NotContains(t, text, "LABELS:")
}

func TestNormalizeStripsHTML(t *testing.T) {
	normalizer := newTestNormalizer(0)

	text := normalizer.Normalize(core.EmailRecord{
		Subject: "Sale",
		Snippet: "<p>Big   <b>deals</b>\ttoday</p>",
	})

	assert.Contains(t, text, "CONTENT: Big deals today")
	assert.NotContains(t, text, "<")
}

func TestNormalizeCapsLength(t *testing.T) {
	normalizer := newTestNormalizer(64)

	text := normalizer.Normalize(core.EmailRecord{
		Subject: strings.Repeat("long subject ", 50),
		Snippet: strings.Repeat("body ", 100),
	})

	assert.LessOrEqual(t, len(text), 64)
	assert.True(t, strings.HasPrefix(text, "SUBJECT: "))
}

func TestNormalizeBareAddressSender(t *testing.T) {
	normalizer := newTestNormalizer(0)

	text := normalizer.Normalize(core.EmailRecord{
		Subject: "Hi",
		Sender:  "alice@example.com",
	})

	assert.Contains(t, text, "FROM: alice@example.com")
}
