// Package fingerprint derives deterministic content signatures for email
// records. The signature is the embedding-cache key and the near-duplicate
// detector, so it must be a pure function of record content. Labels are
// deliberately excluded: a label change is a mailbox-state change, not a
// content change, and must not invalidate a cached embedding.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
)

var digitRuns = regexp.MustCompile(`\d+`)

// Compute derives the four-part fingerprint for a record.
func Compute(record core.EmailRecord) core.EmailFingerprint {
	return core.EmailFingerprint{
		ContentHash:        shortHash(record.Subject + "\x00" + record.Snippet),
		StructuralHash:     shortHash(structuralShape(record)),
		SenderDomainHash:   shortHash(senderDomain(record.Sender)),
		SubjectPatternHash: shortHash(subjectPattern(record.Subject)),
	}
}

// Key is a convenience for Compute(record).Key().
func Key(record core.EmailRecord) string {
	return Compute(record).Key()
}

// shortHash returns the first 16 hex chars of a SHA-256 digest.
func shortHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}

// structuralShape encodes coarse structure: attachment presence and
// count, size bucket, and subject length bucket.
func structuralShape(record core.EmailRecord) string {
	return fmt.Sprintf("att=%t/%d;size=%d;subj=%d",
		record.HasAttachment,
		record.AttachmentCount,
		sizeBucket(record.SizeEstimate),
		len(record.Subject)/32,
	)
}

func sizeBucket(size int64) int {
	switch {
	case size <= 0:
		return 0
	case size < 10_000:
		return 1
	case size < 100_000:
		return 2
	case size < 1_000_000:
		return 3
	default:
		return 4
	}
}

// senderDomain extracts the lowercased domain part of an address,
// tolerating "Display Name <addr@domain>" forms.
func senderDomain(sender string) string {
	addr := sender
	if start := strings.LastIndex(sender, "<"); start >= 0 {
		if end := strings.LastIndex(sender, ">"); end > start {
			addr = sender[start+1 : end]
		}
	}
	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return strings.ToLower(strings.TrimSpace(addr))
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// subjectPattern lowercases the subject and collapses digit runs, so
// "Order #12345 shipped" and "Order #99 shipped" share a pattern hash.
func subjectPattern(subject string) string {
	collapsed := digitRuns.ReplaceAllString(strings.ToLower(subject), "#")
	return strings.Join(strings.Fields(collapsed), " ")
}
