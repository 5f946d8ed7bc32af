// Package detect holds the six pattern-detector families. Detectors are
// independent and order-insensitive; their outputs are merged, scored,
// and deduplicated downstream.
package detect

import (
	"sort"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
)

// maxExampleIDs bounds the example sample carried on each pattern.
const maxExampleIDs = 5

// exampleIDs returns a bounded sample of record IDs, preserving order.
func exampleIDs(records []core.EmailRecord) []string {
	limit := len(records)
	if limit > maxExampleIDs {
		limit = maxExampleIDs
	}
	ids := make([]string, 0, limit)
	for _, r := range records[:limit] {
		ids = append(ids, r.ID)
	}
	return ids
}

// senderAddress extracts the bare lowercased address from a sender field,
// tolerating "Display Name <addr@domain>" forms.
func senderAddress(sender string) string {
	addr := sender
	if start := strings.LastIndex(sender, "<"); start >= 0 {
		if end := strings.LastIndex(sender, ">"); end > start {
			addr = sender[start+1 : end]
		}
	}
	return strings.ToLower(strings.TrimSpace(addr))
}

// sortedKeys returns map keys in lexical order, for deterministic
// iteration over grouped records.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// containsAny reports whether lower contains any of the given keywords.
func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
