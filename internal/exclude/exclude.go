package exclude

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports which mailbox labels are excluded from label-pattern
// detection. Bookkeeping labels like INBOX and UNREAD describe mailbox
// state rather than message category, so grouping by them is noise.
type Checker struct {
	labels map[string]struct{}
	logger *zap.Logger
}

// NewChecker creates a new label exclusion checker
func NewChecker(labels []string, logger *zap.Logger) *Checker {
	normalized := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		normalized[strings.ToUpper(strings.TrimSpace(label))] = struct{}{}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Debug("Initialized label exclusion checker", zap.Strings("labels", labels))
	}

	return &Checker{
		labels: normalized,
		logger: logger,
	}
}

// IsExcluded checks if a label is excluded from pattern detection
func (c *Checker) IsExcluded(label string) bool {
	_, ok := c.labels[strings.ToUpper(strings.TrimSpace(label))]
	return ok
}
