package suggest

import (
	"strconv"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
)

// Condition fields and operators emitted by the generator.
const (
	FieldSender        = "sender"
	FieldSubject       = "subject"
	FieldContent       = "content"
	FieldLabel         = "label"
	FieldHasAttachment = "has_attachment"
	FieldSize          = "size"
	FieldAgeDays       = "age_days"

	OpContains    = "contains"
	OpContainsAny = "contains_any"
	OpEquals      = "equals"
	OpGreaterThan = "greater_than"
)

// EvaluateCondition checks a rule condition against a snapshot record.
// Age conditions depend on evaluation time, not record content, and are
// vacuously true here; they are enforced by whatever executes the rule.
func EvaluateCondition(cond core.RuleCondition, record core.EmailRecord) bool {
	switch cond.Field {
	case FieldSender:
		return matchString(strings.ToLower(record.Sender), cond)
	case FieldSubject:
		return matchString(strings.ToLower(record.Subject), cond)
	case FieldContent:
		return matchString(strings.ToLower(record.Subject+" "+record.Snippet), cond)
	case FieldLabel:
		for _, label := range record.Labels {
			if strings.EqualFold(label, cond.Value) {
				return true
			}
		}
		return false
	case FieldHasAttachment:
		return strconv.FormatBool(record.HasAttachment) == cond.Value
	case FieldSize:
		threshold, err := strconv.ParseInt(cond.Value, 10, 64)
		if err != nil {
			return false
		}
		if cond.Operator == OpGreaterThan {
			return record.SizeEstimate > threshold
		}
		return record.SizeEstimate == threshold
	case FieldAgeDays:
		return true
	default:
		return false
	}
}

// EvaluateConditions checks all conditions conjunctively.
func EvaluateConditions(conds []core.RuleCondition, record core.EmailRecord) bool {
	for _, cond := range conds {
		if !EvaluateCondition(cond, record) {
			return false
		}
	}
	return true
}

func matchString(haystack string, cond core.RuleCondition) bool {
	value := strings.ToLower(cond.Value)
	switch cond.Operator {
	case OpContains:
		return strings.Contains(haystack, value)
	case OpContainsAny:
		for _, alt := range strings.Split(value, "|") {
			if alt != "" && strings.Contains(haystack, alt) {
				return true
			}
		}
		return false
	case OpEquals:
		return haystack == value
	default:
		return false
	}
}
