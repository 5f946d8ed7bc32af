// Package suggest converts retained patterns into actionable filtering
// rules with quantified time-savings and ROI.
package suggest

import (
	"fmt"
	"strings"

	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// archiveCountThreshold: sender and label patterns this large get an
// archive action instead of a label action.
const archiveCountThreshold = 20

// Confidence discounts for inherently less certain pattern sources.
const (
	clusterConfidenceFactor  = 0.8
	temporalConfidenceFactor = 0.9
)

// complexityMinutes is the fixed implementation-cost table.
var complexityMinutes = map[core.RuleComplexity]float64{
	core.ComplexitySimple:   5,
	core.ComplexityModerate: 15,
	core.ComplexityComplex:  30,
	core.ComplexityAdvanced: 60,
}

// Generator maps patterns to category suggestions.
type Generator struct {
	hourlyRate      float64
	secondsPerEmail float64
	logger          *zap.Logger
}

// NewGenerator creates a new suggestion generator
func NewGenerator(hourlyRate, secondsPerEmail float64, logger *zap.Logger) *Generator {
	return &Generator{
		hourlyRate:      hourlyRate,
		secondsPerEmail: secondsPerEmail,
		logger:          logger,
	}
}

// Generate produces suggestions for every pattern that maps to a rule.
func (g *Generator) Generate(patterns []core.EmailPattern) []core.CategorySuggestion {
	var suggestions []core.CategorySuggestion
	for _, p := range patterns {
		if s, ok := g.FromPattern(p); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

// FromPattern maps a single pattern to a suggestion. The second return
// is false when the pattern has no actionable rule shape.
func (g *Generator) FromPattern(p core.EmailPattern) (core.CategorySuggestion, bool) {
	var (
		name       string
		conditions []core.RuleCondition
		actions    []core.RuleAction
		confidence = p.Confidence
	)

	switch p.PatternType {
	case core.PatternTypeSender:
		c := p.Characteristics.Sender
		if c == nil || c.Sender == "" {
			return core.CategorySuggestion{}, false
		}
		conditions = []core.RuleCondition{{Field: FieldSender, Operator: OpContains, Value: c.Sender}}
		if p.EmailCount > archiveCountThreshold {
			name = fmt.Sprintf("Auto-archive %s", c.Sender)
			actions = []core.RuleAction{{Type: "archive"}}
		} else {
			name = fmt.Sprintf("Label %s emails", c.Sender)
			actions = []core.RuleAction{{Type: "apply_label", Parameters: map[string]string{"label": c.SenderType}}}
		}

	case core.PatternTypeSubject:
		c := p.Characteristics.Subject
		if c == nil || len(c.Keywords) == 0 {
			return core.CategorySuggestion{}, false
		}
		name = fmt.Sprintf("Label %s emails", c.Motif)
		conditions = []core.RuleCondition{{
			Field:    FieldSubject,
			Operator: OpContainsAny,
			Value:    strings.Join(c.Keywords, "|"),
		}}
		actions = []core.RuleAction{{Type: "apply_label", Parameters: map[string]string{"label": titleCase(c.Motif)}}}

	case core.PatternTypeCluster:
		c := p.Characteristics.Cluster
		if c == nil {
			return core.CategorySuggestion{}, false
		}
		// A cluster rule needs a content anchor shared by its members;
		// without keywords or a dominant sender there is nothing a rule
		// engine could match on.
		switch {
		case len(c.CommonKeywords) > 0:
			conditions = []core.RuleCondition{{
				Field:    FieldContent,
				Operator: OpContainsAny,
				Value:    strings.Join(c.CommonKeywords, "|"),
			}}
		case c.DominantSender != "" && c.SenderShare >= 1.0:
			conditions = []core.RuleCondition{{Field: FieldSender, Operator: OpContains, Value: c.DominantSender}}
		default:
			return core.CategorySuggestion{}, false
		}
		name = fmt.Sprintf("Label: %s", c.Theme)
		actions = []core.RuleAction{{Type: "apply_label", Parameters: map[string]string{"label": c.Theme}}}
		confidence *= clusterConfidenceFactor

	case core.PatternTypeTemporal:
		c := p.Characteristics.Temporal
		if c == nil {
			return core.CategorySuggestion{}, false
		}
		name = fmt.Sprintf("Archive aged %s mail", strings.ToLower(describeBucket(c)))
		conditions = []core.RuleCondition{{Field: FieldAgeDays, Operator: OpGreaterThan, Value: "30"}}
		actions = []core.RuleAction{{Type: "archive"}}
		confidence *= temporalConfidenceFactor

	case core.PatternTypeLabel:
		c := p.Characteristics.Label
		if c == nil || p.EmailCount <= archiveCountThreshold {
			return core.CategorySuggestion{}, false
		}
		name = fmt.Sprintf("Auto-archive %s", c.Label)
		conditions = []core.RuleCondition{{Field: FieldLabel, Operator: OpEquals, Value: c.Label}}
		actions = []core.RuleAction{{Type: "archive"}}

	case core.PatternTypeAttachment:
		c := p.Characteristics.Attachment
		if c == nil {
			return core.CategorySuggestion{}, false
		}
		if c.Kind == "attachment" {
			name = "Label emails with attachments"
			conditions = []core.RuleCondition{{Field: FieldHasAttachment, Operator: OpEquals, Value: "true"}}
			actions = []core.RuleAction{{Type: "apply_label", Parameters: map[string]string{"label": "Attachments"}}}
		} else {
			name = "Label oversized emails"
			conditions = []core.RuleCondition{{Field: FieldSize, Operator: OpGreaterThan, Value: "100000"}}
			actions = []core.RuleAction{{Type: "apply_label", Parameters: map[string]string{"label": "Large Emails"}}}
		}

	default:
		return core.CategorySuggestion{}, false
	}

	roi := g.computeROI(p.EmailCount, len(conditions))

	return core.CategorySuggestion{
		Name:                 name,
		Description:          fmt.Sprintf("%s (%d emails, %.0f%% confidence)", p.Description, p.EmailCount, confidence*100),
		SourcePatternType:    p.PatternType,
		SourceDescription:    p.Description,
		RuleConditions:       conditions,
		RuleActions:          actions,
		Confidence:           confidence,
		EstimatedTimeSavings: roi.TimeSavedHours,
		ROI:                  roi,
		ExampleEmailIDs:      p.ExampleEmailIDs,
	}, true
}

// computeROI quantifies the value of the rule against its setup cost.
func (g *Generator) computeROI(emailCount, conditionCount int) core.ROIBreakdown {
	timeSavedHours := float64(emailCount) * g.secondsPerEmail / 3600.0
	monetaryValue := timeSavedHours * g.hourlyRate

	complexity := complexityFor(conditionCount)
	implementationCost := complexityMinutes[complexity] / 60.0 * g.hourlyRate

	netBenefit := monetaryValue - implementationCost
	denominator := implementationCost
	if denominator < 1 {
		denominator = 1
	}

	return core.ROIBreakdown{
		TimeSavedHours:     timeSavedHours,
		MonetaryValue:      monetaryValue,
		ImplementationCost: implementationCost,
		NetBenefit:         netBenefit,
		ROIPercent:         netBenefit / denominator * 100,
		Complexity:         complexity,
	}
}

func complexityFor(conditionCount int) core.RuleComplexity {
	switch {
	case conditionCount <= 1:
		return core.ComplexitySimple
	case conditionCount <= 3:
		return core.ComplexityModerate
	case conditionCount <= 6:
		return core.ComplexityComplex
	default:
		return core.ComplexityAdvanced
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func describeBucket(c *core.TemporalCharacteristics) string {
	if c.Granularity == "weekday" {
		return c.Weekday
	}
	return fmt.Sprintf("%02d:00", c.Hour)
}
