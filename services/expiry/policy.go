package expiry

import (
	"fmt"
	"slices"

	"license-tracker/pkg/celengine"
	"license-tracker/services/license"

	"go.uber.org/zap"
)

// DefaultMilestones are the days-before-expiry on which owners are reminded.
var DefaultMilestones = []int{45, 30, 15, 7, 1}

// IsNotifyDay reports whether daysLeft hits a milestone exactly or falls
// under the urgent cutoff when one is set.
func IsNotifyDay(daysLeft int, milestones []int, urgentCutoff *int) bool {
	if slices.Contains(milestones, daysLeft) {
		return true
	}
	return urgentCutoff != nil && daysLeft < *urgentCutoff
}

// Policy decides which licenses are due for a reminder today.
type Policy struct {
	milestones   []int
	urgentCutoff *int
	expr         *celengine.Predicate
}

// exprSchema lists the attributes an expression may reference.
var exprSchema = map[string]interface{}{
	"days_left":   int64(0),
	"name":        "",
	"expiry_date": "",
}

// NewPolicy compiles expression, when given, once. It is OR-ed with the
// milestone rule.
func NewPolicy(milestones []int, urgentCutoff *int, expression string) (*Policy, error) {
	if len(milestones) == 0 && urgentCutoff == nil && expression == "" {
		milestones = DefaultMilestones
	}

	p := &Policy{
		milestones:   slices.Clone(milestones),
		urgentCutoff: urgentCutoff,
	}
	if expression != "" {
		pred, err := celengine.Compile(expression, exprSchema)
		if err != nil {
			return nil, fmt.Errorf("scanner.expression: %w", err)
		}
		p.expr = pred
	}
	return p, nil
}

func (p *Policy) Match(daysLeft int, l *license.License) bool {
	if IsNotifyDay(daysLeft, p.milestones, p.urgentCutoff) {
		return true
	}
	if p.expr == nil {
		return false
	}

	ok, err := p.expr.Evaluate(map[string]interface{}{
		"days_left":   int64(daysLeft),
		"name":        l.Name,
		"expiry_date": l.ExpiryDate,
	})
	if err != nil {
		zap.L().Warn("policy expression failed",
			zap.String("expression", p.expr.String()),
			zap.String("license_id", l.ID),
			zap.Error(err))
		return false
	}
	return ok
}

// Describe is stored with each scan job.
func (p *Policy) Describe() map[string]any {
	out := map[string]any{"milestones": p.milestones}
	if p.urgentCutoff != nil {
		out["urgent_cutoff"] = *p.urgentCutoff
	}
	if p.expr != nil {
		out["expression"] = p.expr.String()
	}
	return out
}
