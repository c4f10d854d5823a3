// Package review checks a priced estimate against quote rules before it is
// sent to a customer.
package review

import (
	"fmt"
	"math"
	"strings"
	"time"

	"flooring-cost/decision/estimation"
	"flooring-cost/pkg/money"
)

// PolicyType defines the type of policy
type PolicyType string

const (
	PolicyTypeQuoteLimit   PolicyType = "quote_limit"
	PolicyTypeMinimumJob   PolicyType = "minimum_job"
	PolicyTypeZeroArea     PolicyType = "zero_area"
	PolicyTypeAIAdjustment PolicyType = "ai_adjustment"
)

// Severity defines policy violation severity
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Decision is the review outcome
type Decision string

const (
	DecisionPass Decision = "pass"
	DecisionWarn Decision = "warn"
	DecisionDeny Decision = "deny"
)

// Policy defines a quote rule. Threshold is dollars for quote_limit and
// minimum_job, percent for ai_adjustment, and unused for zero_area.
type Policy struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        PolicyType `json:"type"`
	Severity    Severity   `json:"severity"`
	Threshold   float64    `json:"threshold"`
	Enabled     bool       `json:"enabled"`
}

// Violation represents a policy violation
type Violation struct {
	PolicyID   string `json:"policy_id"`
	PolicyName string `json:"policy_name"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
}

// Warning represents a policy warning
type Warning struct {
	PolicyID string `json:"policy_id"`
	Message  string `json:"message"`
}

// Request contains the input for a review
type Request struct {
	Estimate         estimation.Estimate
	AIRecommendation *estimation.AIRecommendation
	CustomPolicies   []Policy
}

// Result contains the review outcome
type Result struct {
	Decision    Decision    `json:"decision"`
	Violations  []Violation `json:"violations"`
	Warnings    []Warning   `json:"warnings"`
	PoliciesRan int         `json:"policies_ran"`
	ReviewedAt  time.Time   `json:"reviewed_at"`
}

// Engine evaluates policies against estimates
type Engine struct {
	policies []Policy
	now      func() time.Time
}

// NewEngine creates a review engine with the default policies.
func NewEngine() *Engine {
	return &Engine{
		policies: DefaultPolicies(),
		now:      time.Now,
	}
}

// AddPolicy adds a custom policy
func (e *Engine) AddPolicy(p Policy) {
	e.policies = append(e.policies, p)
}

// Policies returns the engine's standing policies.
func (e *Engine) Policies() []Policy {
	return append([]Policy(nil), e.policies...)
}

// Evaluate runs every enabled policy against the estimate. An error-severity
// violation denies the quote; anything else flagged makes it a warning.
func (e *Engine) Evaluate(req Request) *Result {
	result := &Result{
		Decision:   DecisionPass,
		Violations: make([]Violation, 0),
		Warnings:   make([]Warning, 0),
		ReviewedAt: e.now(),
	}

	all := make([]Policy, 0, len(e.policies)+len(req.CustomPolicies))
	all = append(all, e.policies...)
	all = append(all, req.CustomPolicies...)

	for _, p := range all {
		if !p.Enabled {
			continue
		}
		result.PoliciesRan++

		message, flagged := evaluatePolicy(p, req)
		if !flagged {
			continue
		}

		if p.Severity == SeverityError {
			result.Violations = append(result.Violations, Violation{
				PolicyID:   p.ID,
				PolicyName: p.Name,
				Message:    message,
				Severity:   string(p.Severity),
			})
			result.Decision = DecisionDeny
			continue
		}

		result.Warnings = append(result.Warnings, Warning{PolicyID: p.ID, Message: message})
		if result.Decision == DecisionPass {
			result.Decision = DecisionWarn
		}
	}

	return result
}

func evaluatePolicy(p Policy, req Request) (string, bool) {
	est := req.Estimate

	switch p.Type {
	case PolicyTypeQuoteLimit:
		if est.Total > p.Threshold {
			return fmt.Sprintf("Quote total (%s) exceeds limit (%s)", money.Format(est.Total), money.Format(p.Threshold)), true
		}

	case PolicyTypeMinimumJob:
		if len(est.Items) > 0 && est.Total < p.Threshold {
			return fmt.Sprintf("Quote total (%s) is below the minimum job size (%s)", money.Format(est.Total), money.Format(p.Threshold)), true
		}

	case PolicyTypeZeroArea:
		if rooms := est.RoomsWithoutArea(); len(rooms) > 0 {
			return fmt.Sprintf("No floor area for: %s", strings.Join(rooms, ", ")), true
		}

	case PolicyTypeAIAdjustment:
		ai := req.AIRecommendation
		if ai == nil {
			return "", false
		}
		material := ai.Materials.PriceAdjustment * 100
		labor := ai.Labor.RateAdjustment * 100
		if math.Abs(material) > p.Threshold || math.Abs(labor) > p.Threshold {
			return fmt.Sprintf("AI adjustment (material %+.0f%%, labor %+.0f%%) exceeds %.0f%%", material, labor, p.Threshold), true
		}
	}

	return "", false
}

// QuoteLimitPolicy denies quotes whose total is above limit.
func QuoteLimitPolicy(limit float64) Policy {
	return Policy{
		ID:        "quote-limit",
		Name:      "Quote Limit",
		Type:      PolicyTypeQuoteLimit,
		Severity:  SeverityError,
		Threshold: limit,
		Enabled:   true,
	}
}

// DefaultPolicies are the rules every quote is reviewed against.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			ID:          "default-zero-area",
			Name:        "Rooms Without Area",
			Description: "Warn when a room is priced at zero square feet",
			Type:        PolicyTypeZeroArea,
			Severity:    SeverityWarning,
			Enabled:     true,
		},
		{
			ID:          "default-minimum-job",
			Name:        "Minimum Job Size",
			Description: "Warn when a quote falls below the minimum job size",
			Type:        PolicyTypeMinimumJob,
			Severity:    SeverityWarning,
			Threshold:   500,
			Enabled:     true,
		},
		{
			ID:          "default-ai-adjustment",
			Name:        "AI Adjustment Bound",
			Description: "Warn when an AI rate adjustment moves prices more than 25%",
			Type:        PolicyTypeAIAdjustment,
			Severity:    SeverityWarning,
			Threshold:   25,
			Enabled:     true,
		},
	}
}
