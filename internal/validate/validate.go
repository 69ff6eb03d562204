// Package validate checks entities against their field-level contracts before
// they reach the store. Validation is pure: it never touches storage, and it
// collects every violation in declaration order rather than failing fast, so
// the caller gets complete feedback in one round trip.
package validate

import (
	"fmt"

	"github.com/fizzlab/salesintel/internal/domain"
)

// checker accumulates violations for one entity.
type checker struct {
	entity     string
	violations []domain.Violation
}

func (c *checker) add(field, format string, args ...any) {
	c.violations = append(c.violations, domain.Violation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) required(field, value string) {
	if value == "" {
		c.add(field, "required")
	}
}

func (c *checker) inRange(field string, value, lo, hi float64) {
	if value < lo || value > hi {
		c.add(field, "must be in [%g, %g], got %g", lo, hi, value)
	}
}

func (c *checker) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &domain.ErrValidation{Entity: c.entity, Violations: c.violations}
}

// Account validates an account against its contract.
func Account(a *domain.Account) error {
	c := &checker{entity: "account"}

	c.required("name", a.Name)
	if !a.AccountType.Valid() {
		c.add("account_type", "unknown account type %q", string(a.AccountType))
	}
	c.required("region", a.Region)
	c.required("country", a.Country)
	if a.AnnualRevenue < 0 {
		c.add("annual_revenue", "must be >= 0, got %g", a.AnnualRevenue)
	}
	if a.EmployeeCount < 0 {
		c.add("employee_count", "must be >= 0, got %d", a.EmployeeCount)
	}
	c.inRange("health_score", a.HealthScore, 0, 100)
	c.inRange("churn_risk_score", a.ChurnRiskScore, 0, 100)
	if a.LifetimeValue < 0 {
		c.add("lifetime_value", "must be >= 0, got %g", a.LifetimeValue)
	}
	for i, p := range a.CurrentProducts {
		if !p.Valid() {
			c.add(fmt.Sprintf("current_products[%d]", i), "unknown product line %q", string(p))
		}
	}
	if !a.CreatedDate.IsZero() && !a.LastActivityDate.IsZero() && a.LastActivityDate.Before(a.CreatedDate) {
		c.add("last_activity_date", "must not precede created_date")
	}
	if a.MachineUptimePct != nil {
		c.inRange("machine_uptime_percentage", *a.MachineUptimePct, 0, 100)
	}

	return c.err()
}

// Contact validates a contact against its contract. Referential existence of
// the linked account is the store's concern, not validation's.
func Contact(ct *domain.Contact) error {
	c := &checker{entity: "contact"}

	c.required("account_id", ct.AccountID)
	c.required("first_name", ct.FirstName)
	c.required("last_name", ct.LastName)
	if ct.InfluenceLevel < 1 || ct.InfluenceLevel > 10 {
		c.add("influence_level", "must be in [1, 10], got %d", ct.InfluenceLevel)
	}

	return c.err()
}

// Opportunity validates a deal against its contract. The probability-rises-
// with-stage expectation is advisory and deliberately not enforced here.
func Opportunity(o *domain.Opportunity) error {
	c := &checker{entity: "opportunity"}

	c.required("account_id", o.AccountID)
	c.required("name", o.Name)
	if !o.Stage.Valid() {
		c.add("stage", "unknown stage %q", string(o.Stage))
	}
	c.inRange("probability", o.Probability, 0, 100)
	if o.Amount < 0 {
		c.add("amount", "must be >= 0, got %g", o.Amount)
	}
	for i, p := range o.ProductLines {
		if !p.Valid() {
			c.add(fmt.Sprintf("product_lines[%d]", i), "unknown product line %q", string(p))
		}
	}

	return c.err()
}

// Communication validates a logged interaction against its contract.
func Communication(cm *domain.Communication) error {
	c := &checker{entity: "communication"}

	c.required("account_id", cm.AccountID)
	if !cm.CommunicationType.Valid() {
		c.add("communication_type", "unknown communication type %q", string(cm.CommunicationType))
	}
	c.required("subject", cm.Subject)
	if !cm.Direction.Valid() {
		c.add("direction", "unknown direction %q", string(cm.Direction))
	}
	if !cm.SentimentLabel.Valid() {
		c.add("sentiment_label", "unknown sentiment %q", string(cm.SentimentLabel))
	}
	c.inRange("sentiment_confidence", cm.SentimentConfidence, 0, 1)

	return c.err()
}

// Insight validates an AI insight against its contract. This is applied both
// to caller-supplied insights and to the structured part of remote-model
// responses before they are persisted.
func Insight(in *domain.AIInsight) error {
	c := &checker{entity: "ai_insight"}

	c.required("insight_type", in.InsightType)
	c.required("title", in.Title)
	c.inRange("confidence_score", in.ConfidenceScore, 0, 1)
	if !in.Priority.Valid() {
		c.add("priority", "unknown priority %q", string(in.Priority))
	}

	return c.err()
}
