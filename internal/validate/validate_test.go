package validate_test

import (
	"errors"
	"testing"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/validate"
)

func validAccount() *domain.Account {
	return &domain.Account{
		ID:             "acc-1",
		Name:           "Summit Bottling Co",
		AccountType:    domain.AccountBottler,
		Region:         "North America",
		Country:        "USA",
		AnnualRevenue:  1_000_000,
		EmployeeCount:  120,
		HealthScore:    75,
		ChurnRiskScore: 20,
	}
}

func TestAccount_Valid(t *testing.T) {
	if err := validate.Account(validAccount()); err != nil {
		t.Fatalf("expected valid account, got %v", err)
	}
}

func TestAccount_CollectsAllViolations(t *testing.T) {
	a := validAccount()
	a.Name = ""
	a.AccountType = "franchise"
	a.HealthScore = 150
	a.ChurnRiskScore = -5

	err := validate.Account(a)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %T", err)
	}
	if ve.Entity != "account" {
		t.Errorf("expected entity 'account', got %q", ve.Entity)
	}
	if len(ve.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(ve.Violations), ve.Violations)
	}

	// Violations come back in field declaration order, not fail-fast.
	wantFields := []string{"name", "account_type", "health_score", "churn_risk_score"}
	for i, want := range wantFields {
		if ve.Violations[i].Field != want {
			t.Errorf("violation %d: expected field %q, got %q", i, want, ve.Violations[i].Field)
		}
	}
}

func TestAccount_UnknownProductLine(t *testing.T) {
	a := validAccount()
	a.CurrentProducts = []domain.ProductLine{domain.ProductSprite, "pepsi_max"}

	err := validate.Account(a)
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(ve.Violations) != 1 || ve.Violations[0].Field != "current_products[1]" {
		t.Errorf("expected single violation on current_products[1], got %v", ve.Violations)
	}
}

func TestContact_InfluenceBounds(t *testing.T) {
	c := &domain.Contact{
		AccountID:      "acc-1",
		FirstName:      "Maria",
		LastName:       "Silva",
		InfluenceLevel: 11,
	}
	err := validate.Contact(c)
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(ve.Violations) != 1 || ve.Violations[0].Field != "influence_level" {
		t.Errorf("expected single influence_level violation, got %v", ve.Violations)
	}

	c.InfluenceLevel = 5
	if err := validate.Contact(c); err != nil {
		t.Fatalf("expected valid contact, got %v", err)
	}
}

func TestOpportunity_StageAndProbability(t *testing.T) {
	o := &domain.Opportunity{
		AccountID:   "acc-1",
		Name:        "Freestyle rollout",
		Stage:       "renegotiation",
		Probability: 120,
		Amount:      -10,
	}
	err := validate.Opportunity(o)
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(ve.Violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(ve.Violations), ve.Violations)
	}
}

func TestCommunication_SentimentConfidence(t *testing.T) {
	c := &domain.Communication{
		AccountID:           "acc-1",
		CommunicationType:   domain.CommEmail,
		Subject:             "Quarterly business review",
		Direction:           domain.DirectionInbound,
		SentimentLabel:      domain.SentimentPositive,
		SentimentConfidence: 1.5,
	}
	err := validate.Communication(c)
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(ve.Violations) != 1 || ve.Violations[0].Field != "sentiment_confidence" {
		t.Errorf("expected single sentiment_confidence violation, got %v", ve.Violations)
	}
}

func TestInsight_RequiredFields(t *testing.T) {
	in := &domain.AIInsight{
		ConfidenceScore: 2,
		Priority:        "urgent",
	}
	err := validate.Insight(in)
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(ve.Violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(ve.Violations), ve.Violations)
	}

	in = &domain.AIInsight{
		InsightType:     "churn_prediction",
		Title:           "High churn risk",
		ConfidenceScore: 0.9,
		Priority:        domain.PriorityHigh,
	}
	if err := validate.Insight(in); err != nil {
		t.Fatalf("expected valid insight, got %v", err)
	}
}
