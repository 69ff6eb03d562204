package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/cache"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/infra/sqlite"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/service"

	"go.uber.org/zap"
)

func newCRMService(t *testing.T, store *sqlite.Store) *service.CRMService {
	t.Helper()
	return service.NewCRMService(
		store,
		cache.New[any](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestCreateAccount_AssignsDefaults(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)

	a, err := svc.CreateAccount(context.Background(), &domain.Account{
		Name:        "Atlas Grocers",
		AccountType: domain.AccountGrocery,
		Region:      "Europe",
		Country:     "Germany",
		HealthScore: 60,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == "" {
		t.Error("expected generated id")
	}
	if a.CreatedDate.IsZero() {
		t.Error("expected created_date default")
	}
	if !a.LastActivityDate.Equal(a.CreatedDate) {
		t.Error("expected last_activity_date to default to created_date")
	}
}

func TestCreateAccount_ValidationRejected(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)

	_, err := svc.CreateAccount(context.Background(), &domain.Account{
		AccountType: "franchise",
		HealthScore: 300,
	})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	// name, account_type, region, country, health_score
	if len(ve.Violations) != 5 {
		t.Errorf("expected 5 violations, got %d: %v", len(ve.Violations), ve.Violations)
	}
}

func TestCreateContact_MissingAccountRejected(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)

	_, err := svc.CreateContact(context.Background(), &domain.Contact{
		AccountID:      "ghost",
		FirstName:      "Maria",
		LastName:       "Silva",
		InfluenceLevel: 5,
	})
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestListAccounts_RiskLevelShortcut(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)
	ctx := context.Background()

	seedAccount(t, store, "high", "West", 50, 85, 1_000_000)
	seedAccount(t, store, "low", "West", 80, 10, 1_000_000)
	// Churn exactly 70 is medium, not high; the high band is strictly above.
	seedAccount(t, store, "edge", "West", 60, 70, 1_000_000)

	got, err := svc.ListAccounts(ctx, port.AccountFilter{}, "high")
	if err != nil {
		t.Fatalf("list high: %v", err)
	}
	if len(got) != 1 || got[0].ID != "high" {
		t.Errorf("expected only high-risk account, got %v", got)
	}

	got, err = svc.ListAccounts(ctx, port.AccountFilter{}, "medium")
	if err != nil {
		t.Fatalf("list medium: %v", err)
	}
	if len(got) != 1 || got[0].ID != "edge" {
		t.Errorf("expected only edge account in medium band, got %v", got)
	}

	got, err = svc.ListAccounts(ctx, port.AccountFilter{}, "low")
	if err != nil {
		t.Fatalf("list low: %v", err)
	}
	if len(got) != 1 || got[0].ID != "low" {
		t.Errorf("expected only low-risk account, got %v", got)
	}

	_, err = svc.ListAccounts(ctx, port.AccountFilter{}, "extreme")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation for unknown risk level, got %v", err)
	}
}

func TestAdvanceOpportunityStage_SnapsProbability(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)
	ctx := context.Background()

	seedAccount(t, store, "acc-1", "West", 70, 20, 1_000_000)
	seedOpportunity(t, store, "opp-1", domain.StageProspecting, 100_000,
		time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	o, err := svc.AdvanceOpportunityStage(ctx, "opp-1", domain.StageClosedWon)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if o.Stage != domain.StageClosedWon || o.Probability != 100 {
		t.Errorf("expected closed_won at 100%%, got %s/%g", o.Stage, o.Probability)
	}

	_, err = svc.AdvanceOpportunityStage(ctx, "opp-1", "reopened")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation for unknown stage, got %v", err)
	}
}

func TestCreateCommunication_TouchesAccountActivity(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)
	ctx := context.Background()

	seedAccount(t, store, "acc-1", "West", 70, 20, 1_000_000)
	before, _ := store.GetAccount(ctx, "acc-1")

	commDate := before.LastActivityDate.AddDate(0, 1, 0)
	_, err := svc.CreateCommunication(ctx, &domain.Communication{
		AccountID:           "acc-1",
		CommunicationType:   domain.CommCall,
		Subject:             "Pricing discussion",
		Date:                commDate,
		Direction:           domain.DirectionInbound,
		SentimentLabel:      domain.SentimentNeutral,
		SentimentConfidence: 0.7,
	})
	if err != nil {
		t.Fatalf("create communication: %v", err)
	}

	after, _ := store.GetAccount(ctx, "acc-1")
	if !after.LastActivityDate.Equal(commDate) {
		t.Errorf("expected last_activity_date bumped to %v, got %v", commDate, after.LastActivityDate)
	}
}

func TestMarkInsightActedUpon(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)
	ctx := context.Background()

	seedAccount(t, store, "acc-1", "West", 70, 20, 1_000_000)
	created, err := svc.CreateInsight(ctx, &domain.AIInsight{
		AccountID:       "acc-1",
		InsightType:     "churn_prediction",
		Title:           "High churn risk",
		ConfidenceScore: 0.8,
		Priority:        domain.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("create insight: %v", err)
	}

	acted, err := svc.MarkInsightActedUpon(ctx, created.ID)
	if err != nil {
		t.Fatalf("act: %v", err)
	}
	if !acted.ActedUpon {
		t.Error("expected acted_upon true")
	}

	// A second act call is a harmless no-op.
	again, err := svc.MarkInsightActedUpon(ctx, created.ID)
	if err != nil || !again.ActedUpon {
		t.Errorf("expected idempotent act, got %v (%v)", again, err)
	}
}

func TestDeleteAccount_NoCascade(t *testing.T) {
	store := newTestStore(t)
	svc := newCRMService(t, store)
	ctx := context.Background()

	seedAccount(t, store, "acc-1", "West", 70, 20, 1_000_000)
	_, err := svc.CreateContact(ctx, &domain.Contact{
		AccountID:      "acc-1",
		FirstName:      "Noah",
		LastName:       "Kim",
		InfluenceLevel: 3,
	})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}

	if err := svc.DeleteAccount(ctx, "acc-1"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	// Children stay behind as orphans.
	contacts, err := svc.ListContacts(ctx, "acc-1")
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("expected orphaned contact to remain, got %d", len(contacts))
	}
}
