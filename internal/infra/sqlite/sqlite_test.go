package sqlite_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/sqlite"
	"github.com/fizzlab/salesintel/internal/port"

	"go.uber.org/zap"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testAccount(id string) *domain.Account {
	return &domain.Account{
		ID:               id,
		Name:             "Summit Bottling Co",
		AccountType:      domain.AccountBottler,
		Region:           "West",
		Country:          "USA",
		AnnualRevenue:    2_500_000,
		EmployeeCount:    340,
		CreatedDate:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		LastActivityDate: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		HealthScore:      72,
		ChurnRiskScore:   18,
		LifetimeValue:    8_000_000,
		CurrentProducts:  []domain.ProductLine{domain.ProductClassic, domain.ProductSprite},
	}
}

func asJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestAccountRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	a := testAccount("acc-1")
	machines := 12
	pours := 340.5
	uptime := 98.2
	a.FreestyleMachines = &machines
	a.AvgDailyPours = &pours
	a.MachineUptimePct = &uptime

	if err := store.InsertAccount(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if asJSON(t, got) != asJSON(t, a) {
		t.Errorf("round trip mismatch:\nwant %s\ngot  %s", asJSON(t, a), asJSON(t, got))
	}
}

func TestAccountRoundTrip_AbsentOptionals(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	a := testAccount("acc-1")
	if err := store.InsertAccount(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FreestyleMachines != nil || got.AvgDailyPours != nil {
		t.Error("expected absent machine fields to stay absent")
	}
	if asJSON(t, got) != asJSON(t, a) {
		t.Errorf("round trip mismatch:\nwant %s\ngot  %s", asJSON(t, a), asJSON(t, got))
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.GetAccount(context.Background(), "missing")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if nf.Resource != "account" || nf.ID != "missing" {
		t.Errorf("unexpected error detail: %+v", nf)
	}
}

func TestInsertAccount_Duplicate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.InsertAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := store.InsertAccount(ctx, testAccount("acc-1"))
	var dup *domain.ErrDuplicateKey
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestUpdateAccount_FullReplace(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	a := testAccount("acc-1")
	machines := 5
	a.FreestyleMachines = &machines
	if err := store.InsertAccount(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.HealthScore = 90
	got.FreestyleMachines = nil // update is a replace, not a merge
	if err := store.UpdateAccount(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if after.HealthScore != 90 {
		t.Errorf("expected health 90, got %g", after.HealthScore)
	}
	if after.FreestyleMachines != nil {
		t.Error("expected freestyle_machines_count removed by full replace")
	}
}

func TestUpdateAccount_StaleWrite(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.InsertAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	c1, _ := store.GetAccount(ctx, "acc-1")
	c2, _ := store.GetAccount(ctx, "acc-1")

	c1.HealthScore = 50
	if err := store.UpdateAccount(ctx, c1); err != nil {
		t.Fatalf("first update: %v", err)
	}

	c2.HealthScore = 95
	err := store.UpdateAccount(ctx, c2)
	var stale *domain.ErrStaleWrite
	if !errors.As(err, &stale) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}

	// First writer's value stands.
	after, _ := store.GetAccount(ctx, "acc-1")
	if after.HealthScore != 50 {
		t.Errorf("expected health 50, got %g", after.HealthScore)
	}
}

func TestUpdateAccount_NotFound(t *testing.T) {
	store := newStore(t)

	a := testAccount("ghost")
	err := store.UpdateAccount(context.Background(), a)
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAccount_Idempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.DeleteAccount(ctx, "never-existed"); err != nil {
		t.Fatalf("delete absent should be a no-op, got %v", err)
	}

	if err := store.InsertAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.DeleteAccount(ctx, "acc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := store.GetAccount(ctx, "acc-1")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteAccount(ctx, "acc-1"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestQueryAccounts_Filters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	west := testAccount("acc-west")
	west.Region = "West"
	west.ChurnRiskScore = 85

	east := testAccount("acc-east")
	east.Region = "East"
	east.ChurnRiskScore = 20

	for _, a := range []*domain.Account{west, east} {
		if err := store.InsertAccount(ctx, a); err != nil {
			t.Fatalf("insert %s: %v", a.ID, err)
		}
	}

	got, err := store.QueryAccounts(ctx, port.AccountFilter{Region: "West"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "acc-west" {
		t.Errorf("expected only acc-west, got %v", got)
	}

	min := 70.0
	got, err = store.QueryAccounts(ctx, port.AccountFilter{MinChurn: &min})
	if err != nil {
		t.Fatalf("query churn: %v", err)
	}
	if len(got) != 1 || got[0].ID != "acc-west" {
		t.Errorf("expected high churn match acc-west, got %v", got)
	}

	got, err = store.QueryAccounts(ctx, port.AccountFilter{Limit: 1})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected limit 1, got %d rows", len(got))
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	store, err := sqlite.Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.InsertAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = sqlite.Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Name != "Summit Bottling Co" {
		t.Errorf("unexpected account after reopen: %+v", got)
	}
}

func TestChildEntities(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.InsertAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("insert account: %v", err)
	}

	contact := &domain.Contact{
		ID:             "con-1",
		AccountID:      "acc-1",
		FirstName:      "Maria",
		LastName:       "Silva",
		InfluenceLevel: 8,
		DecisionMaker:  true,
	}
	if err := store.InsertContact(ctx, contact); err != nil {
		t.Fatalf("insert contact: %v", err)
	}

	opp := &domain.Opportunity{
		ID:                "opp-1",
		AccountID:         "acc-1",
		Name:              "Freestyle rollout",
		Stage:             domain.StageProposal,
		Probability:       50,
		Amount:            250_000,
		ExpectedCloseDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		CreatedDate:       time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := store.InsertOpportunity(ctx, opp); err != nil {
		t.Fatalf("insert opportunity: %v", err)
	}

	comm := &domain.Communication{
		ID:                  "com-1",
		AccountID:           "acc-1",
		OpportunityID:       "opp-1",
		CommunicationType:   domain.CommMeeting,
		Subject:             "Quarterly business review",
		Date:                time.Date(2026, 6, 20, 14, 0, 0, 0, time.UTC),
		Direction:           domain.DirectionOutbound,
		SentimentLabel:      domain.SentimentPositive,
		SentimentConfidence: 0.92,
	}
	if err := store.InsertCommunication(ctx, comm); err != nil {
		t.Fatalf("insert communication: %v", err)
	}

	contacts, err := store.QueryContacts(ctx, "acc-1")
	if err != nil || len(contacts) != 1 {
		t.Fatalf("expected one contact, got %v (%v)", contacts, err)
	}

	opps, err := store.QueryOpportunities(ctx, port.OpportunityFilter{Stage: domain.StageProposal})
	if err != nil || len(opps) != 1 {
		t.Fatalf("expected one opportunity, got %v (%v)", opps, err)
	}

	comms, err := store.QueryCommunications(ctx, port.CommunicationFilter{OpportunityID: "opp-1"})
	if err != nil || len(comms) != 1 {
		t.Fatalf("expected one communication, got %v (%v)", comms, err)
	}
	if comms[0].SentimentConfidence != 0.92 {
		t.Errorf("sentiment confidence lost in round trip: %g", comms[0].SentimentConfidence)
	}
}
