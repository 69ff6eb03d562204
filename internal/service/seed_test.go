package service_test

import (
	"context"
	"testing"

	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/service"

	"go.uber.org/zap"
)

func TestSeed_GeneratesValidDataset(t *testing.T) {
	store := newTestStore(t)
	crm := newCRMService(t, store)
	seeder := service.NewSeeder(crm, zap.NewNop())
	ctx := context.Background()

	if err := seeder.Seed(ctx, 10); err != nil {
		t.Fatalf("seed: %v", err)
	}

	accounts, err := store.QueryAccounts(ctx, port.AccountFilter{})
	if err != nil {
		t.Fatalf("query accounts: %v", err)
	}
	if len(accounts) != 10 {
		t.Fatalf("expected 10 accounts, got %d", len(accounts))
	}
	for _, a := range accounts {
		if a.ID == "" || a.Name == "" || !a.AccountType.Valid() {
			t.Errorf("malformed seeded account: %+v", a)
		}
		// Every account gets at least one contact.
		contacts, err := store.QueryContacts(ctx, a.ID)
		if err != nil {
			t.Fatalf("query contacts: %v", err)
		}
		if len(contacts) == 0 {
			t.Errorf("account %s has no contacts", a.ID)
		}
	}
}

func TestSeedIfEmpty_SkipsPopulatedStore(t *testing.T) {
	store := newTestStore(t)
	crm := newCRMService(t, store)
	seeder := service.NewSeeder(crm, zap.NewNop())
	ctx := context.Background()

	seedAccount(t, store, "existing", "West", 70, 20, 1_000_000)

	if err := seeder.SeedIfEmpty(ctx, 10); err != nil {
		t.Fatalf("seed if empty: %v", err)
	}

	accounts, err := store.QueryAccounts(ctx, port.AccountFilter{})
	if err != nil {
		t.Fatalf("query accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected seeding skipped, got %d accounts", len(accounts))
	}
}
