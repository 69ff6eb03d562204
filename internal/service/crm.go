// Package service provides the business logic layer (use cases).
// CRMService handles entity lifecycle for accounts, contacts, opportunities,
// communications and stored insights; AggregationService builds the read-side
// dashboard views; InsightService drives the remote model pipeline.
package service

import (
	"context"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/validate"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var crmTracer = otel.Tracer("service/crm")

// CRMService orchestrates entity CRUD on top of the store. Every write
// flushes the derived-view cache so dashboards never serve stale rollups.
type CRMService struct {
	store   port.CRMStore
	views   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCRMService creates a new CRM service.
func NewCRMService(store port.CRMStore, views port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *CRMService {
	return &CRMService{store: store, views: views, metrics: metrics, logger: logger}
}

// invalidate drops all cached dashboard views after a successful write.
func (s *CRMService) invalidate() {
	s.views.Flush()
}

// ensureAccountExists rejects writes that reference a missing parent account.
func (s *CRMService) ensureAccountExists(ctx context.Context, accountID string) error {
	_, err := s.store.GetAccount(ctx, accountID)
	return err
}

// ============================================================
// Accounts
// ============================================================

func (s *CRMService) CreateAccount(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.CreateAccount")
	defer span.End()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if a.CreatedDate.IsZero() {
		a.CreatedDate = now
	}
	if a.LastActivityDate.IsZero() {
		a.LastActivityDate = a.CreatedDate
	}
	if err := validate.Account(a); err != nil {
		return nil, err
	}
	if err := s.store.InsertAccount(ctx, a); err != nil {
		return nil, err
	}

	s.metrics.IncrStoreOp("account", "insert")
	s.invalidate()
	s.logger.Info("account created",
		zap.String("account_id", a.ID),
		zap.String("region", a.Region))
	return a, nil
}

func (s *CRMService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.GetAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", id))

	return s.store.GetAccount(ctx, id)
}

// ListAccounts applies the optional risk-level shortcut on top of the raw
// filter: "high" means churn strictly above 70, "medium" 40-70 inclusive,
// "low" strictly below 40.
func (s *CRMService) ListAccounts(ctx context.Context, f port.AccountFilter, riskLevel string) ([]domain.Account, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.ListAccounts")
	defer span.End()

	switch riskLevel {
	case "high":
		f.ChurnAbove = ptrFloat(70)
	case "medium":
		f.MinChurn = ptrFloat(40)
		f.MaxChurn = ptrFloat(70)
	case "low":
		f.ChurnBelow = ptrFloat(40)
	case "":
	default:
		return nil, &domain.ErrValidation{Entity: "account_filter", Violations: []domain.Violation{
			{Field: "risk_level", Message: "must be one of high, medium, low"},
		}}
	}
	return s.store.QueryAccounts(ctx, f)
}

// UpdateAccount replaces the stored row with the given entity. The caller
// must send back the updated_at it last read; a mismatch is a stale write.
func (s *CRMService) UpdateAccount(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.UpdateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", a.ID))

	if err := validate.Account(a); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	s.metrics.IncrStoreOp("account", "update")
	s.invalidate()
	return a, nil
}

// DeleteAccount removes the account row. Deleting an unknown id is a no-op.
// Children are not cascaded; orphaned contacts and opportunities remain.
func (s *CRMService) DeleteAccount(ctx context.Context, id string) error {
	ctx, span := crmTracer.Start(ctx, "CRMService.DeleteAccount")
	defer span.End()

	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.metrics.IncrStoreOp("account", "delete")
	s.invalidate()
	return nil
}

// TouchAccountActivity bumps last_activity_date after a logged interaction.
// Failures are logged and swallowed; activity tracking is best effort.
func (s *CRMService) TouchAccountActivity(ctx context.Context, accountID string, at time.Time) {
	a, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		s.logger.Warn("activity touch skipped", zap.String("account_id", accountID), zap.Error(err))
		return
	}
	if !at.After(a.LastActivityDate) {
		return
	}
	a.LastActivityDate = at
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		s.logger.Warn("activity touch failed", zap.String("account_id", accountID), zap.Error(err))
	}
}

func ptrFloat(v float64) *float64 { return &v }
