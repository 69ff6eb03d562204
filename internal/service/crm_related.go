package service

import (
	"context"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/validate"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Contacts
// ============================================================

func (s *CRMService) CreateContact(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.CreateContact")
	defer span.End()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := validate.Contact(c); err != nil {
		return nil, err
	}
	if err := s.ensureAccountExists(ctx, c.AccountID); err != nil {
		return nil, err
	}
	if err := s.store.InsertContact(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.IncrStoreOp("contact", "insert")
	s.invalidate()
	return c, nil
}

func (s *CRMService) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.GetContact")
	defer span.End()

	return s.store.GetContact(ctx, id)
}

func (s *CRMService) ListContacts(ctx context.Context, accountID string) ([]domain.Contact, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.ListContacts")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	return s.store.QueryContacts(ctx, accountID)
}

func (s *CRMService) UpdateContact(ctx context.Context, c *domain.Contact) (*domain.Contact, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.UpdateContact")
	defer span.End()

	if err := validate.Contact(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateContact(ctx, c); err != nil {
		return nil, err
	}
	s.metrics.IncrStoreOp("contact", "update")
	s.invalidate()
	return c, nil
}

func (s *CRMService) DeleteContact(ctx context.Context, id string) error {
	ctx, span := crmTracer.Start(ctx, "CRMService.DeleteContact")
	defer span.End()

	if err := s.store.DeleteContact(ctx, id); err != nil {
		return err
	}
	s.metrics.IncrStoreOp("contact", "delete")
	s.invalidate()
	return nil
}

// ============================================================
// Opportunities
// ============================================================

func (s *CRMService) CreateOpportunity(ctx context.Context, o *domain.Opportunity) (*domain.Opportunity, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.CreateOpportunity")
	defer span.End()

	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedDate.IsZero() {
		o.CreatedDate = time.Now().UTC()
	}
	if err := validate.Opportunity(o); err != nil {
		return nil, err
	}
	if err := s.ensureAccountExists(ctx, o.AccountID); err != nil {
		return nil, err
	}
	if err := s.store.InsertOpportunity(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.IncrStoreOp("opportunity", "insert")
	s.invalidate()
	s.logger.Info("opportunity created",
		zap.String("opportunity_id", o.ID),
		zap.String("account_id", o.AccountID),
		zap.Float64("amount", o.Amount))
	return o, nil
}

func (s *CRMService) GetOpportunity(ctx context.Context, id string) (*domain.Opportunity, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.GetOpportunity")
	defer span.End()

	return s.store.GetOpportunity(ctx, id)
}

func (s *CRMService) ListOpportunities(ctx context.Context, f port.OpportunityFilter) ([]domain.Opportunity, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.ListOpportunities")
	defer span.End()

	return s.store.QueryOpportunities(ctx, f)
}

func (s *CRMService) UpdateOpportunity(ctx context.Context, o *domain.Opportunity) (*domain.Opportunity, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.UpdateOpportunity")
	defer span.End()

	if err := validate.Opportunity(o); err != nil {
		return nil, err
	}
	if err := s.store.UpdateOpportunity(ctx, o); err != nil {
		return nil, err
	}
	s.metrics.IncrStoreOp("opportunity", "update")
	s.invalidate()
	return o, nil
}

// AdvanceOpportunityStage moves a deal to the given stage, snapping the
// probability to the stage's conventional value unless the deal is closed.
func (s *CRMService) AdvanceOpportunityStage(ctx context.Context, id string, stage domain.OpportunityStage) (*domain.Opportunity, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.AdvanceOpportunityStage")
	defer span.End()
	span.SetAttributes(
		attribute.String("opportunity.id", id),
		attribute.String("opportunity.stage", string(stage)))

	if !stage.Valid() {
		return nil, &domain.ErrValidation{Entity: "opportunity", Violations: []domain.Violation{
			{Field: "stage", Message: "unknown stage: " + string(stage)},
		}}
	}
	o, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Stage = stage
	switch stage {
	case domain.StageProspecting:
		o.Probability = 10
	case domain.StageQualification:
		o.Probability = 25
	case domain.StageProposal:
		o.Probability = 50
	case domain.StageNegotiation:
		o.Probability = 75
	case domain.StageClosedWon:
		o.Probability = 100
	case domain.StageClosedLost:
		o.Probability = 0
	}
	if err := s.store.UpdateOpportunity(ctx, o); err != nil {
		return nil, err
	}
	s.metrics.IncrStoreOp("opportunity", "update")
	s.invalidate()
	return o, nil
}

func (s *CRMService) DeleteOpportunity(ctx context.Context, id string) error {
	ctx, span := crmTracer.Start(ctx, "CRMService.DeleteOpportunity")
	defer span.End()

	if err := s.store.DeleteOpportunity(ctx, id); err != nil {
		return err
	}
	s.metrics.IncrStoreOp("opportunity", "delete")
	s.invalidate()
	return nil
}

// ============================================================
// Communications
// ============================================================

func (s *CRMService) CreateCommunication(ctx context.Context, c *domain.Communication) (*domain.Communication, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.CreateCommunication")
	defer span.End()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Date.IsZero() {
		c.Date = time.Now().UTC()
	}
	if err := validate.Communication(c); err != nil {
		return nil, err
	}
	if err := s.ensureAccountExists(ctx, c.AccountID); err != nil {
		return nil, err
	}
	if err := s.store.InsertCommunication(ctx, c); err != nil {
		return nil, err
	}

	s.metrics.IncrStoreOp("communication", "insert")
	s.invalidate()
	s.TouchAccountActivity(ctx, c.AccountID, c.Date)
	return c, nil
}

func (s *CRMService) GetCommunication(ctx context.Context, id string) (*domain.Communication, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.GetCommunication")
	defer span.End()

	return s.store.GetCommunication(ctx, id)
}

func (s *CRMService) ListCommunications(ctx context.Context, f port.CommunicationFilter) ([]domain.Communication, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.ListCommunications")
	defer span.End()

	return s.store.QueryCommunications(ctx, f)
}

func (s *CRMService) UpdateCommunication(ctx context.Context, c *domain.Communication) (*domain.Communication, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.UpdateCommunication")
	defer span.End()

	if err := validate.Communication(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCommunication(ctx, c); err != nil {
		return nil, err
	}
	s.metrics.IncrStoreOp("communication", "update")
	s.invalidate()
	return c, nil
}

func (s *CRMService) DeleteCommunication(ctx context.Context, id string) error {
	ctx, span := crmTracer.Start(ctx, "CRMService.DeleteCommunication")
	defer span.End()

	if err := s.store.DeleteCommunication(ctx, id); err != nil {
		return err
	}
	s.metrics.IncrStoreOp("communication", "delete")
	s.invalidate()
	return nil
}
