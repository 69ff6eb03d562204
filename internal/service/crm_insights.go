package service

import (
	"context"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/validate"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Stored insights
// ============================================================

// CreateInsight persists a manually entered insight. Model-generated insights
// arrive through InsightService and end up here as well.
func (s *CRMService) CreateInsight(ctx context.Context, in *domain.AIInsight) (*domain.AIInsight, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.CreateInsight")
	defer span.End()

	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.CreatedDate.IsZero() {
		in.CreatedDate = time.Now().UTC()
	}
	if err := validate.Insight(in); err != nil {
		return nil, err
	}
	if in.AccountID != "" {
		if err := s.ensureAccountExists(ctx, in.AccountID); err != nil {
			return nil, err
		}
	}
	if err := s.store.InsertInsight(ctx, in); err != nil {
		return nil, err
	}

	s.metrics.IncrStoreOp("insight", "insert")
	return in, nil
}

func (s *CRMService) GetInsight(ctx context.Context, id string) (*domain.AIInsight, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.GetInsight")
	defer span.End()
	span.SetAttributes(attribute.String("insight.id", id))

	return s.store.GetInsight(ctx, id)
}

func (s *CRMService) ListInsights(ctx context.Context, f port.InsightFilter) ([]domain.AIInsight, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.ListInsights")
	defer span.End()

	return s.store.QueryInsights(ctx, f)
}

// MarkInsightActedUpon flags the insight as handled by a rep.
func (s *CRMService) MarkInsightActedUpon(ctx context.Context, id string) (*domain.AIInsight, error) {
	ctx, span := crmTracer.Start(ctx, "CRMService.MarkInsightActedUpon")
	defer span.End()

	in, err := s.store.GetInsight(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ActedUpon {
		return in, nil
	}
	in.ActedUpon = true
	if err := s.store.UpdateInsight(ctx, in); err != nil {
		return nil, err
	}
	s.metrics.IncrStoreOp("insight", "update")
	return in, nil
}

func (s *CRMService) DeleteInsight(ctx context.Context, id string) error {
	ctx, span := crmTracer.Start(ctx, "CRMService.DeleteInsight")
	defer span.End()

	if err := s.store.DeleteInsight(ctx, id); err != nil {
		return err
	}
	s.metrics.IncrStoreOp("insight", "delete")
	return nil
}
