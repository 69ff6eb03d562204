package service

import (
	"context"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/infra/resilience"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/validate"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var insightTracer = otel.Tracer("service/insights")

// Agent task names accepted by the generation endpoint.
const (
	TaskAccountHealth        = "account_health"
	TaskChurnPrediction      = "churn_prediction"
	TaskOpportunityScoring   = "opportunity_scoring"
	TaskActionRecommendation = "action_recommendation"
)

// insightTTL is how long a generated insight stays fresh before Stale()
// starts reporting true.
const insightTTL = 7 * 24 * time.Hour

// contextCommLimit caps how much communication history is shipped to the
// model per request.
const contextCommLimit = 20

// InsightService assembles entity snapshots, calls the remote model and
// persists the structured insights it returns. Concurrent model calls are
// capped by the bulkhead; retries and circuit breaking live in the caller.
type InsightService struct {
	store    port.CRMStore
	caller   port.InsightCaller
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewInsightService creates a new insight generation service.
func NewInsightService(store port.CRMStore, caller port.InsightCaller, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *InsightService {
	return &InsightService{store: store, caller: caller, bulkhead: bulkhead, metrics: metrics, logger: logger}
}

// ============================================================
// Agent tasks
// ============================================================

// AnalyzeAccountHealth asks the model to assess overall relationship health
// for the account.
func (s *InsightService) AnalyzeAccountHealth(ctx context.Context, accountID string) (*domain.AIInsight, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.AnalyzeAccountHealth")
	defer span.End()

	return s.generateForAccount(ctx, TaskAccountHealth, accountID)
}

// PredictChurn asks the model for a churn risk assessment of the account.
func (s *InsightService) PredictChurn(ctx context.Context, accountID string) (*domain.AIInsight, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.PredictChurn")
	defer span.End()

	return s.generateForAccount(ctx, TaskChurnPrediction, accountID)
}

// RecommendActions asks the model for next best actions on the account.
func (s *InsightService) RecommendActions(ctx context.Context, accountID string) (*domain.AIInsight, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.RecommendActions")
	defer span.End()

	return s.generateForAccount(ctx, TaskActionRecommendation, accountID)
}

// ScoreOpportunity asks the model to rate win likelihood for a single deal.
func (s *InsightService) ScoreOpportunity(ctx context.Context, opportunityID string) (*domain.AIInsight, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.ScoreOpportunity")
	defer span.End()
	span.SetAttributes(attribute.String("opportunity.id", opportunityID))

	opp, err := s.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	account, err := s.store.GetAccount(ctx, opp.AccountID)
	if err != nil {
		return nil, err
	}

	req := &domain.InsightRequest{
		Task:          TaskOpportunityScoring,
		AccountID:     account.ID,
		OpportunityID: opp.ID,
		Context: map[string]any{
			"account":     account,
			"opportunity": opp,
		},
	}
	return s.generate(ctx, req)
}

// generateForAccount gathers the account snapshot plus recent history and
// runs the given task through the model.
func (s *InsightService) generateForAccount(ctx context.Context, task, accountID string) (*domain.AIInsight, error) {
	var (
		account *domain.Account
		comms   []domain.Communication
		opps    []domain.Opportunity
	)

	// Context pieces come from independent tables; fetch them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.store.GetAccount(gctx, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		comms, err = s.store.QueryCommunications(gctx, port.CommunicationFilter{
			AccountID: accountID,
			Limit:     contextCommLimit,
		})
		return err
	})
	g.Go(func() error {
		var err error
		opps, err = s.store.QueryOpportunities(gctx, port.OpportunityFilter{AccountID: accountID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	req := &domain.InsightRequest{
		Task:      task,
		AccountID: accountID,
		Context: map[string]any{
			"account":        account,
			"communications": comms,
			"opportunities":  opps,
		},
	}
	return s.generate(ctx, req)
}

// generate runs one model call under the bulkhead and persists the validated
// result. An invalid model reply is counted and rejected, never stored.
func (s *InsightService) generate(ctx context.Context, req *domain.InsightRequest) (*domain.AIInsight, error) {
	ctx, span := insightTracer.Start(ctx, "InsightService.generate")
	defer span.End()
	span.SetAttributes(attribute.String("insight.task", req.Task))

	if err := s.bulkhead.Acquire(ctx); err != nil {
		s.metrics.IncrInsight("rejected")
		return nil, err
	}
	defer s.bulkhead.Release()

	resp, err := s.caller.Call(ctx, req)
	if err != nil {
		s.metrics.IncrInsight("error")
		s.metrics.IncrExternalError("insight-model")
		s.logger.Warn("model call failed",
			zap.String("task", req.Task),
			zap.String("account_id", req.AccountID),
			zap.Error(err))
		return nil, err
	}
	s.metrics.RecordTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)

	insight := insightFromResponse(req, resp)
	if err := validate.Insight(insight); err != nil {
		s.metrics.IncrInsight("rejected")
		s.logger.Warn("model reply failed validation, discarding",
			zap.String("task", req.Task),
			zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "insight-model", Err: err}
	}
	if err := s.store.InsertInsight(ctx, insight); err != nil {
		s.metrics.IncrInsight("error")
		return nil, err
	}

	s.metrics.IncrInsight("success")
	s.logger.Info("insight generated",
		zap.String("insight_id", insight.ID),
		zap.String("task", req.Task),
		zap.Int("tokens", resp.TokensUsed.TotalTokens))
	return insight, nil
}

// insightFromResponse maps the model reply onto a stored insight, filling
// defaults for optional fields.
func insightFromResponse(req *domain.InsightRequest, resp *domain.InsightResponse) *domain.AIInsight {
	now := time.Now().UTC()
	expires := now.Add(insightTTL)

	title := resp.Title
	if title == "" {
		title = truncate(resp.Answer, 120)
	}
	priority := resp.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	actions := resp.RecommendedActions
	if actions == nil {
		actions = []string{}
	}

	return &domain.AIInsight{
		ID:                 uuid.New().String(),
		AccountID:          req.AccountID,
		OpportunityID:      req.OpportunityID,
		InsightType:        req.Task,
		Title:              title,
		Description:        resp.Answer,
		ConfidenceScore:    resp.Confidence,
		Priority:           priority,
		RecommendedActions: actions,
		SupportingData:     resp.SupportingData,
		CreatedDate:        now,
		ExpiresDate:        &expires,
	}
}

// truncate cuts s to at most n runes without splitting a multi-byte sequence.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
