package handler

import (
	"net/http"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard Handlers
// ============================================================

func heatmapHandler(svc *service.AggregationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dashboard/heatmap")
		defer span.End()

		rows, err := svc.RegionalSummary(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("heatmap.regions", len(rows)))
		writeJSON(w, http.StatusOK, rows)
	}
}

func dashboardSummaryHandler(svc *service.AggregationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /dashboard/summary")
		defer span.End()

		bucket := domain.TrendBucket(r.URL.Query().Get("period"))
		if bucket == "" {
			bucket = domain.BucketMonth
		}
		summary, err := svc.DashboardSummary(ctx, bucket)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// ============================================================
// Pipeline metrics — GET /v1/metrics/insights
// ============================================================

func insightMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /metrics/insights")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.GetInsightSnapshot())
	}
}
