package handler

import (
	"net/http"

	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router wires into handlers.
type Services struct {
	CRM      *service.CRMService
	Agg      *service.AggregationService
	Insights *service.InsightService
	Auth     *service.AuthService
	Seeder   *service.Seeder
	Store    port.CRMStore
	Metrics  *observability.Metrics
	Registry http.Handler
}

// NewRouter creates the HTTP router with all routes and middleware. Reads
// are open; writes and agent runs require a bearer token.
func NewRouter(s Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(s.Store, logger))
	r.Get("/readyz", readyzHandler())
	if s.Registry != nil {
		r.Handle("/metrics", s.Registry)
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Auth (public)
		r.Post("/auth/token", authTokenHandler(s.Auth, logger))

		// Reads
		r.Get("/accounts", listAccountsHandler(s.CRM, logger))
		r.Get("/accounts/{accountId}", getAccountHandler(s.CRM, logger))
		r.Get("/accounts/{accountId}/contacts", listAccountContactsHandler(s.CRM, logger))
		r.Get("/accounts/{accountId}/opportunities", listAccountOpportunitiesHandler(s.CRM, logger))
		r.Get("/accounts/{accountId}/communications", listAccountCommunicationsHandler(s.CRM, logger))
		r.Get("/accounts/{accountId}/insights", listAccountInsightsHandler(s.CRM, logger))
		r.Get("/contacts/{contactId}", getContactHandler(s.CRM, logger))
		r.Get("/opportunities", listOpportunitiesHandler(s.CRM, logger))
		r.Get("/opportunities/{opportunityId}", getOpportunityHandler(s.CRM, logger))
		r.Get("/communications", listCommunicationsHandler(s.CRM, logger))
		r.Get("/communications/{communicationId}", getCommunicationHandler(s.CRM, logger))
		r.Get("/insights", listInsightsHandler(s.CRM, logger))
		r.Get("/insights/{insightId}", getInsightHandler(s.CRM, logger))

		// Dashboard views
		r.Get("/dashboard/heatmap", heatmapHandler(s.Agg, logger))
		r.Get("/dashboard/summary", dashboardSummaryHandler(s.Agg, logger))

		// Pipeline metrics
		r.Get("/metrics/insights", insightMetricsHandler(s.Metrics, logger))

		// Writes and agent runs (protected)
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(s.Auth, logger))

			r.Post("/accounts", createAccountHandler(s.CRM, logger))
			r.Put("/accounts/{accountId}", updateAccountHandler(s.CRM, logger))
			r.Delete("/accounts/{accountId}", deleteAccountHandler(s.CRM, logger))

			r.Post("/contacts", createContactHandler(s.CRM, logger))
			r.Put("/contacts/{contactId}", updateContactHandler(s.CRM, logger))
			r.Delete("/contacts/{contactId}", deleteContactHandler(s.CRM, logger))

			r.Post("/opportunities", createOpportunityHandler(s.CRM, logger))
			r.Put("/opportunities/{opportunityId}", updateOpportunityHandler(s.CRM, logger))
			r.Post("/opportunities/{opportunityId}/stage", advanceStageHandler(s.CRM, logger))
			r.Delete("/opportunities/{opportunityId}", deleteOpportunityHandler(s.CRM, logger))

			r.Post("/communications", createCommunicationHandler(s.CRM, logger))
			r.Put("/communications/{communicationId}", updateCommunicationHandler(s.CRM, logger))
			r.Delete("/communications/{communicationId}", deleteCommunicationHandler(s.CRM, logger))

			r.Post("/insights", createInsightHandler(s.CRM, logger))
			r.Post("/insights/{insightId}/act", actOnInsightHandler(s.CRM, logger))
			r.Delete("/insights/{insightId}", deleteInsightHandler(s.CRM, logger))

			r.Post("/agents/account-health/{accountId}", accountHealthAgentHandler(s.Insights, logger))
			r.Post("/agents/churn-prediction/{accountId}", churnAgentHandler(s.Insights, logger))
			r.Post("/agents/action-recommendation/{accountId}", actionAgentHandler(s.Insights, logger))
			r.Post("/agents/opportunity-scoring/{opportunityId}", oppScoringAgentHandler(s.Insights, logger))

			// Dev tools (testing helpers)
			r.Post("/dev/seed", devSeedHandler(s.Seeder, logger))
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store port.CRMStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A cheap store round trip; an unreachable database flips us unhealthy.
		_, err := store.QueryAccounts(r.Context(), port.AccountFilter{Limit: 1})
		if err != nil {
			logger.Error("healthz: store unreachable", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
