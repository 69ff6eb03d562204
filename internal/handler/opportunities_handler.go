package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
	"github.com/fizzlab/salesintel/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Opportunities Handlers
// ============================================================

func listOpportunitiesHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /opportunities")
		defer span.End()

		q := r.URL.Query()
		opps, err := svc.ListOpportunities(ctx, port.OpportunityFilter{
			AccountID: q.Get("account_id"),
			Stage:     domain.OpportunityStage(q.Get("stage")),
			Limit:     parseLimit(r),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, opps)
	}
}

func getOpportunityHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /opportunities/{opportunityId}")
		defer span.End()

		opp, err := svc.GetOpportunity(ctx, chi.URLParam(r, "opportunityId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, opp)
	}
}

func createOpportunityHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /opportunities")
		defer span.End()

		var o domain.Opportunity
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := svc.CreateOpportunity(ctx, &o)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateOpportunityHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /opportunities/{opportunityId}")
		defer span.End()

		var o domain.Opportunity
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		o.ID = chi.URLParam(r, "opportunityId")
		updated, err := svc.UpdateOpportunity(ctx, &o)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func advanceStageHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /opportunities/{opportunityId}/stage")
		defer span.End()

		var req struct {
			Stage domain.OpportunityStage `json:"stage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, err := svc.AdvanceOpportunityStage(ctx, chi.URLParam(r, "opportunityId"), req.Stage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteOpportunityHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /opportunities/{opportunityId}")
		defer span.End()

		if err := svc.DeleteOpportunity(ctx, chi.URLParam(r, "opportunityId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
