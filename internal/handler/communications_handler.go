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
// Communications Handlers
// ============================================================

func listCommunicationsHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /communications")
		defer span.End()

		q := r.URL.Query()
		comms, err := svc.ListCommunications(ctx, port.CommunicationFilter{
			AccountID:     q.Get("account_id"),
			OpportunityID: q.Get("opportunity_id"),
			Type:          domain.CommunicationType(q.Get("type")),
			Limit:         parseLimit(r),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, comms)
	}
}

func getCommunicationHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /communications/{communicationId}")
		defer span.End()

		comm, err := svc.GetCommunication(ctx, chi.URLParam(r, "communicationId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, comm)
	}
}

func createCommunicationHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /communications")
		defer span.End()

		var c domain.Communication
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := svc.CreateCommunication(ctx, &c)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateCommunicationHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /communications/{communicationId}")
		defer span.End()

		var c domain.Communication
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		c.ID = chi.URLParam(r, "communicationId")
		updated, err := svc.UpdateCommunication(ctx, &c)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteCommunicationHandler(svc *service.CRMService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /communications/{communicationId}")
		defer span.End()

		if err := svc.DeleteCommunication(ctx, chi.URLParam(r, "communicationId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
