package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Auth — POST /v1/auth/token
// ============================================================

func authTokenHandler(svc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "POST /auth/token")
		defer span.End()

		var req domain.TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		resp, err := svc.IssueToken(&req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Dev tools — POST /v1/dev/seed
// ============================================================

func devSeedHandler(seeder *service.Seeder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /dev/seed")
		defer span.End()

		accounts := 25
		if v := r.URL.Query().Get("accounts"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 500 {
				writeError(w, http.StatusBadRequest, "accounts must be between 1 and 500")
				return
			}
			accounts = n
		}
		if err := seeder.Seed(ctx, accounts); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "seeded",
			"accounts": accounts,
		})
	}
}
