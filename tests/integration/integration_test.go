package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/handler"
	"github.com/fizzlab/salesintel/internal/infra/cache"
	"github.com/fizzlab/salesintel/internal/infra/client"
	"github.com/fizzlab/salesintel/internal/infra/observability"
	"github.com/fizzlab/salesintel/internal/infra/resilience"
	"github.com/fizzlab/salesintel/internal/infra/sqlite"
	"github.com/fizzlab/salesintel/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// TestIntegration_FullFlow runs the whole stack against a temp database and a
// mock model endpoint: auth, entity writes, dashboard reads, agent generation
// and the pipeline metrics snapshot.
func TestIntegration_FullFlow(t *testing.T) {
	// --- Mock model endpoint ---
	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := domain.InsightResponse{
			Answer:             "Sentiment declined across the last three interactions; churn risk is rising.",
			Title:              "Rising churn risk",
			Confidence:         0.88,
			Priority:           domain.PriorityHigh,
			RecommendedActions: []string{"Schedule an executive business review", "Offer a renewal discount"},
			SupportingData:     map[string]any{"negative_communications": 3},
			TokensUsed:         domain.TokenUsage{PromptTokens: 950, CompletionTokens: 180, TotalTokens: 1130},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer modelServer.Close()

	// --- Build the stack ---
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("integration")
	resCfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 4}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "integration.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	views := cache.New[any](time.Minute)
	crmSvc := service.NewCRMService(store, views, metrics, logger)
	aggSvc := service.NewAggregationService(store, views, metrics, logger, 70)
	insightSvc := service.NewInsightService(store,
		client.NewInsightClient(httpClient, modelServer.URL, cb, resCfg),
		resilience.NewBulkhead(4), metrics, logger)
	seeder := service.NewSeeder(crmSvc, logger)

	authSvc, err := service.NewAuthService("dashboard", "demo-secret", "integration-secret", time.Hour, logger)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	router := handler.NewRouter(handler.Services{
		CRM:      crmSvc,
		Agg:      aggSvc,
		Insights: insightSvc,
		Auth:     authSvc,
		Seeder:   seeder,
		Store:    store,
		Metrics:  metrics,
		Registry: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}, logger)

	do := func(method, path, token string, body any) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// --- Token exchange ---
	rec := do(http.MethodPost, "/v1/auth/token", "", domain.TokenRequest{ClientID: "dashboard", ClientSecret: "demo-secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("token exchange: %d", rec.Code)
	}
	var tok domain.TokenResponse
	json.NewDecoder(rec.Body).Decode(&tok)

	// --- Create an account with children ---
	rec = do(http.MethodPost, "/v1/accounts", tok.AccessToken, map[string]any{
		"name":             "Blue Harbor Cinemas",
		"account_type":     "cinema",
		"region":           "North America",
		"country":          "USA",
		"annual_revenue":   5_000_000,
		"health_score":     55,
		"churn_risk_score": 78,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: %d: %s", rec.Code, rec.Body.String())
	}
	var account domain.Account
	json.NewDecoder(rec.Body).Decode(&account)

	rec = do(http.MethodPost, "/v1/contacts", tok.AccessToken, map[string]any{
		"account_id":      account.ID,
		"first_name":      "Ines",
		"last_name":       "Dubois",
		"title":           "Head of Food & Beverage",
		"influence_level": 9,
		"decision_maker":  true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contact: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodPost, "/v1/opportunities", tok.AccessToken, map[string]any{
		"account_id":          account.ID,
		"name":                "Concession pouring rights renewal",
		"stage":               "negotiation",
		"probability":         75,
		"amount":              1_200_000,
		"expected_close_date": time.Now().UTC().Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create opportunity: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(http.MethodPost, "/v1/communications", tok.AccessToken, map[string]any{
		"account_id":           account.ID,
		"communication_type":   "meeting",
		"subject":              "Contract renewal terms",
		"direction":            "outbound",
		"sentiment_label":      "negative",
		"sentiment_confidence": 0.81,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create communication: %d: %s", rec.Code, rec.Body.String())
	}

	// --- Dashboard reflects the writes ---
	rec = do(http.MethodGet, "/v1/dashboard/heatmap", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("heatmap: %d", rec.Code)
	}
	var rows []domain.HeatmapRow
	json.NewDecoder(rec.Body).Decode(&rows)
	if len(rows) != 1 || rows[0].Region != "North America" {
		t.Fatalf("unexpected heatmap: %+v", rows)
	}
	if rows[0].ChurnRiskAccounts != 1 {
		t.Errorf("expected 1 at-risk account, got %d", rows[0].ChurnRiskAccounts)
	}

	rec = do(http.MethodGet, "/v1/dashboard/summary?period=month", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: %d", rec.Code)
	}
	var sum domain.DashboardSummary
	json.NewDecoder(rec.Body).Decode(&sum)
	if sum.TotalAccounts != 1 || sum.OppsClosingThisMonth != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	// --- Agent run persists an insight ---
	rec = do(http.MethodPost, "/v1/agents/churn-prediction/"+account.ID, tok.AccessToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("agent: %d: %s", rec.Code, rec.Body.String())
	}
	var insight domain.AIInsight
	json.NewDecoder(rec.Body).Decode(&insight)
	if insight.Title != "Rising churn risk" || insight.AccountID != account.ID {
		t.Errorf("unexpected insight: %+v", insight)
	}

	rec = do(http.MethodGet, "/v1/accounts/"+account.ID+"/insights", "", nil)
	var insights []domain.AIInsight
	json.NewDecoder(rec.Body).Decode(&insights)
	if len(insights) != 1 {
		t.Fatalf("expected 1 stored insight, got %d", len(insights))
	}

	// --- Pipeline metrics snapshot ---
	rec = do(http.MethodGet, "/v1/metrics/insights", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("insight metrics: %d", rec.Code)
	}
	var snap domain.InsightMetrics
	json.NewDecoder(rec.Body).Decode(&snap)
	if snap.TotalRequests != 1 {
		t.Errorf("expected 1 tracked request, got %d", snap.TotalRequests)
	}
	if snap.AvgTokensPerRequest == 0 {
		t.Error("expected token usage to be tracked")
	}
}
