package domain

// Read-side aggregation shapes consumed by the dashboard front-ends.
// Presentation never reaches into the store directly; these are the contract.

// Coordinates is a lat/lng pair for map rendering.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HeatmapRow is one region's rollup for the geographic dashboard view.
type HeatmapRow struct {
	Region                 string      `json:"region"`
	AccountCount           int         `json:"account_count"`
	TotalRevenue           float64     `json:"total_revenue"`
	AvgHealthScore         float64     `json:"avg_health_score"`
	ChurnRiskAccounts      int         `json:"churn_risk_accounts"`
	GrowthOpportunityScore float64     `json:"growth_opportunity_score"`
	Coordinates            Coordinates `json:"coordinates"`
}

// TrendPoint is one bucket of a time series.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// TrendBucket selects the bucketing granularity for dashboard trend series.
type TrendBucket string

const (
	BucketDay   TrendBucket = "day"
	BucketWeek  TrendBucket = "week"
	BucketMonth TrendBucket = "month"
)

// Valid reports whether b is a supported bucketing period.
func (b TrendBucket) Valid() bool {
	return b == BucketDay || b == BucketWeek || b == BucketMonth
}

// DashboardSummary is the executive dashboard rollup.
type DashboardSummary struct {
	TotalAccounts          int      `json:"total_accounts"`
	TotalRevenue           float64  `json:"total_revenue"`
	HighRiskAccounts       int      `json:"high_risk_accounts"`
	OppsClosingThisMonth   int      `json:"opportunities_closing_this_month"`
	AvgDealSize            float64  `json:"avg_deal_size"`
	WinRate                float64  `json:"win_rate"`
	AtRiskRevenue          float64  `json:"at_risk_revenue"`
	TopPerformingRegions   []string `json:"top_performing_regions"`

	RevenueTrend     []TrendPoint `json:"revenue_trend"`
	HealthScoreTrend []TrendPoint `json:"health_score_trend"`
	ChurnRiskTrend   []TrendPoint `json:"churn_risk_trend"`
}

// ============================================================
// Insight generation (remote model collaborator)
// ============================================================

// InsightRequest is the snapshot handed to the remote model endpoint.
// Everything is plain JSON-compatible key-value data; no schema is enforced
// on what the model does with it.
type InsightRequest struct {
	Task          string         `json:"task"`
	AccountID     string         `json:"account_id,omitempty"`
	OpportunityID string         `json:"opportunity_id,omitempty"`
	Context       map[string]any `json:"context"`
}

// InsightResponse is the model's reply: opaque free text plus an optional
// structured part that must pass AIInsight validation before persisting.
type InsightResponse struct {
	Answer             string          `json:"answer"`
	Title              string          `json:"title,omitempty"`
	Confidence         float64         `json:"confidence"`
	Priority           InsightPriority `json:"priority,omitempty"`
	RecommendedActions []string        `json:"recommended_actions,omitempty"`
	SupportingData     map[string]any  `json:"supporting_data,omitempty"`
	TokensUsed         TokenUsage      `json:"tokens_used"`
}

// TokenUsage reports model token consumption for metrics.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// InsightMetrics is the operational snapshot for the insight-generation
// pipeline, served on GET /v1/metrics/insights.
type InsightMetrics struct {
	TotalRequests       int64   `json:"total_requests"`
	ErrorRate           float64 `json:"error_rate"`
	AvgTokensPerRequest float64 `json:"avg_tokens_per_request"`
	EstimatedCostUsd    float64 `json:"estimated_cost_usd"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}

// ============================================================
// Auth
// ============================================================

// TokenRequest is the demo credential exchange payload.
type TokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
