// Package domain defines the core business entities for the sales-intelligence
// API. These models are independent of storage and transport and represent the
// canonical data structures used throughout the service.
package domain

import "time"

// ============================================================
// Accounts
// ============================================================

// Account represents a business partner: a bottler, retailer, distributor,
// QSR chain, or venue tracked as a sales relationship.
type Account struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	AccountType      AccountType   `json:"account_type"`
	Region           string        `json:"region"`
	Country          string        `json:"country"`
	AnnualRevenue    float64       `json:"annual_revenue"`
	EmployeeCount    int           `json:"employee_count"`
	PrimaryContactID string        `json:"primary_contact_id,omitempty"`
	CreatedDate      time.Time     `json:"created_date"`
	LastActivityDate time.Time     `json:"last_activity_date"`
	HealthScore      float64       `json:"health_score"`
	ChurnRiskScore   float64       `json:"churn_risk_score"`
	LifetimeValue    float64       `json:"lifetime_value"`
	CurrentProducts  []ProductLine `json:"current_products"`

	// Freestyle machine data, only for accounts with installed machines.
	FreestyleMachines *int     `json:"freestyle_machines_count,omitempty"`
	AvgDailyPours     *float64 `json:"avg_daily_pours,omitempty"`
	MachineUptimePct  *float64 `json:"machine_uptime_percentage,omitempty"`

	// Commercial terms
	CreditRating string `json:"credit_rating,omitempty"`
	PaymentTerms string `json:"payment_terms,omitempty"`
	DiscountTier string `json:"discount_tier,omitempty"`

	// Geographic position for map views
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// UpdatedAt is the row version used to reject stale full-row updates.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ============================================================
// Contacts
// ============================================================

// Contact is a stakeholder at an account.
type Contact struct {
	ID              string     `json:"id"`
	AccountID       string     `json:"account_id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Title           string     `json:"title"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Department      string     `json:"department,omitempty"`
	DecisionMaker   bool       `json:"decision_maker"`
	InfluenceLevel  int        `json:"influence_level"`
	LastContactDate *time.Time `json:"last_contact_date,omitempty"`
	PreferredComm   string     `json:"preferred_communication,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at,omitempty"`
}

// ============================================================
// Opportunities
// ============================================================

// Opportunity is a staged sales deal tied to an account.
type Opportunity struct {
	ID                string           `json:"id"`
	AccountID         string           `json:"account_id"`
	Name              string           `json:"name"`
	Description       string           `json:"description,omitempty"`
	Stage             OpportunityStage `json:"stage"`
	Probability       float64          `json:"probability"`
	Amount            float64          `json:"amount"`
	ExpectedCloseDate time.Time        `json:"expected_close_date"`
	CreatedDate       time.Time        `json:"created_date"`
	OwnerID           string           `json:"owner_id,omitempty"`
	ProductLines      []ProductLine    `json:"product_lines"`

	// Model-suggested fields, populated by insight generation.
	NextBestAction string   `json:"next_best_action,omitempty"`
	RiskFactors    []string `json:"risk_factors,omitempty"`
	SuccessFactors []string `json:"success_factors,omitempty"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ============================================================
// Communications
// ============================================================

// Communication is a logged interaction with an account.
type Communication struct {
	ID                  string            `json:"id"`
	AccountID           string            `json:"account_id"`
	ContactID           string            `json:"contact_id,omitempty"`
	OpportunityID       string            `json:"opportunity_id,omitempty"`
	CommunicationType   CommunicationType `json:"communication_type"`
	Subject             string            `json:"subject"`
	Content             string            `json:"content,omitempty"`
	Date                time.Time         `json:"date"`
	Direction           Direction         `json:"direction"`
	SentimentLabel      SentimentLabel    `json:"sentiment_label"`
	SentimentConfidence float64           `json:"sentiment_confidence"`
	KeyTopics           []string          `json:"key_topics,omitempty"`
	ActionItems         []string          `json:"action_items,omitempty"`
	UpdatedAt           time.Time         `json:"updated_at,omitempty"`
}

// ============================================================
// AI Insights
// ============================================================

// AIInsight is a structured recommendation tied to an account or opportunity,
// generated by the remote model (or entered manually). Once ExpiresDate passes
// the insight is stale but is never auto-deleted.
type AIInsight struct {
	ID                 string          `json:"id"`
	AccountID          string          `json:"account_id,omitempty"`
	OpportunityID      string          `json:"opportunity_id,omitempty"`
	InsightType        string          `json:"insight_type"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	ConfidenceScore    float64         `json:"confidence_score"`
	Priority           InsightPriority `json:"priority"`
	RecommendedActions []string        `json:"recommended_actions"`
	SupportingData     map[string]any  `json:"supporting_data,omitempty"`
	CreatedDate        time.Time       `json:"created_date"`
	ExpiresDate        *time.Time      `json:"expires_date,omitempty"`
	ActedUpon          bool            `json:"acted_upon"`
	UpdatedAt          time.Time       `json:"updated_at,omitempty"`
}

// Stale reports whether the insight has passed its expiry.
func (i *AIInsight) Stale(now time.Time) bool {
	return i.ExpiresDate != nil && now.After(*i.ExpiresDate)
}
