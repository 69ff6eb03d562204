// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/fizzlab/salesintel/internal/domain"
)

// AccountFilter narrows account queries. Zero values mean "no filter".
// Filters match against indexed scalar columns only, never the JSON blob.
// MinChurn/MaxChurn are inclusive bounds; ChurnAbove/ChurnBelow are strict.
type AccountFilter struct {
	Region      string
	Country     string
	AccountType domain.AccountType
	MinChurn    *float64
	MaxChurn    *float64
	ChurnAbove  *float64
	ChurnBelow  *float64
	Limit       int
}

// OpportunityFilter narrows opportunity queries.
type OpportunityFilter struct {
	AccountID string
	Stage     domain.OpportunityStage
	Limit     int
}

// CommunicationFilter narrows communication queries.
type CommunicationFilter struct {
	AccountID     string
	OpportunityID string
	Type          domain.CommunicationType
	Limit         int
}

// InsightFilter narrows insight queries.
type InsightFilter struct {
	AccountID     string
	OpportunityID string
	InsightType   string
	Limit         int
}

// CRMStore defines durable keyed storage for the entity tables. Returned
// entities are detached copies: mutating one never affects storage until an
// explicit update call. Updates are full-row replaces guarded by the row's
// updated_at version. Deletes do not cascade; deleting an account orphans
// its children (accepted gap).
type CRMStore interface {
	// Accounts
	InsertAccount(ctx context.Context, a *domain.Account) error
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	QueryAccounts(ctx context.Context, f AccountFilter) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, a *domain.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// Contacts
	InsertContact(ctx context.Context, c *domain.Contact) error
	GetContact(ctx context.Context, id string) (*domain.Contact, error)
	QueryContacts(ctx context.Context, accountID string) ([]domain.Contact, error)
	UpdateContact(ctx context.Context, c *domain.Contact) error
	DeleteContact(ctx context.Context, id string) error

	// Opportunities
	InsertOpportunity(ctx context.Context, o *domain.Opportunity) error
	GetOpportunity(ctx context.Context, id string) (*domain.Opportunity, error)
	QueryOpportunities(ctx context.Context, f OpportunityFilter) ([]domain.Opportunity, error)
	UpdateOpportunity(ctx context.Context, o *domain.Opportunity) error
	DeleteOpportunity(ctx context.Context, id string) error

	// Communications
	InsertCommunication(ctx context.Context, c *domain.Communication) error
	GetCommunication(ctx context.Context, id string) (*domain.Communication, error)
	QueryCommunications(ctx context.Context, f CommunicationFilter) ([]domain.Communication, error)
	UpdateCommunication(ctx context.Context, c *domain.Communication) error
	DeleteCommunication(ctx context.Context, id string) error

	// AI Insights
	InsertInsight(ctx context.Context, i *domain.AIInsight) error
	GetInsight(ctx context.Context, id string) (*domain.AIInsight, error)
	QueryInsights(ctx context.Context, f InsightFilter) ([]domain.AIInsight, error)
	UpdateInsight(ctx context.Context, i *domain.AIInsight) error
	DeleteInsight(ctx context.Context, id string) error

	Close() error
}

// InsightCaller invokes the remote model endpoint that turns entity and
// aggregation snapshots into natural-language insights.
type InsightCaller interface {
	Call(ctx context.Context, req *domain.InsightRequest) (*domain.InsightResponse, error)
}

// Cache provides generic caching with TTL. Flush drops everything; callers
// use it to invalidate derived views after a write.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}
