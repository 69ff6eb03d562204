package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
)

// InsertAccount writes the account's scalar columns plus its full JSON blob.
func (s *Store) InsertAccount(ctx context.Context, a *domain.Account) error {
	a.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(a)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, "insert account", `
		INSERT INTO accounts (id, name, account_type, region, country,
			annual_revenue, employee_count, health_score, churn_risk_score,
			lifetime_value, created_date, last_activity_date, updated_at, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.AccountType), a.Region, a.Country,
		a.AnnualRevenue, a.EmployeeCount, a.HealthScore, a.ChurnRiskScore,
		a.LifetimeValue, ts(a.CreatedDate), ts(a.LastActivityDate),
		ts(a.UpdatedAt), blob,
	)
	if isUniqueViolation(err) {
		return &domain.ErrDuplicateKey{Resource: "account", ID: a.ID}
	}
	return err
}

// GetAccount returns a detached copy of the full entity from its JSON blob.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT data_json FROM accounts WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "account", ID: id}
	}
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "get account", Err: err}
	}

	var a domain.Account
	if err := decodeEntity(blob, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// QueryAccounts scans indexed scalar columns and returns matches in insertion
// order. The JSON blob is only decoded for rows that pass the filter.
func (s *Store) QueryAccounts(ctx context.Context, f port.AccountFilter) ([]domain.Account, error) {
	query := "SELECT data_json FROM accounts WHERE 1=1"
	var args []any

	if f.Region != "" {
		query += " AND region = ?"
		args = append(args, f.Region)
	}
	if f.Country != "" {
		query += " AND country = ?"
		args = append(args, f.Country)
	}
	if f.AccountType != "" {
		query += " AND account_type = ?"
		args = append(args, string(f.AccountType))
	}
	if f.MinChurn != nil {
		query += " AND churn_risk_score >= ?"
		args = append(args, *f.MinChurn)
	}
	if f.MaxChurn != nil {
		query += " AND churn_risk_score <= ?"
		args = append(args, *f.MaxChurn)
	}
	if f.ChurnAbove != nil {
		query += " AND churn_risk_score > ?"
		args = append(args, *f.ChurnAbove)
	}
	if f.ChurnBelow != nil {
		query += " AND churn_risk_score < ?"
		args = append(args, *f.ChurnBelow)
	}
	query += " ORDER BY rowid"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query accounts", Err: err}
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, &domain.ErrStorageUnavailable{Op: "query accounts", Err: err}
		}
		var a domain.Account
		if err := decodeEntity(blob, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query accounts", Err: err}
	}
	return out, nil
}

// UpdateAccount replaces the full row. If the caller's entity carries an
// updated_at version it must still match the stored row, otherwise the write
// is rejected with ErrStaleWrite.
func (s *Store) UpdateAccount(ctx context.Context, a *domain.Account) error {
	expected := a.UpdatedAt
	a.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(a)
	if err != nil {
		a.UpdatedAt = expected
		return err
	}

	set := `name = ?, account_type = ?, region = ?, country = ?,
		annual_revenue = ?, employee_count = ?, health_score = ?,
		churn_risk_score = ?, lifetime_value = ?, created_date = ?,
		last_activity_date = ?, updated_at = ?, data_json = ?`
	args := []any{
		a.Name, string(a.AccountType), a.Region, a.Country,
		a.AnnualRevenue, a.EmployeeCount, a.HealthScore,
		a.ChurnRiskScore, a.LifetimeValue, ts(a.CreatedDate),
		ts(a.LastActivityDate), ts(a.UpdatedAt), blob,
	}

	if err := s.replaceRow(ctx, "accounts", "account", a.ID, expected, set, args); err != nil {
		a.UpdatedAt = expected
		return err
	}
	return nil
}

// DeleteAccount removes the account row. Children (contacts, opportunities,
// communications, insights) are NOT deleted — orphaning is an accepted gap.
// Deleting an absent id is a no-op.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "accounts", id)
}
