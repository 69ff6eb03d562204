package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
)

func (s *Store) InsertOpportunity(ctx context.Context, o *domain.Opportunity) error {
	o.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(o)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, "insert opportunity", `
		INSERT INTO opportunities (id, account_id, name, stage, probability,
			amount, expected_close_date, created_date, updated_at, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.AccountID, o.Name, string(o.Stage), o.Probability,
		o.Amount, ts(o.ExpectedCloseDate), ts(o.CreatedDate), ts(o.UpdatedAt), blob,
	)
	if isUniqueViolation(err) {
		return &domain.ErrDuplicateKey{Resource: "opportunity", ID: o.ID}
	}
	return err
}

func (s *Store) GetOpportunity(ctx context.Context, id string) (*domain.Opportunity, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT data_json FROM opportunities WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "opportunity", ID: id}
	}
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "get opportunity", Err: err}
	}

	var o domain.Opportunity
	if err := decodeEntity(blob, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) QueryOpportunities(ctx context.Context, f port.OpportunityFilter) ([]domain.Opportunity, error) {
	query := "SELECT data_json FROM opportunities WHERE 1=1"
	var args []any

	if f.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, f.AccountID)
	}
	if f.Stage != "" {
		query += " AND stage = ?"
		args = append(args, string(f.Stage))
	}
	query += " ORDER BY rowid"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query opportunities", Err: err}
	}
	defer rows.Close()

	var out []domain.Opportunity
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, &domain.ErrStorageUnavailable{Op: "query opportunities", Err: err}
		}
		var o domain.Opportunity
		if err := decodeEntity(blob, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query opportunities", Err: err}
	}
	return out, nil
}

func (s *Store) UpdateOpportunity(ctx context.Context, o *domain.Opportunity) error {
	expected := o.UpdatedAt
	o.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(o)
	if err != nil {
		o.UpdatedAt = expected
		return err
	}

	set := `account_id = ?, name = ?, stage = ?, probability = ?, amount = ?,
		expected_close_date = ?, created_date = ?, updated_at = ?, data_json = ?`
	args := []any{
		o.AccountID, o.Name, string(o.Stage), o.Probability, o.Amount,
		ts(o.ExpectedCloseDate), ts(o.CreatedDate), ts(o.UpdatedAt), blob,
	}

	if err := s.replaceRow(ctx, "opportunities", "opportunity", o.ID, expected, set, args); err != nil {
		o.UpdatedAt = expected
		return err
	}
	return nil
}

func (s *Store) DeleteOpportunity(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "opportunities", id)
}
