package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
)

func tsPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ts(*t)
}

func (s *Store) InsertInsight(ctx context.Context, i *domain.AIInsight) error {
	i.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(i)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, "insert insight", `
		INSERT INTO ai_insights (id, account_id, opportunity_id, insight_type,
			title, confidence_score, priority, created_date, expires_date,
			acted_upon, updated_at, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.AccountID, i.OpportunityID, i.InsightType,
		i.Title, i.ConfidenceScore, string(i.Priority), ts(i.CreatedDate),
		tsPtr(i.ExpiresDate), boolToInt(i.ActedUpon), ts(i.UpdatedAt), blob,
	)
	if isUniqueViolation(err) {
		return &domain.ErrDuplicateKey{Resource: "insight", ID: i.ID}
	}
	return err
}

func (s *Store) GetInsight(ctx context.Context, id string) (*domain.AIInsight, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT data_json FROM ai_insights WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "insight", ID: id}
	}
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "get insight", Err: err}
	}

	var i domain.AIInsight
	if err := decodeEntity(blob, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Store) QueryInsights(ctx context.Context, f port.InsightFilter) ([]domain.AIInsight, error) {
	query := "SELECT data_json FROM ai_insights WHERE 1=1"
	var args []any

	if f.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, f.AccountID)
	}
	if f.OpportunityID != "" {
		query += " AND opportunity_id = ?"
		args = append(args, f.OpportunityID)
	}
	if f.InsightType != "" {
		query += " AND insight_type = ?"
		args = append(args, f.InsightType)
	}
	query += " ORDER BY rowid"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query insights", Err: err}
	}
	defer rows.Close()

	var out []domain.AIInsight
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, &domain.ErrStorageUnavailable{Op: "query insights", Err: err}
		}
		var i domain.AIInsight
		if err := decodeEntity(blob, &i); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query insights", Err: err}
	}
	return out, nil
}

func (s *Store) UpdateInsight(ctx context.Context, i *domain.AIInsight) error {
	expected := i.UpdatedAt
	i.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(i)
	if err != nil {
		i.UpdatedAt = expected
		return err
	}

	set := `account_id = ?, opportunity_id = ?, insight_type = ?, title = ?,
		confidence_score = ?, priority = ?, created_date = ?, expires_date = ?,
		acted_upon = ?, updated_at = ?, data_json = ?`
	args := []any{
		i.AccountID, i.OpportunityID, i.InsightType, i.Title,
		i.ConfidenceScore, string(i.Priority), ts(i.CreatedDate),
		tsPtr(i.ExpiresDate), boolToInt(i.ActedUpon), ts(i.UpdatedAt), blob,
	}

	if err := s.replaceRow(ctx, "ai_insights", "insight", i.ID, expected, set, args); err != nil {
		i.UpdatedAt = expected
		return err
	}
	return nil
}

func (s *Store) DeleteInsight(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "ai_insights", id)
}
