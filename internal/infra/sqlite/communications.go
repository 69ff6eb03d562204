package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/port"
)

func (s *Store) InsertCommunication(ctx context.Context, c *domain.Communication) error {
	c.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(c)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, "insert communication", `
		INSERT INTO communications (id, account_id, contact_id, opportunity_id,
			communication_type, subject, date, direction, sentiment_label,
			sentiment_confidence, updated_at, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.ContactID, c.OpportunityID,
		string(c.CommunicationType), c.Subject, ts(c.Date), string(c.Direction),
		string(c.SentimentLabel), c.SentimentConfidence, ts(c.UpdatedAt), blob,
	)
	if isUniqueViolation(err) {
		return &domain.ErrDuplicateKey{Resource: "communication", ID: c.ID}
	}
	return err
}

func (s *Store) GetCommunication(ctx context.Context, id string) (*domain.Communication, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT data_json FROM communications WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "communication", ID: id}
	}
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "get communication", Err: err}
	}

	var c domain.Communication
	if err := decodeEntity(blob, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) QueryCommunications(ctx context.Context, f port.CommunicationFilter) ([]domain.Communication, error) {
	query := "SELECT data_json FROM communications WHERE 1=1"
	var args []any

	if f.AccountID != "" {
		query += " AND account_id = ?"
		args = append(args, f.AccountID)
	}
	if f.OpportunityID != "" {
		query += " AND opportunity_id = ?"
		args = append(args, f.OpportunityID)
	}
	if f.Type != "" {
		query += " AND communication_type = ?"
		args = append(args, string(f.Type))
	}
	query += " ORDER BY rowid"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query communications", Err: err}
	}
	defer rows.Close()

	var out []domain.Communication
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, &domain.ErrStorageUnavailable{Op: "query communications", Err: err}
		}
		var c domain.Communication
		if err := decodeEntity(blob, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query communications", Err: err}
	}
	return out, nil
}

func (s *Store) UpdateCommunication(ctx context.Context, c *domain.Communication) error {
	expected := c.UpdatedAt
	c.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(c)
	if err != nil {
		c.UpdatedAt = expected
		return err
	}

	set := `account_id = ?, contact_id = ?, opportunity_id = ?,
		communication_type = ?, subject = ?, date = ?, direction = ?,
		sentiment_label = ?, sentiment_confidence = ?, updated_at = ?, data_json = ?`
	args := []any{
		c.AccountID, c.ContactID, c.OpportunityID,
		string(c.CommunicationType), c.Subject, ts(c.Date), string(c.Direction),
		string(c.SentimentLabel), c.SentimentConfidence, ts(c.UpdatedAt), blob,
	}

	if err := s.replaceRow(ctx, "communications", "communication", c.ID, expected, set, args); err != nil {
		c.UpdatedAt = expected
		return err
	}
	return nil
}

func (s *Store) DeleteCommunication(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "communications", id)
}
