package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"
)

func (s *Store) InsertContact(ctx context.Context, c *domain.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(c)
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, "insert contact", `
		INSERT INTO contacts (id, account_id, first_name, last_name, title,
			decision_maker, influence_level, updated_at, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, c.FirstName, c.LastName, c.Title,
		boolToInt(c.DecisionMaker), c.InfluenceLevel, ts(c.UpdatedAt), blob,
	)
	if isUniqueViolation(err) {
		return &domain.ErrDuplicateKey{Resource: "contact", ID: c.ID}
	}
	return err
}

func (s *Store) GetContact(ctx context.Context, id string) (*domain.Contact, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, "SELECT data_json FROM contacts WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "contact", ID: id}
	}
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "get contact", Err: err}
	}

	var c domain.Contact
	if err := decodeEntity(blob, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// QueryContacts returns the contacts linked to an account in insertion order.
func (s *Store) QueryContacts(ctx context.Context, accountID string) ([]domain.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data_json FROM contacts WHERE account_id = ? ORDER BY rowid", accountID)
	if err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query contacts", Err: err}
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, &domain.ErrStorageUnavailable{Op: "query contacts", Err: err}
		}
		var c domain.Contact
		if err := decodeEntity(blob, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.ErrStorageUnavailable{Op: "query contacts", Err: err}
	}
	return out, nil
}

func (s *Store) UpdateContact(ctx context.Context, c *domain.Contact) error {
	expected := c.UpdatedAt
	c.UpdatedAt = time.Now().UTC()
	blob, err := encodeEntity(c)
	if err != nil {
		c.UpdatedAt = expected
		return err
	}

	set := `account_id = ?, first_name = ?, last_name = ?, title = ?,
		decision_maker = ?, influence_level = ?, updated_at = ?, data_json = ?`
	args := []any{
		c.AccountID, c.FirstName, c.LastName, c.Title,
		boolToInt(c.DecisionMaker), c.InfluenceLevel, ts(c.UpdatedAt), blob,
	}

	if err := s.replaceRow(ctx, "contacts", "contact", c.ID, expected, set, args); err != nil {
		c.UpdatedAt = expected
		return err
	}
	return nil
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	return s.deleteRow(ctx, "contacts", id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
