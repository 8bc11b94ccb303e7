package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"cascadeconnect/internal/domain/contact"
)

type ContactRepository struct {
	db *DB
}

func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// BulkUpsert writes a device address book snapshot in a single transaction.
// Rows are keyed by (user_id, phone); re-synced numbers get their name
// refreshed (last write wins).
func (r *ContactRepository) BulkUpsert(ctx context.Context, userID string, contacts []contact.SyncContact) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin contact sync: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contacts (id, user_id, name, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, phone)
		DO UPDATE SET name = EXCLUDED.name, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare contact upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, c := range contacts {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), userID, c.Name, c.Phone); err != nil {
			return 0, fmt.Errorf("failed to upsert contact %q: %w", c.Phone, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit contact sync: %w", err)
	}

	return count, nil
}

func (r *ContactRepository) ListByUserID(ctx context.Context, userID string) ([]*contact.Contact, error) {
	query := `
		SELECT id, user_id, name, phone, updated_at
		FROM contacts
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*contact.Contact
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Phone, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

func (r *ContactRepository) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete contacts: %w", err)
	}
	return nil
}

func (r *ContactRepository) FindByPhone(ctx context.Context, userID, phone string) (*contact.Contact, error) {
	query := `
		SELECT id, user_id, name, phone, updated_at
		FROM contacts
		WHERE user_id = $1 AND phone = $2
	`

	var c contact.Contact
	err := r.db.QueryRowContext(ctx, query, userID, phone).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Phone, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}

	return &c, nil
}
