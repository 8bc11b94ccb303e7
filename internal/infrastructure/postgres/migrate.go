package postgres

import (
	"context"
	"fmt"

	"cascadeconnect/internal/domain/integration"
)

// Migrate applies the schema. Every statement is idempotent so this runs
// unconditionally at startup.
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS invoices (
			id UUID PRIMARY KEY,
			invoice_number TEXT NOT NULL,
			client_name TEXT NOT NULL,
			client_email TEXT NOT NULL DEFAULT '',
			project_details TEXT NOT NULL DEFAULT '',
			payment_link TEXT NOT NULL DEFAULT '',
			check_number TEXT,
			date DATE NOT NULL,
			due_date DATE NOT NULL,
			date_paid DATE,
			total TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			items JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices (date DESC)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id UUID PRIMARY KEY,
			date DATE NOT NULL,
			payee TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			amount TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses (date DESC)`,

		`CREATE TABLE IF NOT EXISTS internal_channels (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS internal_messages (
			id UUID PRIMARY KEY,
			channel_id UUID NOT NULL REFERENCES internal_channels(id) ON DELETE CASCADE,
			sender_id TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			attachments TEXT[] NOT NULL DEFAULT '{}',
			mentions TEXT[] NOT NULL DEFAULT '{}',
			edited BOOLEAN NOT NULL DEFAULT FALSE,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_channel_created
			ON internal_messages (channel_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS channel_members (
			channel_id UUID NOT NULL REFERENCES internal_channels(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			last_read_at TIMESTAMPTZ,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			muted BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (channel_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channel_members_user ON channel_members (user_id)`,

		`CREATE TABLE IF NOT EXISTS contacts (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, phone)
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS integration_tokens (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMPTZ NOT NULL,
			state TEXT NOT NULL DEFAULT '%s',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, provider)
		)`, integration.StatePending),

		`CREATE TABLE IF NOT EXISTS push_subscriptions (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			endpoint TEXT NOT NULL,
			platform TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_used TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, endpoint)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_user ON push_subscriptions (user_id)`,
	}

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
