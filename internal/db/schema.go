package db

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY,
		number TEXT NOT NULL UNIQUE,
		service TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		pay_type TEXT NOT NULL DEFAULT '',
		profile TEXT NOT NULL DEFAULT '',
		track TEXT NOT NULL DEFAULT '',
		desk INTEGER,
		fio TEXT NOT NULL,
		phone TEXT NOT NULL,
		social_category TEXT NOT NULL DEFAULT '',
		is_online BOOLEAN NOT NULL DEFAULT FALSE,
		meeting_type TEXT NOT NULL DEFAULT '',
		whatsapp TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_desk_status ON tickets (desk, status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS operator_profiles (
		operator TEXT PRIMARY KEY,
		desk INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS operator_logs (
		id BIGSERIAL PRIMARY KEY,
		operator TEXT NOT NULL,
		desk INTEGER NOT NULL,
		action TEXT NOT NULL,
		ticket_number TEXT,
		meta JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_operator_logs_created_at ON operator_logs (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS feature_flags (
		key TEXT PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ui_texts (
		key TEXT NOT NULL,
		lang TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (key, lang)
	)`,
}

// EnsureSchema creates the tables the service needs. Statements are
// idempotent, so running it on every start is safe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
