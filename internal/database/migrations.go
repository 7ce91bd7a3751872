package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		channel VARCHAR(20) NOT NULL DEFAULT 'email',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		recipient_emails TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		key_hash VARCHAR(64) NOT NULL UNIQUE,
		prefix VARCHAR(12) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		revoked_at TIMESTAMP WITH TIME ZONE,
		route_id UUID REFERENCES routes(id) ON DELETE SET NULL,
		last_used_at TIMESTAMP WITH TIME ZONE,
		usage_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// One active key per route, enforced where it survives concurrent
	// issuance. Revoked keys keep their route reference for audit.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_api_keys_active_route
		ON api_keys(route_id) WHERE is_active`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		apikey_id UUID NOT NULL REFERENCES api_keys(id) ON DELETE CASCADE,
		recipient_emails TEXT NOT NULL,
		visitor_email VARCHAR(255) NOT NULL,
		subject VARCHAR(998) NOT NULL,
		body JSONB NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'queued',
		error TEXT NOT NULL DEFAULT '',
		attachment TEXT,
		image_url TEXT,
		accepted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		sent_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE TABLE IF NOT EXISTS user_usage (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		total_requests INTEGER NOT NULL DEFAULT 0,
		requests_today INTEGER NOT NULL DEFAULT 0,
		last_request_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_routes_user_id ON routes(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_user_id ON api_keys(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_key_hash ON api_keys(key_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(prefix)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_apikey_id ON messages(apikey_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_status ON messages(status)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_accepted_at ON messages(accepted_at)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
