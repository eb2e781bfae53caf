package store

import "context"

const migrationSQL = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    circle_wallet_id TEXT,
    wallet_address TEXT,
    wallet_status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- Forward-looking position tracking. Nothing writes here yet; the schema
-- is kept as declared so a future write path does not need a migration.
CREATE TABLE IF NOT EXISTS positions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID REFERENCES users(id),
    protocol_name TEXT NOT NULL,
    protocol_address TEXT NOT NULL,
    amount DECIMAL(20,6) NOT NULL,
    last_health_score INTEGER DEFAULT 100,
    last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migrationSQL)
	return err
}
