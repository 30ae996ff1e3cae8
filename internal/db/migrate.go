package db

import (
	"context"
	"database/sql"
)

type DB struct {
	*sql.DB
}

const identityMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text,
    phone text,
    google_id text,
    name text NOT NULL DEFAULT '',
    role text NOT NULL CHECK (role IN ('CUSTOMER', 'ARTISAN', 'ADMIN')),
    auth_provider text NOT NULL,
    email_verified boolean NOT NULL DEFAULT false,
    phone_verified boolean NOT NULL DEFAULT false,
    profile_complete boolean NOT NULL DEFAULT false,
    avatar_url text NOT NULL DEFAULT '',
    password_hash text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email)) WHERE email IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_phone_unique
ON users (phone) WHERE phone IS NOT NULL;

CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_unique
ON users (google_id) WHERE google_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS customers (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS artisans (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id uuid NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    skills text[] NOT NULL DEFAULT '{}',
    years_experience integer NOT NULL DEFAULT 0,
    portfolio text[] NOT NULL DEFAULT '{}',
    is_online boolean NOT NULL DEFAULT false,
    location_tracking boolean NOT NULL DEFAULT false,
    is_profile_complete boolean NOT NULL DEFAULT false,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);
`

func RunIdentityMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, identityMigration)
	return err
}
