// Package pgschema owns the Postgres DDL and maps driver errors to
// application error codes.
package pgschema

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/yanqian/glucobot/pkg/errors"
)

// Postgres SQLSTATE codes the repositories care about.
const (
	codeUndefinedTable      = "42P01"
	codeUndefinedColumn     = "42703"
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
	phone_number TEXT PRIMARY KEY,
	name TEXT,
	diabetes_type TEXT,
	daily_limit INTEGER,
	preferences JSONB,
	track_blood_sugar BOOLEAN DEFAULT FALSE,
	language TEXT NOT NULL DEFAULT 'en',
	onboarded BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_active TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS food_entries (
	id BIGSERIAL PRIMARY KEY,
	user_phone TEXT NOT NULL REFERENCES users(phone_number) ON DELETE CASCADE,
	calories INTEGER NOT NULL DEFAULT 0,
	timestamp TIMESTAMPTZ NOT NULL,
	user_provided_details TEXT,
	ai_analysis TEXT,
	is_recommended BOOLEAN NOT NULL DEFAULT FALSE,
	reason_for_recommendation TEXT,
	personalized_tips TEXT,
	photo_key TEXT
);

ALTER TABLE users ADD COLUMN IF NOT EXISTS track_blood_sugar BOOLEAN DEFAULT FALSE;

CREATE INDEX IF NOT EXISTS food_entries_user_time_idx ON food_entries(user_phone, timestamp);

CREATE TABLE IF NOT EXISTS daily_summaries (
	id BIGSERIAL PRIMARY KEY,
	user_phone TEXT NOT NULL REFERENCES users(phone_number) ON DELETE CASCADE,
	date DATE NOT NULL,
	total_calories INTEGER NOT NULL DEFAULT 0,
	meal_count INTEGER NOT NULL DEFAULT 0,
	green_flags_count INTEGER NOT NULL DEFAULT 0,
	red_flags_count INTEGER NOT NULL DEFAULT 0,
	UNIQUE (user_phone, date)
);
`

const readingsSchema = `
ALTER TABLE users ADD COLUMN IF NOT EXISTS track_blood_sugar BOOLEAN DEFAULT FALSE;

CREATE TABLE IF NOT EXISTS blood_sugar_logs (
	id BIGSERIAL PRIMARY KEY,
	user_phone TEXT NOT NULL REFERENCES users(phone_number) ON DELETE CASCADE,
	value NUMERIC NOT NULL,
	type TEXT NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL,
	notes TEXT,
	related_meal_id BIGINT REFERENCES food_entries(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS blood_sugar_user_idx ON blood_sugar_logs(user_phone);
CREATE INDEX IF NOT EXISTS blood_sugar_timestamp_idx ON blood_sugar_logs(timestamp);
CREATE INDEX IF NOT EXISTS blood_sugar_type_idx ON blood_sugar_logs(type);
`

// EnsureBase creates the users, food_entries and daily_summaries tables.
func EnsureBase(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, baseSchema); err != nil {
		return fmt.Errorf("ensure base schema: %w", err)
	}
	return nil
}

// ProvisionReadings creates blood_sugar_logs, its indexes and the
// users.track_blood_sugar column. It is idempotent.
func ProvisionReadings(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, readingsSchema); err != nil {
		return fmt.Errorf("provision readings schema: %w", err)
	}
	return nil
}

// Classify wraps a driver error with the matching application code.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUndefinedTable, codeUndefinedColumn:
			return apperrors.Wrap(apperrors.CodeSchemaMissing, msg, err)
		case codeUniqueViolation:
			return apperrors.Wrap(apperrors.CodeDuplicate, msg, err)
		case codeForeignKeyViolation:
			return apperrors.Wrap(apperrors.CodeNotFound, msg, err)
		}
	}
	return apperrors.Wrap(apperrors.CodeStorage, msg, err)
}
