package userrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/glucobot/internal/domain/i18n"
	"github.com/yanqian/glucobot/internal/domain/profile"
	"github.com/yanqian/glucobot/internal/infra/pgschema"
)

// PostgresRepository persists profiles in the users table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectColumns = `
	phone_number, COALESCE(name, ''), COALESCE(diabetes_type, ''), COALESCE(daily_limit, 0),
	preferences, COALESCE(track_blood_sugar, FALSE), COALESCE(language, 'en'), onboarded,
	created_at, last_active`

// preferences is the JSONB shape of users.preferences.
type preferences struct {
	Dietary string `json:"dietary,omitempty"`
}

// Get fetches a profile by phone.
func (r *PostgresRepository) Get(ctx context.Context, phone string) (profile.Profile, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE phone_number = $1`, phone)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return profile.Profile{}, false, nil
	}
	if err != nil {
		return profile.Profile{}, false, pgschema.Classify(err, "select user failed")
	}
	return p, true, nil
}

// Create inserts seed unless the row exists and returns the stored row.
func (r *PostgresRepository) Create(ctx context.Context, seed profile.Profile) (profile.Profile, bool, error) {
	prefs, err := encodePreferences(seed.DietaryPreference)
	if err != nil {
		return profile.Profile{}, false, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (phone_number, name, diabetes_type, daily_limit, preferences, track_blood_sugar, language, onboarded, created_at, last_active)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, 0), $5, $6, $7, $8, $9, $10)
		ON CONFLICT (phone_number) DO NOTHING
		RETURNING `+selectColumns,
		seed.Phone, seed.Name, seed.DiabetesType, seed.DailyLimit, prefs, seed.TrackReadings,
		string(seed.Language), seed.Onboarded, seed.CreatedAt, seed.LastActive,
	)
	created, err := scanProfile(row)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return profile.Profile{}, false, pgschema.Classify(err, "insert user failed")
	}
	existing, found, err := r.Get(ctx, seed.Phone)
	if err != nil {
		return profile.Profile{}, false, err
	}
	if !found {
		return profile.Profile{}, false, pgschema.Classify(errors.New("user vanished after conflict"), "insert user failed")
	}
	return existing, false, nil
}

// Upsert writes every onboarding field. created_at is kept on update.
func (r *PostgresRepository) Upsert(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	prefs, err := encodePreferences(p.DietaryPreference)
	if err != nil {
		return profile.Profile{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (phone_number, name, diabetes_type, daily_limit, preferences, track_blood_sugar, language, onboarded, created_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (phone_number) DO UPDATE SET
			name = EXCLUDED.name,
			diabetes_type = EXCLUDED.diabetes_type,
			daily_limit = EXCLUDED.daily_limit,
			preferences = EXCLUDED.preferences,
			track_blood_sugar = EXCLUDED.track_blood_sugar,
			language = EXCLUDED.language,
			onboarded = EXCLUDED.onboarded,
			last_active = EXCLUDED.last_active
		RETURNING `+selectColumns,
		p.Phone, p.Name, p.DiabetesType, p.DailyLimit, prefs, p.TrackReadings,
		string(p.Language), p.Onboarded, p.CreatedAt, p.LastActive,
	)
	saved, err := scanProfile(row)
	if err != nil {
		return profile.Profile{}, pgschema.Classify(err, "upsert user failed")
	}
	return saved, nil
}

// UpdateLanguage sets users.language.
func (r *PostgresRepository) UpdateLanguage(ctx context.Context, phone string, lang i18n.Lang) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET language = $2 WHERE phone_number = $1`, phone, string(lang)); err != nil {
		return pgschema.Classify(err, "update language failed")
	}
	return nil
}

// Touch records activity.
func (r *PostgresRepository) Touch(ctx context.Context, phone string, at time.Time) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET last_active = $2 WHERE phone_number = $1`, phone, at); err != nil {
		return pgschema.Classify(err, "touch user failed")
	}
	return nil
}

func encodePreferences(dietary string) ([]byte, error) {
	if dietary == "" {
		return nil, nil
	}
	return json.Marshal(preferences{Dietary: dietary})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (profile.Profile, error) {
	var (
		p        profile.Profile
		prefs    []byte
		lang     string
		created  time.Time
		lastSeen time.Time
	)
	if err := row.Scan(
		&p.Phone, &p.Name, &p.DiabetesType, &p.DailyLimit,
		&prefs, &p.TrackReadings, &lang, &p.Onboarded,
		&created, &lastSeen,
	); err != nil {
		return profile.Profile{}, err
	}
	if len(prefs) > 0 {
		var decoded preferences
		if err := json.Unmarshal(prefs, &decoded); err == nil {
			p.DietaryPreference = decoded.Dietary
		}
	}
	p.Language = i18n.Normalize(i18n.Lang(lang))
	p.CreatedAt = created.UTC()
	p.LastActive = lastSeen.UTC()
	return p, nil
}

var _ profile.Repository = (*PostgresRepository)(nil)
