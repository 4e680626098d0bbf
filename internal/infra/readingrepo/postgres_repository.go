package readingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/internal/infra/pgschema"
)

// PostgresRepository persists readings in blood_sugar_logs.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const readingColumns = `id, user_phone, value::float8, type, timestamp, COALESCE(notes, ''), related_meal_id, created_at`

// Insert stores a reading. A missing table surfaces as schema_missing.
func (r *PostgresRepository) Insert(ctx context.Context, reading analytics.Reading) (analytics.Reading, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO blood_sugar_logs (user_phone, value, type, timestamp, notes, related_meal_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING `+readingColumns,
		reading.OwnerPhone, reading.Value, string(reading.Category), reading.CapturedAt, reading.Note, reading.RelatedMealID,
	)
	stored, err := scanReading(row)
	if err != nil {
		return analytics.Reading{}, pgschema.Classify(err, "insert reading failed")
	}
	return stored, nil
}

// Latest returns the most recent reading of phone.
func (r *PostgresRepository) Latest(ctx context.Context, phone string) (analytics.Reading, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+readingColumns+`
		FROM blood_sugar_logs
		WHERE user_phone = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`, phone)
	reading, err := scanReading(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return analytics.Reading{}, false, nil
	}
	if err != nil {
		return analytics.Reading{}, false, pgschema.Classify(err, "select latest reading failed")
	}
	return reading, true, nil
}

// ListBetween returns readings captured in [from, to], newest first.
func (r *PostgresRepository) ListBetween(ctx context.Context, phone string, from, to time.Time, category *analytics.Category) ([]analytics.Reading, error) {
	var kind *string
	if category != nil {
		s := string(*category)
		kind = &s
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+readingColumns+`
		FROM blood_sugar_logs
		WHERE user_phone = $1
			AND timestamp >= $2
			AND timestamp <= $3
			AND ($4::text IS NULL OR type = $4)
		ORDER BY timestamp DESC, id DESC
	`, phone, from, to, kind)
	if err != nil {
		return nil, pgschema.Classify(err, "list readings failed")
	}
	defer rows.Close()
	var readings []analytics.Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, pgschema.Classify(err, "scan reading failed")
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, pgschema.Classify(err, "list readings failed")
	}
	return readings, nil
}

// Provision creates the readings table, its indexes and the tracking column.
func (r *PostgresRepository) Provision(ctx context.Context) error {
	return pgschema.ProvisionReadings(ctx, r.pool)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (analytics.Reading, error) {
	var (
		reading analytics.Reading
		kind    string
	)
	if err := row.Scan(
		&reading.ID, &reading.OwnerPhone, &reading.Value, &kind,
		&reading.CapturedAt, &reading.Note, &reading.RelatedMealID, &reading.CreatedAt,
	); err != nil {
		return analytics.Reading{}, err
	}
	reading.Category = analytics.Category(kind)
	reading.CapturedAt = reading.CapturedAt.UTC()
	reading.CreatedAt = reading.CreatedAt.UTC()
	return reading, nil
}

var (
	_ glucose.Repository    = (*PostgresRepository)(nil)
	_ glucose.Provisioner   = (*PostgresRepository)(nil)
	_ summary.ReadingLister = (*PostgresRepository)(nil)
)
