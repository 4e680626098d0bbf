package mealrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/glucobot/internal/domain/analytics"
	"github.com/yanqian/glucobot/internal/domain/glucose"
	"github.com/yanqian/glucobot/internal/domain/meal"
	"github.com/yanqian/glucobot/internal/domain/summary"
	"github.com/yanqian/glucobot/internal/infra/pgschema"
	"github.com/yanqian/glucobot/pkg/util"
)

// PostgresRepository persists food_entries and daily_summaries.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const rollupColumns = `user_phone, date, total_calories, meal_count, green_flags_count, red_flags_count`

// InsertEntry stores a food entry.
func (r *PostgresRepository) InsertEntry(ctx context.Context, entry meal.Entry) (meal.Entry, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO food_entries (
			user_phone, calories, timestamp, user_provided_details, ai_analysis,
			is_recommended, reason_for_recommendation, personalized_tips, photo_key
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''))
		RETURNING id
	`,
		entry.OwnerPhone, entry.Calories, entry.CapturedAt, entry.Details, entry.Analysis,
		entry.Recommended, entry.Reason, entry.Advice, entry.PhotoKey,
	).Scan(&entry.ID)
	if err != nil {
		return meal.Entry{}, pgschema.Classify(err, "insert food entry failed")
	}
	return entry, nil
}

// IncrementRollup adds one meal to the (phone, date) row in a single statement.
func (r *PostgresRepository) IncrementRollup(ctx context.Context, phone string, date time.Time, calories int, recommended bool) (summary.DailyRollup, error) {
	green, red := 0, 1
	if recommended {
		green, red = 1, 0
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_summaries (`+rollupColumns+`)
		VALUES ($1, $2, $3, 1, $4, $5)
		ON CONFLICT (user_phone, date) DO UPDATE SET
			total_calories = daily_summaries.total_calories + EXCLUDED.total_calories,
			meal_count = daily_summaries.meal_count + 1,
			green_flags_count = daily_summaries.green_flags_count + EXCLUDED.green_flags_count,
			red_flags_count = daily_summaries.red_flags_count + EXCLUDED.red_flags_count
		RETURNING `+rollupColumns,
		phone, util.StartOfDay(date), calories, green, red,
	)
	rollup, err := scanRollup(row)
	if err != nil {
		return summary.DailyRollup{}, pgschema.Classify(err, "increment daily summary failed")
	}
	return rollup, nil
}

// MealsSince lists meals captured at or after since, oldest first.
func (r *PostgresRepository) MealsSince(ctx context.Context, phone string, since time.Time) ([]analytics.Meal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, timestamp, calories, COALESCE(user_provided_details, ''), is_recommended
		FROM food_entries
		WHERE user_phone = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`, phone, since)
	if err != nil {
		return nil, pgschema.Classify(err, "list meals failed")
	}
	defer rows.Close()
	var meals []analytics.Meal
	for rows.Next() {
		var m analytics.Meal
		if err := rows.Scan(&m.ID, &m.CapturedAt, &m.Calories, &m.Details, &m.Recommended); err != nil {
			return nil, pgschema.Classify(err, "scan meal failed")
		}
		m.CapturedAt = m.CapturedAt.UTC()
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, pgschema.Classify(err, "list meals failed")
	}
	return meals, nil
}

// RollupFor returns the rollup of one day.
func (r *PostgresRepository) RollupFor(ctx context.Context, phone string, date time.Time) (summary.DailyRollup, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+rollupColumns+`
		FROM daily_summaries
		WHERE user_phone = $1 AND date = $2
	`, phone, util.StartOfDay(date))
	rollup, err := scanRollup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return summary.DailyRollup{}, false, nil
	}
	if err != nil {
		return summary.DailyRollup{}, false, pgschema.Classify(err, "select daily summary failed")
	}
	return rollup, true, nil
}

// RecentRollups returns at most limit rollups, newest first.
func (r *PostgresRepository) RecentRollups(ctx context.Context, phone string, limit int) ([]summary.DailyRollup, error) {
	return r.listRollups(ctx, `
		SELECT `+rollupColumns+`
		FROM daily_summaries
		WHERE user_phone = $1
		ORDER BY date DESC
		LIMIT $2
	`, phone, limit)
}

// RollupsSince returns rollups dated on or after since, newest first.
func (r *PostgresRepository) RollupsSince(ctx context.Context, phone string, since time.Time) ([]summary.DailyRollup, error) {
	return r.listRollups(ctx, `
		SELECT `+rollupColumns+`
		FROM daily_summaries
		WHERE user_phone = $1 AND date >= $2
		ORDER BY date DESC
	`, phone, util.StartOfDay(since))
}

func (r *PostgresRepository) listRollups(ctx context.Context, query string, args ...any) ([]summary.DailyRollup, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, pgschema.Classify(err, "list daily summaries failed")
	}
	defer rows.Close()
	var rollups []summary.DailyRollup
	for rows.Next() {
		rollup, err := scanRollup(rows)
		if err != nil {
			return nil, pgschema.Classify(err, "scan daily summary failed")
		}
		rollups = append(rollups, rollup)
	}
	if err := rows.Err(); err != nil {
		return nil, pgschema.Classify(err, "list daily summaries failed")
	}
	return rollups, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRollup(row rowScanner) (summary.DailyRollup, error) {
	var d summary.DailyRollup
	if err := row.Scan(&d.OwnerPhone, &d.Date, &d.TotalCalories, &d.MealCount, &d.FavorableCount, &d.UnfavorableCount); err != nil {
		return summary.DailyRollup{}, err
	}
	d.Date = util.StartOfDay(d.Date)
	return d, nil
}

var (
	_ meal.Repository    = (*PostgresRepository)(nil)
	_ glucose.MealSource = (*PostgresRepository)(nil)
	_ summary.Repository = (*PostgresRepository)(nil)
)
