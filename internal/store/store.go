// Package store reads the health records out of SQLite. It is the
// boundary between persistence and the numeric pipeline: timestamps are
// normalized to UTC and nullable numeric columns are coerced to zero here,
// so the pipeline only ever sees well-formed records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"glucose-ml/internal/config"
	"glucose-ml/internal/health"
)

// Store is a database-backed source of meals, glucose readings, and
// activity records.
type Store struct {
	db *sql.DB
}

// New creates a Store over an open database connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Extract bundles everything the dataset builder consumes for one cohort.
type Extract struct {
	Meals        []health.MealEvent
	Glucose      []health.GlucoseReading
	Workouts     []health.Workout
	ExerciseSets []health.ExerciseSet
}

// ExtractForDataset loads the meal cohort (optionally bounded to
// [start, end) by eaten time) together with the sensor and activity series
// trimmed to the span the cohort can reach: the meal range widened by the
// larger pre window on the left and the larger post window on the right.
// An empty cohort returns an Extract with no series loaded.
func (s *Store) ExtractForDataset(ctx context.Context, cfg config.MealWindowConfig, start, end *time.Time) (*Extract, error) {
	meals, err := s.mealsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return &Extract{}, nil
	}

	minMeal := meals[0].EatenAt
	maxMeal := meals[len(meals)-1].EatenAt

	preMin := cfg.PreContextMinutes
	if cfg.ActivityPreMinutes > preMin {
		preMin = cfg.ActivityPreMinutes
	}
	postMin := cfg.PostMinutes
	if cfg.ActivityPostMinutes > postMin {
		postMin = cfg.ActivityPostMinutes
	}
	needStart := minMeal.Add(-time.Duration(preMin) * time.Minute)
	needEnd := maxMeal.Add(time.Duration(postMin) * time.Minute)

	glucose, err := s.GlucoseBetween(ctx, needStart, needEnd)
	if err != nil {
		return nil, err
	}
	workouts, err := s.WorkoutsBetween(ctx, needStart, needEnd)
	if err != nil {
		return nil, err
	}
	sets, err := s.ExerciseSetsBetween(ctx, needStart, needEnd)
	if err != nil {
		return nil, err
	}

	return &Extract{
		Meals:        meals,
		Glucose:      glucose,
		Workouts:     workouts,
		ExerciseSets: sets,
	}, nil
}

// mealsBetween loads meal events ordered by eaten time, each with its food
// portions attached via the items x foods join.
func (s *Store) mealsBetween(ctx context.Context, start, end *time.Time) ([]health.MealEvent, error) {
	query := `SELECT id, eaten_at FROM meal_events`
	var args []any
	switch {
	case start != nil && end != nil:
		query += ` WHERE eaten_at >= ? AND eaten_at < ?`
		args = append(args, start.UTC(), end.UTC())
	case start != nil:
		query += ` WHERE eaten_at >= ?`
		args = append(args, start.UTC())
	case end != nil:
		query += ` WHERE eaten_at < ?`
		args = append(args, end.UTC())
	}
	query += ` ORDER BY eaten_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal events: %w", err)
	}
	defer rows.Close()

	var meals []health.MealEvent
	index := make(map[int64]int)
	for rows.Next() {
		var m health.MealEvent
		if err := rows.Scan(&m.ID, &m.EatenAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal event: %w", err)
		}
		m.EatenAt = m.EatenAt.UTC()
		index[m.ID] = len(meals)
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal events: %w", err)
	}
	if len(meals) == 0 {
		return nil, nil
	}

	if err := s.attachItems(ctx, meals, index); err != nil {
		return nil, err
	}
	return meals, nil
}

// attachItems joins meal items with their foods and attaches the portions
// to the already-loaded meals.
func (s *Store) attachItems(ctx context.Context, meals []health.MealEvent, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.meal_event_id, i.grams,
		       f.serving_grams, f.calories_kcal, f.carbs_g, f.fiber_g, f.protein_g, f.fat_g
		FROM meal_event_items i
		JOIN food_items f ON f.id = i.food_item_id
		ORDER BY i.meal_event_id, i.sort_order, i.id`)
	if err != nil {
		return fmt.Errorf("failed to query meal items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mealID int64
		var p health.FoodPortion
		if err := rows.Scan(&mealID, &p.Grams, &p.ServingGrams, &p.CaloriesKcal, &p.CarbsG, &p.FiberG, &p.ProteinG, &p.FatG); err != nil {
			return fmt.Errorf("failed to scan meal item: %w", err)
		}
		if i, ok := index[mealID]; ok {
			meals[i].Items = append(meals[i].Items, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate meal items: %w", err)
	}
	return nil
}

// MealByID loads a single meal event with its portions.
func (s *Store) MealByID(ctx context.Context, id int64) (health.MealEvent, error) {
	var m health.MealEvent
	err := s.db.QueryRowContext(ctx, `SELECT id, eaten_at FROM meal_events WHERE id = ?`, id).
		Scan(&m.ID, &m.EatenAt)
	if err == sql.ErrNoRows {
		return m, fmt.Errorf("meal event %d not found", id)
	}
	if err != nil {
		return m, fmt.Errorf("failed to load meal event %d: %w", id, err)
	}
	m.EatenAt = m.EatenAt.UTC()

	meals := []health.MealEvent{m}
	if err := s.attachItems(ctx, meals, map[int64]int{m.ID: 0}); err != nil {
		return m, err
	}
	return meals[0], nil
}

// PreviousMealTime returns the eaten time of the latest meal strictly
// before the given time, or nil when none exists.
func (s *Store) PreviousMealTime(ctx context.Context, before time.Time) (*time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT eaten_at FROM meal_events WHERE eaten_at < ? ORDER BY eaten_at DESC LIMIT 1`,
		before.UTC()).Scan(&t)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load previous meal time: %w", err)
	}
	t = t.UTC()
	return &t, nil
}

// GlucoseBetween loads glucose readings with measured_at in [from, to],
// ordered by time.
func (s *Store) GlucoseBetween(ctx context.Context, from, to time.Time) ([]health.GlucoseReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT measured_at, glucose_mgdl
		FROM egv_readings
		WHERE measured_at >= ? AND measured_at <= ?
		ORDER BY measured_at ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query glucose readings: %w", err)
	}
	defer rows.Close()

	var readings []health.GlucoseReading
	for rows.Next() {
		var g health.GlucoseReading
		if err := rows.Scan(&g.MeasuredAt, &g.MgdL); err != nil {
			return nil, fmt.Errorf("failed to scan glucose reading: %w", err)
		}
		g.MeasuredAt = g.MeasuredAt.UTC()
		readings = append(readings, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate glucose readings: %w", err)
	}
	return readings, nil
}

// WorkoutsBetween loads workouts starting in [from, to], ordered by start
// time. Nullable numeric columns come back as zero.
func (s *Store) WorkoutsBetween(ctx context.Context, from, to time.Time) ([]health.Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT start_at, end_at, duration_min, active_energy_kcal, avg_hr_bpm, activity_type
		FROM workouts
		WHERE start_at >= ? AND start_at <= ?
		ORDER BY start_at ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}
	defer rows.Close()

	var workouts []health.Workout
	for rows.Next() {
		var w health.Workout
		var endAt sql.NullTime
		var duration, energy, hr sql.NullFloat64
		if err := rows.Scan(&w.StartAt, &endAt, &duration, &energy, &hr, &w.ActivityType); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		w.StartAt = w.StartAt.UTC()
		if endAt.Valid {
			w.EndAt = endAt.Time.UTC()
		}
		w.DurationMin = duration.Float64
		w.ActiveEnergyKcal = energy.Float64
		w.AvgHRBpm = hr.Float64
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workouts: %w", err)
	}
	return workouts, nil
}

// ExerciseSetsBetween loads exercise sets performed in [from, to], ordered
// by time. Nullable reps/weight come back as zero.
func (s *Store) ExerciseSetsBetween(ctx context.Context, from, to time.Time) ([]health.ExerciseSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT performed_at, name, reps, weight_kg
		FROM exercise_sets
		WHERE performed_at >= ? AND performed_at <= ?
		ORDER BY performed_at ASC`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise sets: %w", err)
	}
	defer rows.Close()

	var sets []health.ExerciseSet
	for rows.Next() {
		var e health.ExerciseSet
		var reps sql.NullInt64
		var weight sql.NullFloat64
		if err := rows.Scan(&e.PerformedAt, &e.Name, &reps, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan exercise set: %w", err)
		}
		e.PerformedAt = e.PerformedAt.UTC()
		e.Reps = int(reps.Int64)
		e.WeightKg = weight.Float64
		sets = append(sets, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exercise sets: %w", err)
	}
	return sets, nil
}
