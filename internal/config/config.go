package config

import (
	"fmt"
	"os"
	"strconv"
)

// MealWindowConfig defines how glucose and activity series are sliced
// around each meal. All durations are minutes. One immutable copy is
// threaded through every computation of a run; the feature and target
// logic never reaches for shared state.
//
// The target logic assumes SlopeMinutes <= PostMinutes; callers are
// expected to respect that, it is not enforced here.
type MealWindowConfig struct {
	PreBaselineMinutes  int // [-PreBaselineMinutes, 0) baseline window
	PreContextMinutes   int // [-PreContextMinutes, 0) context stats window
	PostMinutes         int // [0, PostMinutes] post-meal outcome window
	SlopeMinutes        int // [0, SlopeMinutes] post-meal slope window
	GridMinutes         int // resampling step for target computation
	ActivityPreMinutes  int // activity lookback window
	ActivityPostMinutes int // activity lookahead window

	// data quality thresholds
	MinPointsPreBaseline int
	MinPointsPost        int
}

// DefaultMealWindow returns the standard window lengths and quality gates.
func DefaultMealWindow() MealWindowConfig {
	return MealWindowConfig{
		PreBaselineMinutes:   30,
		PreContextMinutes:    120,
		PostMinutes:          180,
		SlopeMinutes:         60,
		GridMinutes:          5,
		ActivityPreMinutes:   360,
		ActivityPostMinutes:  180,
		MinPointsPreBaseline: 3,
		MinPointsPost:        10,
	}
}

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Window       MealWindowConfig
}

// NewFromEnv creates a new Config object from environment variables.
// Every variable is optional; unset window variables keep their defaults.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("GLUCOSE_DB_PATH")
	if dbPath == "" {
		dbPath = "data/glucose.db"
	}

	w := DefaultMealWindow()
	var err error
	if w.PreBaselineMinutes, err = intFromEnv("MEAL_PRE_BASELINE_MINUTES", w.PreBaselineMinutes); err != nil {
		return nil, err
	}
	if w.PreContextMinutes, err = intFromEnv("MEAL_PRE_CONTEXT_MINUTES", w.PreContextMinutes); err != nil {
		return nil, err
	}
	if w.PostMinutes, err = intFromEnv("MEAL_POST_MINUTES", w.PostMinutes); err != nil {
		return nil, err
	}
	if w.SlopeMinutes, err = intFromEnv("MEAL_SLOPE_MINUTES", w.SlopeMinutes); err != nil {
		return nil, err
	}
	if w.GridMinutes, err = intFromEnv("MEAL_GRID_MINUTES", w.GridMinutes); err != nil {
		return nil, err
	}
	if w.ActivityPreMinutes, err = intFromEnv("MEAL_ACTIVITY_PRE_MINUTES", w.ActivityPreMinutes); err != nil {
		return nil, err
	}
	if w.ActivityPostMinutes, err = intFromEnv("MEAL_ACTIVITY_POST_MINUTES", w.ActivityPostMinutes); err != nil {
		return nil, err
	}
	if w.MinPointsPreBaseline, err = intFromEnv("MEAL_MIN_POINTS_PRE_BASELINE", w.MinPointsPreBaseline); err != nil {
		return nil, err
	}
	if w.MinPointsPost, err = intFromEnv("MEAL_MIN_POINTS_POST", w.MinPointsPost); err != nil {
		return nil, err
	}

	return &Config{
		DatabasePath: dbPath,
		Window:       w,
	}, nil
}

func intFromEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", name, v)
	}
	return v, nil
}
