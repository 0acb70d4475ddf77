package config

import "testing"

func TestDefaultMealWindow(t *testing.T) {
	w := DefaultMealWindow()

	if w.PreBaselineMinutes != 30 || w.PreContextMinutes != 120 || w.PostMinutes != 180 {
		t.Errorf("Unexpected glucose window defaults: %+v", w)
	}
	if w.SlopeMinutes != 60 || w.GridMinutes != 5 {
		t.Errorf("Unexpected slope/grid defaults: %+v", w)
	}
	if w.ActivityPreMinutes != 360 || w.ActivityPostMinutes != 180 {
		t.Errorf("Unexpected activity window defaults: %+v", w)
	}
	if w.MinPointsPreBaseline != 3 || w.MinPointsPost != 10 {
		t.Errorf("Unexpected quality gate defaults: %+v", w)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("GLUCOSE_DB_PATH", "")
		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/glucose.db" {
			t.Errorf("Expected default database path, got %q", cfg.DatabasePath)
		}
		if cfg.Window != DefaultMealWindow() {
			t.Errorf("Expected default window config, got %+v", cfg.Window)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("GLUCOSE_DB_PATH", "/tmp/other.db")
		t.Setenv("MEAL_POST_MINUTES", "120")
		t.Setenv("MEAL_MIN_POINTS_POST", "5")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "/tmp/other.db" {
			t.Errorf("Expected overridden path, got %q", cfg.DatabasePath)
		}
		if cfg.Window.PostMinutes != 120 || cfg.Window.MinPointsPost != 5 {
			t.Errorf("Expected overridden window values, got %+v", cfg.Window)
		}
		if cfg.Window.PreContextMinutes != 120 {
			t.Errorf("Untouched fields must keep defaults, got %+v", cfg.Window)
		}
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		t.Setenv("MEAL_GRID_MINUTES", "five")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a non-integer override")
		}
	})

	t.Run("RejectsNonPositive", func(t *testing.T) {
		t.Setenv("MEAL_GRID_MINUTES", "0")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a zero window value")
		}
	})
}
