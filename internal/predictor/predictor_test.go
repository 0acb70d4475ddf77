package predictor

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glucose-ml/internal/dataset"
	"glucose-ml/internal/series"
)

func writeArtifact(t *testing.T, a Artifact) string {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func validArtifact() Artifact {
	return Artifact{
		FeatureColumns: dataset.FeatureColumns(),
		Targets:        []string{"peak_inc_mgdl"},
		Models: map[string]*LinearModel{
			"peak_inc_mgdl": {
				Coefficients: map[string]float64{"meal_carbs_g": 1.2},
				Intercept:    5,
			},
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		a, err := Load(writeArtifact(t, validArtifact()))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(a.Targets) != 1 {
			t.Fatalf("Expected one target, got %d", len(a.Targets))
		}
	})

	t.Run("ColumnMismatch", func(t *testing.T) {
		a := validArtifact()
		a.FeatureColumns = append([]string{}, a.FeatureColumns...)
		a.FeatureColumns[0], a.FeatureColumns[1] = a.FeatureColumns[1], a.FeatureColumns[0]

		_, err := Load(writeArtifact(t, a))
		if err == nil {
			t.Fatal("Expected an error for reordered feature columns")
		}
		if !strings.Contains(err.Error(), "feature column") {
			t.Errorf("Expected a column mismatch error, got %v", err)
		}
	})

	t.Run("MissingColumn", func(t *testing.T) {
		a := validArtifact()
		a.FeatureColumns = a.FeatureColumns[:len(a.FeatureColumns)-1]

		if _, err := Load(writeArtifact(t, a)); err == nil {
			t.Fatal("Expected an error for a truncated column list")
		}
	})

	t.Run("MissingModel", func(t *testing.T) {
		a := validArtifact()
		a.Targets = append(a.Targets, "slope_0_60_mgdl_per_min")

		if _, err := Load(writeArtifact(t, a)); err == nil {
			t.Fatal("Expected an error for a target without a model")
		}
	})

	t.Run("NoTargets", func(t *testing.T) {
		a := validArtifact()
		a.Targets = nil

		if _, err := Load(writeArtifact(t, a)); err == nil {
			t.Fatal("Expected an error for an artifact without targets")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Fatal("Expected an error for a missing file")
		}
	})
}

func TestPredict(t *testing.T) {
	a, err := Load(writeArtifact(t, validArtifact()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	row := dataset.Row{
		MealCarbsG:           45,
		MinutesSincePrevMeal: series.Known(120),
		BaselineMgdl:         series.Known(100),
		PreSlopeMgdlPerMin:   series.Known(0),
		PreMeanMgdl:          series.Known(100),
		PreStdMgdl:           series.Known(2),
	}

	preds, err := a.Predict(&row)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := 5 + 1.2*45
	if got := preds["peak_inc_mgdl"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPredictUnknownFeature(t *testing.T) {
	a := validArtifact()
	a.Models["peak_inc_mgdl"].Coefficients["baseline_mgdl"] = 0.5
	loaded, err := Load(writeArtifact(t, a))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// row with unknown baseline: a model leaning on it must say NaN, not
	// a confident number
	row := dataset.Row{MealCarbsG: 45}
	preds, err := loaded.Predict(&row)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !math.IsNaN(preds["peak_inc_mgdl"]) {
		t.Errorf("Expected NaN prediction from unknown input, got %v", preds["peak_inc_mgdl"])
	}
}
