package targets

import (
	"math"
	"testing"

	"glucose-ml/internal/config"
	"glucose-ml/internal/series"
)

// sampleEvery builds readings every stepMin minutes over [from, to]
// (minutes relative to the meal), with values from f.
func sampleEvery(from, to, stepMin int, f func(min float64) float64) []series.Sample {
	var s []series.Sample
	for m := from; m <= to; m += stepMin {
		s = append(s, series.Sample{Minute: float64(m), Value: f(float64(m))})
	}
	return s
}

func TestCompute(t *testing.T) {
	cfg := config.DefaultMealWindow()

	t.Run("FlatSeries", func(t *testing.T) {
		samples := sampleEvery(-120, 180, 5, func(float64) float64 { return 100 })
		got := Compute(samples, cfg)

		if v := got.BaselineMgdl; !v.IsKnown() || v.Float() != 100 {
			t.Errorf("Expected baseline 100, got %v", v)
		}
		if v := got.PeakMgdl; !v.IsKnown() || v.Float() != 100 {
			t.Errorf("Expected peak 100, got %v", v)
		}
		if v := got.PeakIncMgdl; !v.IsKnown() || v.Float() != 0 {
			t.Errorf("Expected zero rise on a flat series, got %v", v)
		}
		if v := got.IncrementalAUC; !v.IsKnown() || v.Float() != 0 {
			t.Errorf("Expected zero incremental AUC on a flat series, got %v", v)
		}
		if v := got.Slope0to60MgdlMin; !v.IsKnown() || v.Float() != 0 {
			t.Errorf("Expected zero slope on a flat series, got %v", v)
		}
	})

	t.Run("RisingThenFlat", func(t *testing.T) {
		// 1 mg/dL per minute for 60 minutes, then flat
		shape := func(m float64) float64 {
			if m <= 0 {
				return 100
			}
			if m <= 60 {
				return 100 + m
			}
			return 160
		}
		samples := sampleEvery(-120, 180, 5, shape)
		got := Compute(samples, cfg)

		if v := got.Slope0to60MgdlMin; !v.IsKnown() || math.Abs(v.Float()-1) > 1e-9 {
			t.Errorf("Expected slope 1, got %v", v)
		}
		if v := got.PeakMgdl; v.Float() != 160 {
			t.Errorf("Expected peak 160, got %v", v)
		}
		if v := got.PeakIncMgdl; math.Abs(v.Float()-60) > 1e-9 {
			t.Errorf("Expected rise 60 over baseline, got %v", v)
		}
		if v := got.IncrementalAUC; !v.IsKnown() || v.Float() <= 0 {
			t.Errorf("Expected positive incremental AUC, got %v", v)
		}
	})

	t.Run("DipBelowBaselineClamped", func(t *testing.T) {
		// post-meal values below baseline contribute nothing to the
		// incremental AUC
		shape := func(m float64) float64 {
			if m < 0 {
				return 100
			}
			return 80
		}
		samples := sampleEvery(-30, 180, 5, shape)
		got := Compute(samples, cfg)

		if v := got.IncrementalAUC; !v.IsKnown() || v.Float() != 0 {
			t.Errorf("Expected zero incremental AUC below baseline, got %v", v)
		}
		if v := got.PeakIncMgdl; v.Float() != -20 {
			t.Errorf("Expected rise -20, got %v", v)
		}
	})

	t.Run("SparsePostMealGate", func(t *testing.T) {
		// dense pre-meal coverage, only three post-meal readings: fewer
		// than MinPointsPost grid points carry data
		samples := sampleEvery(-120, -5, 5, func(float64) float64 { return 100 })
		samples = append(samples,
			series.Sample{Minute: 0, Value: 100},
			series.Sample{Minute: 5, Value: 110},
			series.Sample{Minute: 10, Value: 120},
		)
		got := Compute(samples, cfg)

		if !got.BaselineMgdl.IsKnown() {
			t.Error("Baseline must survive the post-meal gate")
		}
		if got.PeakMgdl.IsKnown() || got.PeakIncMgdl.IsKnown() ||
			got.IncrementalAUC.IsKnown() || got.Slope0to60MgdlMin.IsKnown() {
			t.Errorf("Expected all post-meal targets unknown, got %+v", got)
		}
	})

	t.Run("UnknownBaselineDegradesIncrementals", func(t *testing.T) {
		// no pre-meal readings at all: absolute peak and slope still
		// computable, baseline-relative targets are not
		samples := sampleEvery(0, 180, 5, func(m float64) float64 { return 100 + m/10 })
		got := Compute(samples, cfg)

		if got.BaselineMgdl.IsKnown() {
			t.Error("Expected unknown baseline without pre-meal readings")
		}
		if !got.PeakMgdl.IsKnown() {
			t.Error("Expected known peak")
		}
		if got.PeakIncMgdl.IsKnown() || got.IncrementalAUC.IsKnown() {
			t.Error("Expected unknown incremental targets without a baseline")
		}
		if !got.Slope0to60MgdlMin.IsKnown() {
			t.Error("Expected known slope")
		}
	})

	t.Run("EmptySeries", func(t *testing.T) {
		got := Compute(nil, cfg)
		if got.BaselineMgdl.IsKnown() || got.PeakMgdl.IsKnown() || got.PeakIncMgdl.IsKnown() ||
			got.IncrementalAUC.IsKnown() || got.Slope0to60MgdlMin.IsKnown() {
			t.Errorf("Expected every target unknown for an empty series, got %+v", got)
		}
	})

	t.Run("SlopeWindowClampedToPost", func(t *testing.T) {
		short := cfg
		short.PostMinutes = 30
		short.SlopeMinutes = 60
		short.MinPointsPost = 3

		samples := sampleEvery(-30, 30, 5, func(m float64) float64 { return 100 + m })
		got := Compute(samples, short)

		if v := got.Slope0to60MgdlMin; !v.IsKnown() || math.Abs(v.Float()-1) > 1e-9 {
			t.Errorf("Expected slope 1 over the clamped window, got %v", v)
		}
	})
}
