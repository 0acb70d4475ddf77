// Package features computes the per-meal feature side of the dataset:
// macro totals from meal line items, temporal features of the meal time,
// pre-meal glucose context statistics, and activity aggregates around the
// meal anchor.
package features

import (
	"time"

	"glucose-ml/internal/config"
	"glucose-ml/internal/health"
	"glucose-ml/internal/series"
)

// MealMacros holds the summed nutrient totals of one meal.
type MealMacros struct {
	Grams        float64
	CaloriesKcal float64
	CarbsG       float64
	FiberG       float64
	ProteinG     float64
	FatG         float64
}

// ComputeMealMacros sums nutrient totals over a meal's portions. Each
// portion's per-serving nutrient values are scaled by grams/serving_grams.
// Portions with non-positive grams or serving size are skipped.
func ComputeMealMacros(items []health.FoodPortion) MealMacros {
	var m MealMacros
	for _, it := range items {
		if it.Grams <= 0 || it.ServingGrams <= 0 {
			continue
		}
		mult := it.Grams / it.ServingGrams
		m.Grams += it.Grams
		m.CaloriesKcal += it.CaloriesKcal * mult
		m.CarbsG += it.CarbsG * mult
		m.FiberG += it.FiberG * mult
		m.ProteinG += it.ProteinG * mult
		m.FatG += it.FatG * mult
	}
	return m
}

// TimeFeatures are calendar features of the meal anchor, encoded as floats
// for the regressor.
type TimeFeatures struct {
	Hour      float64
	DayOfWeek float64 // 0=Monday .. 6=Sunday
	IsWeekend float64 // 1.0 on Saturday/Sunday
}

// ComputeTimeFeatures derives calendar features from the meal time.
func ComputeTimeFeatures(mealTime time.Time) TimeFeatures {
	// time.Weekday counts from Sunday; shift so Monday is 0.
	dow := (int(mealTime.Weekday()) + 6) % 7
	f := TimeFeatures{
		Hour:      float64(mealTime.Hour()),
		DayOfWeek: float64(dow),
	}
	if dow >= 5 {
		f.IsWeekend = 1
	}
	return f
}

// GlucoseContext holds the pre-meal glucose statistics.
type GlucoseContext struct {
	BaselineMgdl    series.Value
	PreSlopeMgdlMin series.Value
	PreMeanMgdl     series.Value
	PreStdMgdl      series.Value
}

// minContextPoints is the fewest finite readings the context mean/std will
// accept; fewer says more about sensor coverage than about the subject.
const minContextPoints = 3

// Baseline is the median glucose over [-PreBaselineMinutes, 0) before the
// meal, unknown unless at least MinPointsPreBaseline finite readings fall
// in that window. The median resists single-reading sensor spikes that
// would drag a mean.
func Baseline(samples []series.Sample, cfg config.MealWindowConfig) series.Value {
	vals := valuesInWindow(samples, -float64(cfg.PreBaselineMinutes), 0)
	if series.CountFinite(vals) < cfg.MinPointsPreBaseline {
		return series.Unknown()
	}
	return series.Median(vals)
}

// ComputeGlucoseContext derives the pre-meal statistics from glucose
// samples positioned in minutes relative to the meal anchor. The slope
// shares the short baseline window so an already-rising trend is captured
// separately from the longer context window's volatility.
func ComputeGlucoseContext(samples []series.Sample, cfg config.MealWindowConfig) GlucoseContext {
	ctx := GlucoseContext{
		BaselineMgdl: Baseline(samples, cfg),
	}

	baseX, baseY := pairsInWindow(samples, -float64(cfg.PreBaselineMinutes), 0)
	ctx.PreSlopeMgdlMin = series.LinearSlope(baseX, baseY)

	ctxVals := valuesInWindow(samples, -float64(cfg.PreContextMinutes), 0)
	if series.CountFinite(ctxVals) >= minContextPoints {
		ctx.PreMeanMgdl, ctx.PreStdMgdl = series.MeanStd(ctxVals)
	} else {
		ctx.PreMeanMgdl = series.Unknown()
		ctx.PreStdMgdl = series.Unknown()
	}
	return ctx
}

// valuesInWindow collects sample values with minute in [start, end).
func valuesInWindow(samples []series.Sample, start, end float64) []float64 {
	var vals []float64
	for _, s := range samples {
		if s.Minute >= start && s.Minute < end {
			vals = append(vals, s.Value)
		}
	}
	return vals
}

// pairsInWindow collects (minute, value) pairs with minute in [start, end).
func pairsInWindow(samples []series.Sample, start, end float64) ([]float64, []float64) {
	var xs, ys []float64
	for _, s := range samples {
		if s.Minute >= start && s.Minute < end {
			xs = append(xs, s.Minute)
			ys = append(ys, s.Value)
		}
	}
	return xs, ys
}
