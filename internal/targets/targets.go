// Package targets computes the post-meal outcome labels a regressor is
// trained against: peak glucose, rise above baseline, incremental area
// under the curve, and the early post-meal slope. Every label degrades
// independently to unknown when its inputs fail a quality gate, so a meal
// with partial sensor coverage still yields a row.
package targets

import (
	"glucose-ml/internal/config"
	"glucose-ml/internal/features"
	"glucose-ml/internal/series"
)

// Targets are the post-meal outcome labels for one meal.
type Targets struct {
	BaselineMgdl      series.Value
	PeakMgdl          series.Value
	PeakIncMgdl       series.Value
	IncrementalAUC    series.Value // mg/dL * min above baseline
	Slope0to60MgdlMin series.Value
}

// Compute derives outcome labels from glucose samples positioned in
// minutes relative to the meal anchor. The post-meal window [0, PostMinutes]
// is resampled to a uniform grid first so labels are comparable across
// meals regardless of sensor cadence. If fewer than MinPointsPost grid
// points carry data, every label except the baseline is unknown; such
// low-confidence meals surface in the dataset but carry no training signal.
func Compute(samples []series.Sample, cfg config.MealWindowConfig) Targets {
	t := Targets{
		BaselineMgdl:      features.Baseline(samples, cfg),
		PeakMgdl:          series.Unknown(),
		PeakIncMgdl:       series.Unknown(),
		IncrementalAUC:    series.Unknown(),
		Slope0to60MgdlMin: series.Unknown(),
	}

	grid := series.Resample(samples, float64(cfg.GridMinutes), 0, float64(cfg.PostMinutes))

	known := 0
	for _, p := range grid {
		if p.Value.IsKnown() {
			known++
		}
	}
	if known < cfg.MinPointsPost {
		return t
	}

	peak := series.Unknown()
	for _, p := range grid {
		if p.Value.IsKnown() && (!peak.IsKnown() || p.Value.Float() > peak.Float()) {
			peak = p.Value
		}
	}
	t.PeakMgdl = peak
	t.PeakIncMgdl = peak.Sub(t.BaselineMgdl)

	if t.BaselineMgdl.IsKnown() {
		base := t.BaselineMgdl.Float()
		inc := make([]series.Value, len(grid))
		for i, p := range grid {
			if !p.Value.IsKnown() {
				inc[i] = series.Unknown()
				continue
			}
			rise := p.Value.Float() - base
			if rise < 0 {
				rise = 0
			}
			inc[i] = series.Known(rise)
		}
		t.IncrementalAUC = series.Known(series.TrapezoidIntegral(inc, float64(cfg.GridMinutes)))
	}

	slopeEnd := float64(cfg.SlopeMinutes)
	if post := float64(cfg.PostMinutes); post < slopeEnd {
		slopeEnd = post
	}
	var xs, ys []float64
	for _, p := range grid {
		if p.Minute >= 0 && p.Minute <= slopeEnd {
			xs = append(xs, p.Minute)
			ys = append(ys, p.Value.Float())
		}
	}
	t.Slope0to60MgdlMin = series.LinearSlope(xs, ys)

	return t
}
