package dataset

import (
	"sort"
	"sync"
	"time"

	"glucose-ml/internal/config"
	"glucose-ml/internal/features"
	"glucose-ml/internal/health"
	"glucose-ml/internal/series"
	"glucose-ml/internal/targets"
)

// Builder produces one Row per meal event. Per-meal computation only reads
// shared, immutable inputs, so the builder can fan meals out across
// workers without any coordination beyond the final slice.
type Builder struct {
	cfg     config.MealWindowConfig
	workers int
}

// NewBuilder creates a Builder. Workers below 1 are treated as 1.
func NewBuilder(cfg config.MealWindowConfig, workers int) *Builder {
	if workers < 1 {
		workers = 1
	}
	return &Builder{cfg: cfg, workers: workers}
}

// Build assembles the meal-centered table. Meals are processed and emitted
// in ascending eaten-at order; an empty cohort yields an empty table. The
// glucose series is sorted once and pre-trimmed to the cohort's combined
// window span, then sliced per meal by binary search.
func (b *Builder) Build(meals []health.MealEvent, glucose []health.GlucoseReading, workouts []health.Workout, sets []health.ExerciseSet) []Row {
	if len(meals) == 0 {
		return nil
	}

	sorted := make([]health.MealEvent, len(meals))
	copy(sorted, meals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EatenAt.Before(sorted[j].EatenAt) })

	egv := b.trimGlucose(glucose, sorted[0].EatenAt, sorted[len(sorted)-1].EatenAt)

	rows := make([]Row, len(sorted))
	build := func(i int) {
		m := sorted[i]
		prev := series.Unknown()
		if i > 0 {
			prev = series.Known(m.EatenAt.Sub(sorted[i-1].EatenAt).Minutes())
		}
		rows[i] = b.buildRow(m, prev, egv, workouts, sets)
	}

	if b.workers == 1 || len(sorted) == 1 {
		for i := range sorted {
			build(i)
		}
		return rows
	}

	var wg sync.WaitGroup
	idx := make(chan int)
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				build(i)
			}
		}()
	}
	for i := range sorted {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return rows
}

// FeatureRow computes the feature side only, for a single meal at
// inference time. The caller supplies the minutes since the previous meal
// (unknown when there is none); targets stay unknown and the diagnostic
// point count still reflects the combined glucose window.
func (b *Builder) FeatureRow(meal health.MealEvent, minutesSincePrev series.Value, glucose []health.GlucoseReading, workouts []health.Workout, sets []health.ExerciseSet) Row {
	egv := b.trimGlucose(glucose, meal.EatenAt, meal.EatenAt)
	rel := egv.relativeTo(meal.EatenAt, -float64(b.cfg.PreContextMinutes), float64(b.cfg.PostMinutes))
	return b.baseRow(meal, minutesSincePrev, rel, workouts, sets)
}

// buildRow is the full training-path row: features plus targets.
func (b *Builder) buildRow(meal health.MealEvent, minutesSincePrev series.Value, egv sortedGlucose, workouts []health.Workout, sets []health.ExerciseSet) Row {
	rel := egv.relativeTo(meal.EatenAt, -float64(b.cfg.PreContextMinutes), float64(b.cfg.PostMinutes))
	row := b.baseRow(meal, minutesSincePrev, rel, workouts, sets)

	t := targets.Compute(rel, b.cfg)
	row.PeakMgdl = t.PeakMgdl
	row.PeakIncMgdl = t.PeakIncMgdl
	row.IncrementalAUCMgdlMin = t.IncrementalAUC
	row.Slope0to60MgdlPerMin = t.Slope0to60MgdlMin
	// the context extractor already filled BaselineMgdl with the same value
	return row
}

// baseRow fills every feature field shared by training and inference from
// the meal's anchor-relative glucose samples.
func (b *Builder) baseRow(meal health.MealEvent, minutesSincePrev series.Value, rel []series.Sample, workouts []health.Workout, sets []health.ExerciseSet) Row {
	tf := features.ComputeTimeFeatures(meal.EatenAt)
	macros := features.ComputeMealMacros(meal.Items)
	ctx := features.ComputeGlucoseContext(rel, b.cfg)
	act := features.ComputeActivity(meal.EatenAt, workouts, sets, b.cfg)

	return Row{
		MealEventID: meal.ID,
		EatenAt:     meal.EatenAt,

		MealHour:      tf.Hour,
		MealDOW:       tf.DayOfWeek,
		MealIsWeekend: tf.IsWeekend,

		MealGrams:        macros.Grams,
		MealCaloriesKcal: macros.CaloriesKcal,
		MealCarbsG:       macros.CarbsG,
		MealFiberG:       macros.FiberG,
		MealProteinG:     macros.ProteinG,
		MealFatG:         macros.FatG,

		BaselineMgdl:       ctx.BaselineMgdl,
		PreSlopeMgdlPerMin: ctx.PreSlopeMgdlMin,
		PreMeanMgdl:        ctx.PreMeanMgdl,
		PreStdMgdl:         ctx.PreStdMgdl,

		WorkoutCountPre6h:       act.WorkoutCountPre,
		WorkoutMinutesPre6h:     act.WorkoutMinutesPre,
		WorkoutEnergyKcalPre6h:  act.WorkoutEnergyKcalPre,
		WorkoutCountPost3h:      act.WorkoutCountPost,
		WorkoutMinutesPost3h:    act.WorkoutMinutesPost,
		WorkoutEnergyKcalPost3h: act.WorkoutEnergyKcalPost,
		ExerciseSetCountPre6h:   act.ExerciseSetCountPre,
		ExerciseSetVolumePre6h:  act.ExerciseSetVolumePre,
		ExerciseSetCountPost3h:  act.ExerciseSetCountPost,
		ExerciseSetVolumePost3h: act.ExerciseSetVolumePost,

		MinutesSincePrevMeal: minutesSincePrev,

		PeakMgdl:              series.Unknown(),
		PeakIncMgdl:           series.Unknown(),
		IncrementalAUCMgdlMin: series.Unknown(),
		Slope0to60MgdlPerMin:  series.Unknown(),

		EGVPointsInWindow: len(rel),
	}
}

// sortedGlucose is a glucose series sorted ascending by MeasuredAt,
// supporting binary-search range slicing.
type sortedGlucose []health.GlucoseReading

// trimGlucose sorts a copy of the series and trims it to the span any meal
// in [firstMeal, lastMeal] can reach, so per-meal slicing works over the
// smallest possible array.
func (b *Builder) trimGlucose(glucose []health.GlucoseReading, firstMeal, lastMeal time.Time) sortedGlucose {
	s := make(sortedGlucose, len(glucose))
	copy(s, glucose)
	sort.Slice(s, func(i, j int) bool { return s[i].MeasuredAt.Before(s[j].MeasuredAt) })

	lo := firstMeal.Add(-time.Duration(b.cfg.PreContextMinutes) * time.Minute)
	hi := lastMeal.Add(time.Duration(b.cfg.PostMinutes) * time.Minute)
	return s.between(lo, hi)
}

// between returns the sub-series with MeasuredAt in [lo, hi].
func (s sortedGlucose) between(lo, hi time.Time) sortedGlucose {
	i := sort.Search(len(s), func(k int) bool { return !s[k].MeasuredAt.Before(lo) })
	j := sort.Search(len(s), func(k int) bool { return s[k].MeasuredAt.After(hi) })
	return s[i:j]
}

// relativeTo converts readings within [startMin, endMin] minutes of the
// anchor into anchor-relative samples.
func (s sortedGlucose) relativeTo(anchor time.Time, startMin, endMin float64) []series.Sample {
	lo := anchor.Add(time.Duration(startMin * float64(time.Minute)))
	hi := anchor.Add(time.Duration(endMin * float64(time.Minute)))
	window := s.between(lo, hi)
	rel := make([]series.Sample, len(window))
	for i, g := range window {
		rel[i] = series.Sample{
			Minute: g.MeasuredAt.Sub(anchor).Minutes(),
			Value:  g.MgdL,
		}
	}
	return rel
}
