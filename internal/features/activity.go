package features

import (
	"time"

	"glucose-ml/internal/config"
	"glucose-ml/internal/health"
)

// ActivitySummary aggregates workouts and exercise sets into the fixed
// pre/post windows around a meal anchor. Counts and sums only; missing
// numeric fields were already coerced to zero at the extraction boundary,
// so a sparse record dilutes a sum rather than dropping out of it.
type ActivitySummary struct {
	WorkoutCountPre       float64
	WorkoutMinutesPre     float64
	WorkoutEnergyKcalPre  float64
	WorkoutCountPost      float64
	WorkoutMinutesPost    float64
	WorkoutEnergyKcalPost float64

	ExerciseSetCountPre   float64
	ExerciseSetVolumePre  float64
	ExerciseSetCountPost  float64
	ExerciseSetVolumePost float64
}

// ComputeActivity aggregates activity records around the meal anchor. The
// pre window is [anchor-ActivityPreMinutes, anchor) and the post window is
// [anchor, anchor+ActivityPostMinutes); both half-open at the anchor, so a
// workout starting exactly at the meal counts once, toward post. Workouts
// are assigned by start time, exercise sets by their single timestamp.
// Set volume is the sum of reps x load over the window's records.
func ComputeActivity(anchor time.Time, workouts []health.Workout, sets []health.ExerciseSet, cfg config.MealWindowConfig) ActivitySummary {
	preStart := anchor.Add(-time.Duration(cfg.ActivityPreMinutes) * time.Minute)
	postEnd := anchor.Add(time.Duration(cfg.ActivityPostMinutes) * time.Minute)

	var a ActivitySummary
	for _, w := range workouts {
		switch {
		case inWindow(w.StartAt, preStart, anchor):
			a.WorkoutCountPre++
			a.WorkoutMinutesPre += w.DurationMin
			a.WorkoutEnergyKcalPre += w.ActiveEnergyKcal
		case inWindow(w.StartAt, anchor, postEnd):
			a.WorkoutCountPost++
			a.WorkoutMinutesPost += w.DurationMin
			a.WorkoutEnergyKcalPost += w.ActiveEnergyKcal
		}
	}
	for _, s := range sets {
		volume := float64(s.Reps) * s.WeightKg
		switch {
		case inWindow(s.PerformedAt, preStart, anchor):
			a.ExerciseSetCountPre++
			a.ExerciseSetVolumePre += volume
		case inWindow(s.PerformedAt, anchor, postEnd):
			a.ExerciseSetCountPost++
			a.ExerciseSetVolumePost += volume
		}
	}
	return a
}

// inWindow reports t in [start, end).
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
