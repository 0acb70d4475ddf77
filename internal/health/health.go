// Package health defines the read-only domain records the pipeline
// consumes: meal events with their food portions, continuous glucose
// readings, and the two kinds of activity record. All timestamps are
// normalized to UTC at the extraction boundary.
package health

import "time"

// FoodPortion is one meal line item joined with its food's per-serving
// nutrient values. Grams is the amount eaten; the nutrient fields are per
// ServingGrams of the food.
type FoodPortion struct {
	Grams        float64
	ServingGrams float64
	CaloriesKcal float64
	CarbsG       float64
	FiberG       float64
	ProteinG     float64
	FatG         float64
}

// MealEvent is a logged meal, anchored at the time it was eaten.
type MealEvent struct {
	ID      int64
	EatenAt time.Time
	Items   []FoodPortion
}

// GlucoseReading is a single estimated glucose value from a CGM sensor.
// Sampling is irregular, commonly around five minutes with gaps.
type GlucoseReading struct {
	MeasuredAt time.Time
	MgdL       float64
}

// Workout is a continuous activity session.
type Workout struct {
	StartAt          time.Time
	EndAt            time.Time
	DurationMin      float64
	ActiveEnergyKcal float64
	AvgHRBpm         float64
	ActivityType     string
}

// ExerciseSet is one discrete set of a resistance exercise.
type ExerciseSet struct {
	PerformedAt time.Time
	Name        string
	Reps        int
	WeightKg    float64
}
