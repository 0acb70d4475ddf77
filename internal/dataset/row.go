// Package dataset assembles the meal-centered feature/target table: one
// row per meal event, ordered by eaten time, with a fixed column schema
// shared by the training and inference paths.
package dataset

import (
	"time"

	"glucose-ml/internal/series"
)

// Row is one meal's worth of features and targets. The schema is fixed:
// both the dataset builder and the single-meal inference path fill the
// same fields, and the CSV codec and feature-vector assembly both run off
// the column table below rather than reflection or ad-hoc maps.
type Row struct {
	MealEventID int64
	EatenAt     time.Time

	// temporal features
	MealHour      float64
	MealDOW       float64
	MealIsWeekend float64

	// meal macro totals
	MealGrams        float64
	MealCaloriesKcal float64
	MealCarbsG       float64
	MealFiberG       float64
	MealProteinG     float64
	MealFatG         float64

	// pre-meal glucose context
	BaselineMgdl       series.Value
	PreSlopeMgdlPerMin series.Value
	PreMeanMgdl        series.Value
	PreStdMgdl         series.Value

	// activity aggregates
	WorkoutCountPre6h       float64
	WorkoutMinutesPre6h     float64
	WorkoutEnergyKcalPre6h  float64
	WorkoutCountPost3h      float64
	WorkoutMinutesPost3h    float64
	WorkoutEnergyKcalPost3h float64
	ExerciseSetCountPre6h   float64
	ExerciseSetVolumePre6h  float64
	ExerciseSetCountPost3h  float64
	ExerciseSetVolumePost3h float64

	MinutesSincePrevMeal series.Value

	// post-meal outcome targets
	PeakMgdl              series.Value
	PeakIncMgdl           series.Value
	IncrementalAUCMgdlMin series.Value
	Slope0to60MgdlPerMin  series.Value

	// diagnostic: glucose points found in the combined pre+post window
	EGVPointsInWindow int
}

// column binds a column name to its accessors on Row. Keeping one ordered
// table keeps CSV headers, feature vectors, and the artifact contract in
// lockstep.
type column struct {
	name string
	get  func(*Row) series.Value
	set  func(*Row, series.Value)
}

func knownCol(name string, get func(*Row) *float64) column {
	return column{
		name: name,
		get:  func(r *Row) series.Value { return series.Known(*get(r)) },
		set:  func(r *Row, v series.Value) { *get(r) = v.Or(0) },
	}
}

func valueCol(name string, get func(*Row) *series.Value) column {
	return column{
		name: name,
		get:  func(r *Row) series.Value { return *get(r) },
		set:  func(r *Row, v series.Value) { *get(r) = v },
	}
}

// featureCols lists every model input column, in the order regressors are
// trained on. Targets are deliberately absent; so is the raw post-meal
// peak, which is outcome information even though it is not itself a
// default training target.
var featureCols = []column{
	knownCol("meal_hour", func(r *Row) *float64 { return &r.MealHour }),
	knownCol("meal_dow", func(r *Row) *float64 { return &r.MealDOW }),
	knownCol("meal_is_weekend", func(r *Row) *float64 { return &r.MealIsWeekend }),
	knownCol("meal_grams", func(r *Row) *float64 { return &r.MealGrams }),
	knownCol("meal_calories_kcal", func(r *Row) *float64 { return &r.MealCaloriesKcal }),
	knownCol("meal_carbs_g", func(r *Row) *float64 { return &r.MealCarbsG }),
	knownCol("meal_fiber_g", func(r *Row) *float64 { return &r.MealFiberG }),
	knownCol("meal_protein_g", func(r *Row) *float64 { return &r.MealProteinG }),
	knownCol("meal_fat_g", func(r *Row) *float64 { return &r.MealFatG }),
	valueCol("baseline_mgdl", func(r *Row) *series.Value { return &r.BaselineMgdl }),
	valueCol("pre_slope_mgdl_per_min", func(r *Row) *series.Value { return &r.PreSlopeMgdlPerMin }),
	valueCol("pre_mean_mgdl", func(r *Row) *series.Value { return &r.PreMeanMgdl }),
	valueCol("pre_std_mgdl", func(r *Row) *series.Value { return &r.PreStdMgdl }),
	knownCol("workout_count_pre6h", func(r *Row) *float64 { return &r.WorkoutCountPre6h }),
	knownCol("workout_minutes_pre6h", func(r *Row) *float64 { return &r.WorkoutMinutesPre6h }),
	knownCol("workout_energy_kcal_pre6h", func(r *Row) *float64 { return &r.WorkoutEnergyKcalPre6h }),
	knownCol("workout_count_post3h", func(r *Row) *float64 { return &r.WorkoutCountPost3h }),
	knownCol("workout_minutes_post3h", func(r *Row) *float64 { return &r.WorkoutMinutesPost3h }),
	knownCol("workout_energy_kcal_post3h", func(r *Row) *float64 { return &r.WorkoutEnergyKcalPost3h }),
	knownCol("exercise_set_count_pre6h", func(r *Row) *float64 { return &r.ExerciseSetCountPre6h }),
	knownCol("exercise_set_volume_pre6h", func(r *Row) *float64 { return &r.ExerciseSetVolumePre6h }),
	knownCol("exercise_set_count_post3h", func(r *Row) *float64 { return &r.ExerciseSetCountPost3h }),
	knownCol("exercise_set_volume_post3h", func(r *Row) *float64 { return &r.ExerciseSetVolumePost3h }),
	valueCol("minutes_since_prev_meal", func(r *Row) *series.Value { return &r.MinutesSincePrevMeal }),
}

// targetCols lists the outcome columns. The baseline appears with the
// features (it is legitimate pre-meal information) even though the target
// extractor also reports it.
var targetCols = []column{
	valueCol("peak_mgdl", func(r *Row) *series.Value { return &r.PeakMgdl }),
	valueCol("peak_inc_mgdl", func(r *Row) *series.Value { return &r.PeakIncMgdl }),
	valueCol("incremental_auc_mgdl_min", func(r *Row) *series.Value { return &r.IncrementalAUCMgdlMin }),
	valueCol("slope_0_60_mgdl_per_min", func(r *Row) *series.Value { return &r.Slope0to60MgdlPerMin }),
}

// FeatureColumns returns the ordered model-input column names.
func FeatureColumns() []string {
	names := make([]string, len(featureCols))
	for i, c := range featureCols {
		names[i] = c.name
	}
	return names
}

// TargetColumns returns the ordered outcome column names.
func TargetColumns() []string {
	names := make([]string, len(targetCols))
	for i, c := range targetCols {
		names[i] = c.name
	}
	return names
}

// Feature returns the named feature value, and whether the name is a
// feature column at all.
func (r *Row) Feature(name string) (series.Value, bool) {
	for i := range featureCols {
		if featureCols[i].name == name {
			return featureCols[i].get(r), true
		}
	}
	return series.Unknown(), false
}

// FeatureVector assembles the row's features in the given column order.
// Unknown features come out as NaN, matching what regressors trained on
// the CSV see for missing cells.
func (r *Row) FeatureVector(cols []string) ([]float64, error) {
	vec := make([]float64, len(cols))
	for i, name := range cols {
		v, ok := r.Feature(name)
		if !ok {
			return nil, &UnknownColumnError{Name: name}
		}
		vec[i] = v.Float()
	}
	return vec, nil
}

// Target returns the named target value, and whether the name is a target
// column.
func (r *Row) Target(name string) (series.Value, bool) {
	for i := range targetCols {
		if targetCols[i].name == name {
			return targetCols[i].get(r), true
		}
	}
	return series.Unknown(), false
}

// UnknownColumnError reports a request for a column the schema does not
// define.
type UnknownColumnError struct {
	Name string
}

func (e *UnknownColumnError) Error() string {
	return "unknown feature column: " + e.Name
}
