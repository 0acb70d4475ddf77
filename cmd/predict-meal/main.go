package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"glucose-ml/internal/config"
	"glucose-ml/internal/database"
	"glucose-ml/internal/dataset"
	"glucose-ml/internal/predictor"
	"glucose-ml/internal/series"
	"glucose-ml/internal/store"
)

func main() {
	godotenv.Load()

	modelPath := flag.String("model", "", "Path to the regressor artifact JSON (required)")
	mealID := flag.Int64("meal-event-id", 0, "Meal event id to predict for (required)")
	flag.Parse()

	if *modelPath == "" || *mealID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	artifact, err := predictor.Load(*modelPath)
	if err != nil {
		log.Fatalf("Failed to load model artifact: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	st := store.New(db.SQL)

	meal, err := st.MealByID(ctx, *mealID)
	if err != nil {
		log.Fatalf("Failed to load meal: %v", err)
	}

	sincePrev := series.Unknown()
	prev, err := st.PreviousMealTime(ctx, meal.EatenAt)
	if err != nil {
		log.Fatalf("Failed to load previous meal: %v", err)
	}
	if prev != nil {
		sincePrev = series.Known(meal.EatenAt.Sub(*prev).Minutes())
	}

	w := cfg.Window
	glucose, err := st.GlucoseBetween(ctx,
		meal.EatenAt.Add(-time.Duration(w.PreContextMinutes)*time.Minute),
		meal.EatenAt.Add(time.Duration(w.PostMinutes)*time.Minute))
	if err != nil {
		log.Fatalf("Failed to load glucose readings: %v", err)
	}

	actStart := meal.EatenAt.Add(-time.Duration(w.ActivityPreMinutes) * time.Minute)
	actEnd := meal.EatenAt.Add(time.Duration(w.ActivityPostMinutes) * time.Minute)
	workouts, err := st.WorkoutsBetween(ctx, actStart, actEnd)
	if err != nil {
		log.Fatalf("Failed to load workouts: %v", err)
	}
	sets, err := st.ExerciseSetsBetween(ctx, actStart, actEnd)
	if err != nil {
		log.Fatalf("Failed to load exercise sets: %v", err)
	}

	row := dataset.NewBuilder(w, 1).FeatureRow(meal, sincePrev, glucose, workouts, sets)

	preds, err := artifact.Predict(&row)
	if err != nil {
		log.Fatalf("Prediction failed: %v", err)
	}

	fmt.Printf("Meal %d @ %s (%d glucose points in window)\n",
		meal.ID, meal.EatenAt.Format(time.RFC3339), row.EGVPointsInWindow)
	names := make([]string, 0, len(preds))
	for name := range preds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %.3f\n", name, preds[name])
	}
}
