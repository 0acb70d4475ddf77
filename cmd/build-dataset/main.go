package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"glucose-ml/internal/config"
	"glucose-ml/internal/database"
	"glucose-ml/internal/dataset"
	"glucose-ml/internal/store"
)

func main() {
	godotenv.Load()

	out := flag.String("out", "", "Output CSV path (required)")
	start := flag.String("start", "", "Only meals eaten at or after this time (YYYY-MM-DD or RFC 3339)")
	end := flag.String("end", "", "Only meals eaten before this time (YYYY-MM-DD or RFC 3339)")
	workers := flag.Int("workers", 1, "Per-meal computation workers")
	testFrac := flag.Float64("test-frac", 0, "If > 0, also write a time-based train/test split")
	trainOut := flag.String("train-out", "", "Train split CSV path (default <out> with .train.csv)")
	testOut := flag.String("test-out", "", "Test split CSV path (default <out> with .test.csv)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	startAt, err := parseTimeFlag(*start)
	if err != nil {
		log.Fatalf("Invalid -start: %v", err)
	}
	endAt, err := parseTimeFlag(*end)
	if err != nil {
		log.Fatalf("Invalid -end: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	extract, err := store.New(db.SQL).ExtractForDataset(ctx, cfg.Window, startAt, endAt)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	rows := dataset.NewBuilder(cfg.Window, *workers).
		Build(extract.Meals, extract.Glucose, extract.Workouts, extract.ExerciseSets)

	if err := writeCSV(*out, rows); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}
	fmt.Printf("Wrote %d meals -> %s\n", len(rows), *out)

	if *testFrac > 0 {
		train, test := dataset.TimeSplit(rows, *testFrac)
		trainPath := defaultSplitPath(*trainOut, *out, "train")
		testPath := defaultSplitPath(*testOut, *out, "test")
		if err := writeCSV(trainPath, train); err != nil {
			log.Fatalf("Failed to write train split: %v", err)
		}
		if err := writeCSV(testPath, test); err != nil {
			log.Fatalf("Failed to write test split: %v", err)
		}
		fmt.Printf("Split %d/%d -> %s, %s\n", len(train), len(test), trainPath, testPath)
	}
}

func writeCSV(path string, rows []dataset.Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := dataset.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseTimeFlag accepts a date or a full RFC 3339 timestamp; a bare date
// means midnight UTC.
func parseTimeFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("must be YYYY-MM-DD or RFC 3339, got %q", value)
	}
	t = t.UTC()
	return &t, nil
}

func defaultSplitPath(explicit, out, kind string) string {
	if explicit != "" {
		return explicit
	}
	ext := filepath.Ext(out)
	return out[:len(out)-len(ext)] + "." + kind + ext
}
