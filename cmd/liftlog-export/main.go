package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/export"
	"github.com/claude/liftlog/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outPath := flag.String("out", "", "output parquet file (required)")
	sinceStr := flag.String("since", "", "export workouts starting at this date (YYYY-MM-DD, default: all)")
	flag.Parse()

	_ = godotenv.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *outPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-export -config config.yaml -out history.parquet [-since 2024-01-01]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	since := time.Unix(0, 0)
	if *sinceStr != "" {
		t, err := time.Parse("2006-01-02", *sinceStr)
		if err != nil {
			log.Error("invalid -since date", "value", *sinceStr, "error", err)
			os.Exit(1)
		}
		since = t
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.Path)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	workouts, err := db.ListWorkouts(ctx, since, time.Now())
	if err != nil {
		log.Error("failed to list workouts", "error", err)
		os.Exit(1)
	}
	log.Info("exporting workout history", "workouts", len(workouts))

	data, err := export.MarshalSetHistory(workouts)
	if err != nil {
		log.Error("parquet export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Error("writing output file failed", "path", *outPath, "error", err)
		os.Exit(1)
	}
	log.Info("export complete", "path", *outPath, "bytes", len(data))
}
