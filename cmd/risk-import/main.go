package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-travel-brief/internal/config"
	"github.com/mr1hm/go-travel-brief/internal/logging"
	"github.com/mr1hm/go-travel-brief/internal/reference"
	"github.com/mr1hm/go-travel-brief/internal/repository"
)

func main() {
	_ = godotenv.Load()

	csvPath := flag.String("csv", "./data/country_risk.csv", "Path to the country risk CSV export")
	timeout := flag.Duration("timeout", time.Minute, "Import timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	f, err := os.Open(*csvPath)
	if err != nil {
		logging.Fatalf("Failed to open %s: %v", *csvPath, err)
	}
	defer f.Close()

	records, err := reference.LoadCountryRisk(f)
	if err != nil {
		logging.Fatalf("Failed to read %s: %v", *csvPath, err)
	}

	var db *repository.Store
	if cfg.DB.Driver == "postgres" {
		db, err = repository.NewPostgresDB(cfg.DB.URL)
	} else {
		db, err = repository.NewSQLiteDB(cfg.DB.Path)
	}
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	n, err := db.Import(ctx, records)
	if err != nil {
		logging.Fatalf("Import failed: %v", err)
	}

	slog.Info("import complete", "driver", cfg.DB.Driver, "read", len(records), "written", n)
	fmt.Printf("Imported %d of %d countries\n", n, len(records))
}
