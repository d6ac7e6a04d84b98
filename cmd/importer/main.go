package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/andresuchdata/retail-inventory/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type ctxKey struct{}

// deps is what every command needs once the database is open.
type deps struct {
	db        *postgres.DB
	inventory *service.InventoryService
	analytics *service.AnalyticsService
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.Connect("pgx", c.String("db-url"))
	if err != nil {
		return err
	}

	repo := postgres.NewInventoryRepository(db)
	if err := repo.EnsureSchema(c.Context); err != nil {
		db.Close()
		return err
	}
	runs := pipeline.NewRepository(db.DB)
	if err := runs.EnsureSchema(c.Context); err != nil {
		db.Close()
		return err
	}

	c.Context = context.WithValue(c.Context, ctxKey{}, &deps{
		db:        db,
		inventory: service.NewInventoryService(repo, runs, nil, nil, cfg.Ingest, cfg.App.MaxUploadBytes),
		analytics: service.NewAnalyticsService(repo, nil),
	})
	return nil
}

func closeDB(c *cli.Context) error {
	if d, ok := c.Context.Value(ctxKey{}).(*deps); ok && d != nil {
		return d.db.Close()
	}
	return nil
}

func depsFrom(c *cli.Context) *deps {
	return c.Context.Value(ctxKey{}).(*deps)
}

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logger.Init("debug", level)

	app := &cli.App{
		Name:  "importer",
		Usage: "Load inventory exports into the database",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Before: initDB,
		After:  closeDB,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import local CSV or XLSX files",
				ArgsUsage: "FILE...",
				Action:    runImport,
			},
			{
				Name:  "fetch",
				Usage: "Import CSV or XLSX objects from an S3-compatible bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "s3-endpoint", EnvVars: []string{"ARCHIVE_ENDPOINT"}, Required: true},
					&cli.StringFlag{Name: "s3-access-key", EnvVars: []string{"ARCHIVE_ACCESS_KEY"}, Required: true},
					&cli.StringFlag{Name: "s3-secret-key", EnvVars: []string{"ARCHIVE_SECRET_KEY"}, Required: true},
					&cli.StringFlag{Name: "s3-bucket", EnvVars: []string{"ARCHIVE_BUCKET"}, Required: true},
					&cli.StringFlag{Name: "s3-region", EnvVars: []string{"ARCHIVE_REGION"}},
					&cli.BoolFlag{Name: "s3-use-ssl", EnvVars: []string{"ARCHIVE_USE_SSL"}, Value: true},
					&cli.StringFlag{Name: "prefix", Usage: "Only objects under this prefix"},
					&cli.StringFlag{Name: "key", Usage: "A single object, relative to --prefix"},
				},
				Action: runFetch,
			},
			{
				Name:  "drive",
				Usage: "Import every CSV, XLSX or Google Sheet in a Drive folder",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "credentials",
						Usage:    "Service account key JSON",
						EnvVars:  []string{"GOOGLE_DRIVE_CREDENTIALS_JSON"},
						Required: true,
					},
					&cli.StringFlag{Name: "folder-id", EnvVars: []string{"GOOGLE_DRIVE_FOLDER_ID"}},
					&cli.StringFlag{Name: "folder-path", Usage: "Folder path from the Drive root, used when --folder-id is empty"},
				},
				Action: runDrive,
			},
			{
				Name:   "stats",
				Usage:  "Print the record count and dashboard summary as JSON",
				Action: runStats,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("importer failed")
	}
}

func runStats(c *cli.Context) error {
	d := depsFrom(c)
	return writeStats(c.Context, c.App.Writer, d.inventory, d.analytics)
}

// statsReport is what `stats` prints: the stored record count and the
// dashboard, or the no-data body when the store is empty.
type statsReport struct {
	Records   int64       `json:"records"`
	Dashboard interface{} `json:"dashboard"`
}

func writeStats(ctx context.Context, w io.Writer, inventory *service.InventoryService, analytics *service.AnalyticsService) error {
	count, err := inventory.Count(ctx)
	if err != nil {
		return err
	}

	report := statsReport{Records: count}
	stats, err := analytics.GetDashboard(ctx)
	switch {
	case errors.Is(err, domain.ErrNoData):
		report.Dashboard = map[string]string{"error": "No data available"}
	case err != nil:
		return err
	default:
		report.Dashboard = stats
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func logResult(res *domain.IngestResult) {
	log.Info().
		Str("run_id", res.RunID).
		Str("source", res.Source).
		Int("processed", res.Processed).
		Int("skipped", res.Skipped).
		Interface("skip_reasons", res.SkipReasons).
		Bool("truncated", res.Truncated).
		Dur("duration", res.Duration).
		Msg("Imported")
}
