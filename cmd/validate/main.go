package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hemicycle/internal/ledger/metrics"
	"hemicycle/internal/ledger/report"
	"hemicycle/internal/ledger/service"
	"hemicycle/internal/ledger/store"
	"hemicycle/internal/platform/config"
	"hemicycle/internal/platform/logger"
)

// validate runs a single validation pass against the configured ledger and
// exits non-zero when the ledger fails. Intended for CI and cron use; the
// long-running API lives in cmd/server.
func main() {
	cfg := config.FromEnv()

	dataDir := flag.String("data", cfg.Data.Dir, "directory holding the ledger CSV tables")
	databaseURL := flag.String("db", cfg.Data.DatabaseURL, "Postgres DSN; overrides -data when set")
	diagnosticsDir := flag.String("diagnostics", cfg.Diagnostics.Dir, "directory for evidence tables; empty disables them")
	workers := flag.Int("workers", 0, "per-period parallelism; 0 uses the default")
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	var source store.RecordSource
	if *databaseURL != "" {
		pg, err := store.OpenPostgres(ctx, *databaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(2)
		}
		defer pg.Close()
		source = pg
	} else {
		source = store.NewCSVSource(*dataDir)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
	}
	if *diagnosticsDir != "" {
		opts = append(opts, service.WithDiagnosticsSink(report.NewFileSink(*diagnosticsDir), report.AllFlags()))
	}
	if *workers > 0 {
		opts = append(opts, service.WithWorkers(*workers))
	}

	svc, err := service.New(source, opts...)
	if err != nil {
		log.Error("failed to build validation service", "error", err)
		os.Exit(2)
	}

	rep, err := svc.Run(ctx)
	if err != nil {
		log.Error("validation run aborted", "error", err)
		os.Exit(2)
	}

	counts := rep.Counts()
	fmt.Printf("run %s: periods=%d conflicts=%d out_of_range=%d missing=%d row_errors=%d\n",
		rep.RunID, rep.PeriodCount, counts.Conflicts, counts.OutOfRange, counts.Missing, counts.RowErrors)

	if !rep.Pass() {
		os.Exit(1)
	}
}
