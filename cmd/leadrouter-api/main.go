package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"leadrouter/internal/catalog"
	"leadrouter/internal/config"
	"leadrouter/internal/enrich"
	server "leadrouter/internal/http"
	"leadrouter/internal/jobs"
	"leadrouter/internal/leads"
	"leadrouter/internal/migrate"
	"leadrouter/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.Load(*configPath)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))

	st := openStore(cfg, logger)

	queue := jobs.NewQueue(jobs.NewLedger(), jobs.NewRegistry(), logger)

	processor := leads.NewProcessor(
		catalog.NewBranches(cfg.Catalog.BranchFile, cfg.Catalog.DefaultBranchID, logger),
		catalog.NewModels(cfg.Catalog.ModelFile, logger),
		enrich.NewFromConfig(cfg.Enrichment, logger),
		logger,
	)
	runner := jobs.NewRunner(queue, jobs.Executors{
		leads.TaskKind: leads.NewExecutor(processor, st, logger),
	}, time.Duration(cfg.Worker.RetentionMinutes)*time.Minute, logger)

	srv := server.NewServer(cfg, queue, st, leads.NewValidator(cfg.Validation), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Start(gctx)
	})
	g.Go(func() error {
		return srv.Listen()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server failed: %v", err)
	}
	logger.Info("shutdown_complete")
}

// openStore returns the Postgres lead store when a DSN is configured,
// running migrations first, and the in-memory store otherwise.
func openStore(cfg *config.Config, logger *slog.Logger) store.LeadStore {
	if cfg.Database.DSN == "" {
		logger.Info("lead_store", "backend", "memory")
		return store.NewMemoryStore()
	}

	// Run migrations on a short-lived connection
	if err := migrate.Run(cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("lead_store", "backend", "postgres")
	return store.NewPostgres(db)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
