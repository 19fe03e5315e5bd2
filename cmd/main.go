package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"medfund/internal/adapter/document"
	"medfund/internal/adapter/http"
	"medfund/internal/adapter/identity"
	"medfund/internal/adapter/memory"
	"medfund/internal/adapter/postgres"
	"medfund/internal/adapter/settlement"
	"medfund/internal/adapter/usecase"
	"medfund/internal/config"
	"medfund/internal/core/port"
	"medfund/internal/db"
	"medfund/internal/scheduler"
)

// main is the entry point of the campaign engine. It loads configuration,
// selects the campaign store and the collaborators, then runs the HTTP server
// and the deadline sweeper until a termination signal arrives.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler).With(slog.String("env", cfg.Env))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	clock := clockwork.NewRealClock()

	var (
		repo    port.CampaignRepository
		journal port.SettlementLedger
	)
	if cfg.Store.Memory() {
		repo = memory.NewCampaignRepository()
		journal = settlement.NewJournal(clock)
		logger.Warn("using in-memory campaign store, state is lost on restart")
	} else {
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
				return
			}
			logger.Info("migrations applied successfully")
		}

		var pool *pgxpool.Pool
		pool, err = db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			return
		}
		defer pool.Close()

		repo = postgres.NewCampaignRepository(pool)
		journal = postgres.NewSettlementJournal(pool, clock)
	}

	if cfg.Settlement.URL != "" {
		journal = settlement.NewGateway(cfg.Settlement.URL, &http.Client{Timeout: cfg.Settlement.Timeout})
		logger.Info("using settlement gateway", slog.String("url", cfg.Settlement.URL))
	}

	var kyc port.IdentityService = identity.NewAddressSet(cfg.Identity.Verified...)
	if cfg.Identity.URL != "" {
		kyc = identity.NewClient(cfg.Identity.URL, &http.Client{Timeout: cfg.Identity.Timeout})
	}

	engine := usecase.NewEngine(usecase.Collaborators{
		Repo:       repo,
		Identity:   kyc,
		Access:     identity.NewAddressSet(cfg.Engine.Admins...),
		Settlement: journal,
	}, usecase.Options{
		ApprovalThreshold:  cfg.Engine.ApprovalThreshold,
		ApprovalQuorum:     cfg.Engine.ApprovalQuorum,
		SettlementPool:     cfg.Settlement.Pool,
		ReservationTimeout: cfg.Engine.ReservationTimeout,
		Retry: usecase.RetryPolicy{
			MaxRetries: cfg.Settlement.MaxRetries,
			BaseDelay:  cfg.Settlement.BaseDelay,
		},
	}, clock, logger)

	if cfg.Store.Seed {
		if err = db.Seed(ctx, repo, clock.Now()); err != nil {
			logger.Error("seed error", slog.Any("error", err))
			return
		}
		logger.Info("demo campaigns seeded")
	}

	files, err := document.NewFileStore(cfg.Documents.Dir, cfg.Documents.MaxBytes)
	if err != nil {
		logger.Error("document store error", slog.Any("error", err))
		return
	}

	handler := httpadapter.NewHandler(engine, usecase.NewDocuments(files, logger), logger, cfg.HTTP.RequestTimeout)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	sweeper := scheduler.NewSweeper(engine, cfg.Engine.SweepInterval, clock, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server gracefully stopped")
		return nil
	})

	if err = g.Wait(); err != nil {
		logger.Error("service stopped with error", slog.Any("error", err))
		return
	}
	exitCode = 0
}
