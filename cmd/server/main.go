package main // Entry point package

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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/theatre-production/internal/config"
	"github.com/iliyamo/theatre-production/internal/database"
	"github.com/iliyamo/theatre-production/internal/handler"
	"github.com/iliyamo/theatre-production/internal/logging"
	"github.com/iliyamo/theatre-production/internal/middleware"
	"github.com/iliyamo/theatre-production/internal/queue"
	"github.com/iliyamo/theatre-production/internal/router"
	"github.com/iliyamo/theatre-production/internal/service"
	"github.com/iliyamo/theatre-production/internal/webhook"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "theatre",
		Short:         "Production manager for amateur theatre groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; the environment may be set directly.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", envFile, err)
			}
			logging.Setup()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	serve := newServeCmd()
	root.AddCommand(serve, newMigrateCmd())
	// Running the binary without a subcommand serves.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, dialect, err := database.Open(config.LoadDB())
			if err != nil {
				slog.Error("open database", "error", err)
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := database.Migrate(ctx, db, dialect); err != nil {
				slog.Error("migrate", "error", err)
				return err
			}
			slog.Info("schema up to date", "dialect", dialect)
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, migrate); err != nil {
				slog.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg := config.Load()
	logger := slog.Default()

	db, dialect, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	dal := database.New(db, dialect, database.Options{
		Timeout:       cfg.DB.QueryTimeout,
		RetryAttempts: cfg.DB.RetryAttempts,
		RetryBackoff:  cfg.DB.RetryBackoff,
	})

	engine := service.NewEngine(dal, logger)
	identity := service.NewIdentity(dal, service.IdentityConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cacheCfg := config.LoadCacheConfig()

	if cfg.Webhook.Secret == "" {
		logger.Warn("W_SECRET is not set; every webhook delivery will be rejected")
	}
	verifier := webhook.NewVerifier()
	puller := webhook.NewPuller(cfg.Webhook.RepoDir, cfg.Webhook.Remote, cfg.Webhook.Branch, cfg.Webhook.PullTimeout)
	logger.Info("deployment webhook configured",
		"repo_dir", puller.Dir(),
		"remote", puller.Remote(),
		"branch", puller.Branch(),
		"algorithms", verifier.Algorithms(),
	)
	wh := &handler.WebhookHandler{
		Verifier:  verifier,
		Puller:    puller,
		Publisher: service.NewPublisher(cfg.RabbitURL, logger),
		Secret:    []byte(cfg.Webhook.Secret),
		MaxBody:   cfg.Webhook.MaxBody,
		Log:       logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(identity, cfg.JWTSecret), cfg.JWTSecret, limiter)
	router.RegisterCasting(e, handler.NewCastingHandler(engine), cfg.JWTSecret,
		middleware.NewRedisCache(cacheCfg, rdb), middleware.InvalidateOnWrite(cacheCfg, rdb))
	router.RegisterWebhook(e, wh, limiter)

	if cfg.RabbitURL != "" {
		go func() {
			if err := queue.StartDeployConsumer(ctx, cfg.RabbitURL, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("deploy consumer stopped", "error", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "dialect", dialect)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
