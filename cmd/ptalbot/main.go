package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	discordadapter "github.com/ericfisherdev/ptalbot/internal/adapter/driven/discord"
	githubadapter "github.com/ericfisherdev/ptalbot/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/ptalbot/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/ptalbot/internal/adapter/driving/http"
	"github.com/ericfisherdev/ptalbot/internal/application"
	"github.com/ericfisherdev/ptalbot/internal/config"
	"github.com/ericfisherdev/ptalbot/internal/domain/model"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (.env first, then fail fast on missing required env vars).
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"sweep_delay", cfg.SweepDelay,
		"sweep_on_startup", cfg.SweepOnStartup,
		"sync_action", cfg.SyncAction,
		"admin_api", cfg.HasAdminAPI(),
		"github_auth", cfg.GitHubToken != "",
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	ptalStore := sqliteadapter.NewPTALRepo(db)
	registrationStore := sqliteadapter.NewRegistrationRepo(db)
	guildStore := sqliteadapter.NewGuildRepo(db)

	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	chat, err := discordadapter.NewClient(cfg.DiscordToken, slog.Default())
	if err != nil {
		return err
	}
	if err := chat.Open(); err != nil {
		return err
	}
	defer func() {
		if closeErr := chat.Close(); closeErr != nil {
			slog.Error("error closing discord session", "error", closeErr)
		}
	}()
	slog.Info("discord gateway connected")

	// 6. Create application services.
	reconciler := application.NewReconcileService(ptalStore, guildStore, ghClient, chat)
	ptalSvc := application.NewPTALService(ptalStore, guildStore, ghClient, chat)
	crowdinSvc := application.NewCrowdinSyncService(registrationStore, ghClient, ptalSvc, cfg.SyncAction)
	sweepSvc := application.NewSweepService(ptalStore, reconciler, cfg.SweepDelay)
	guildSvc := application.NewGuildService(guildStore, chat)

	bus := application.NewEventBus()
	bus.Subscribe(model.EventRepositoryDispatch, "crowdin-sync", crowdinSvc.HandleEvent)

	webhookSvc := application.NewWebhookService(reconciler, bus)

	// Long-running goroutines that use the database; drained before it closes.
	var background application.Background

	// 7. Bring the guild table in line with the gateway, then follow join/leave events.
	if err := guildSvc.SyncGuilds(ctx); err != nil {
		slog.Error("initial guild sync failed", "error", err)
	}
	background.Go(func() {
		application.Supervise(ctx, "guild-events", cfg.RetryDelay, func(ctx context.Context) error {
			return guildSvc.Run(ctx, chat.Events())
		})
	})

	// 8. Catch up on messages that went stale while the process was down.
	if cfg.SweepOnStartup {
		background.Go(func() {
			if _, err := sweepSvc.Sweep(ctx); err != nil && ctx.Err() == nil {
				slog.Error("startup sweep failed", "error", err)
			}
		})
	}

	// 9. Create HTTP handler with webhook and admin routes.
	apiHandler := httphandler.NewHandler(httphandler.Deps{
		Webhooks:      webhookSvc,
		Reviews:       ptalSvc,
		Sweeper:       sweepSvc,
		PTALs:         ptalStore,
		Registrations: registrationStore,
		Guilds:        guildStore,
		DB:            db,
	}, cfg.WebhookSecret, cfg.AdminToken, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("ptalbot started", "listen_addr", cfg.ListenAddr)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 11. Graceful shutdown: stop accepting webhooks, then drain in-flight
	// handlers and background work before the database and gateway close.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	if err := webhookSvc.Wait(shutdownCtx); err != nil {
		slog.Warn("webhook handlers still running at shutdown", "error", err)
	}
	if err := background.Wait(shutdownCtx); err != nil {
		slog.Warn("background work still running at shutdown", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
