package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agripulse/agripulse/internal/assembly"
	"github.com/agripulse/agripulse/internal/config"
	"github.com/agripulse/agripulse/internal/db"
	"github.com/agripulse/agripulse/internal/delivery"
	"github.com/agripulse/agripulse/internal/dispatch"
	"github.com/agripulse/agripulse/internal/handlers"
	"github.com/agripulse/agripulse/internal/provider"
	"github.com/agripulse/agripulse/internal/repo"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		log.Fatal("JWT_SECRET must be set in prod")
	}

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer database.Close()

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	slog.Info("database ready", "host", cfg.DBHost, "name", cfg.DBName)

	userRepo := repo.NewUserRepo(database)
	farmRepo := repo.NewFarmRepo(database)
	scheduleRepo := repo.NewScheduleRepo(database)
	reportRepo := repo.NewReportRepo(database)
	inboundRepo := repo.NewInboundRepo(database)

	// Provider clients are built once here and shared.
	blobs := &provider.DirBlobStore{Dir: cfg.MediaDir, BaseURL: cfg.MediaBaseURL}
	ai := provider.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAITTSVoice, blobs)
	messenger := provider.NewTwilioMessenger(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
	meteo := provider.NewOpenMeteo()

	pipeline := &assembly.Pipeline{
		Snapshots:       meteo,
		Generator:       ai,
		Scripts:         ai,
		Speech:          ai,
		Reports:         reportRepo,
		GenerateTimeout: cfg.GenerateTimeout,
		EnrichTimeout:   cfg.EnrichTimeout,
		Logger:          slog.Default(),
	}

	dispatcher := &dispatch.Dispatcher{
		Schedules: scheduleRepo,
		Reports:   reportRepo,
		Farms:     farmRepo,
		Users:     userRepo,
		Assembler: pipeline,
		Sender:    &delivery.Channel{Messenger: messenger, Logger: slog.Default()},
		Interval:  cfg.ScanInterval,
		Freshness: cfg.ReportFreshness,
		Logger:    slog.Default(),
	}
	dispatcher.Start()
	defer dispatcher.Stop()

	router := newRouter(cfg, routerDeps{
		Auth: &handlers.AuthHandler{
			UserRepo: userRepo,
			Secret:   []byte(cfg.JWTSecret),
			ExpireIn: time.Duration(cfg.JWTExpireHours) * time.Hour,
		},
		Farms:     &handlers.FarmHandler{Repo: farmRepo},
		Schedules: &handlers.ScheduleHandler{Repo: scheduleRepo, Farms: farmRepo},
		Reports: &handlers.ReportHandler{
			Reports:   reportRepo,
			Farms:     farmRepo,
			Users:     userRepo,
			Assembler: pipeline,
		},
		Webhook: &handlers.WebhookHandler{Users: userRepo, Inbound: inboundRepo},
		Inbound: &handlers.InboundHandler{Repo: inboundRepo},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown", "error", err)
	}
}
