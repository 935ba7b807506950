package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prizewheel/internal/config"
	"prizewheel/internal/handlers"
	"prizewheel/internal/notify"
	"prizewheel/internal/services"
	"prizewheel/internal/storage"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"
)

//go:embed all:templates
var templateFS embed.FS

// demoCompanyID owns the seeded demo campaign.
const demoCompanyID = "demo"

func main() {
	// 1. Load configuration and set up logging
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	var logFile io.Writer = io.Discard
	if cfg.LogFile != "" {
		logFile = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     10,
			Compress:   true,
		}
	}
	defer logger.Init("prizewheel", cfg.Debug, false, logFile).Close()

	// 2. Open the database
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if cfg.SeedDemo {
		created, err := store.SeedDemo(demoCompanyID)
		if err != nil {
			logger.Fatalf("Failed to seed demo campaign: %v", err)
		}
		if created {
			logger.Infof("Seeded demo campaign %s", storage.DemoSlug)
		}
	}

	// 3. Initialize the services
	announcer, err := services.NewAnnouncer(store, notify.NewWebhook(cfg.WebhookURL, cfg.WebhookTimeout), cfg.NotifyWorkers, cfg.WebhookTimeout)
	if err != nil {
		logger.Fatalf("Failed to start notification pool: %v", err)
	}
	defer announcer.Close()

	spinService := services.NewSpinService(nil, services.WithRevealHook(announcer.OnReveal))
	campaignService := services.NewCampaignService(store, cfg.CacheTTL)
	leadService := services.NewLeadService(store)

	// 4. Load HTML templates from the embedded filesystem.
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		logger.Fatalf("Failed to parse templates: %v", err)
	}

	// 5. Initialize the HTTP Handler
	profiles := handlers.WheelProfiles{
		Campaign: services.Wheel{MinimumTurns: cfg.CampaignTurns, Duration: cfg.CampaignSpinDuration},
		Demo:     services.Wheel{MinimumTurns: cfg.DemoTurns, Duration: cfg.DemoSpinDuration},
	}
	httpHandler := handlers.NewHTTPHandler(campaignService, leadService, spinService, profiles, templates)

	// 6. Set up the Gin router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Debug {
		r.Use(gin.Logger())
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(handlers.SessionMiddleware([]byte(cfg.SessionSecret), !cfg.Debug))
	httpHandler.RegisterRoutes(r)

	// 7. Start the background janitor to clean up inactive sessions
	janitor := cron.New()
	if _, err := janitor.AddFunc(cfg.JanitorSpec, func() {
		removed := spinService.CleanUpInactiveSessions(cfg.SessionTTL)
		logger.Infof("Performed cleanup of inactive sessions, removed %d.", removed)
	}); err != nil {
		logger.Fatalf("Invalid janitor schedule %q: %v", cfg.JanitorSpec, err)
	}
	janitor.Start()
	defer janitor.Stop()

	// 8. Run the server until interrupted
	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
}
