package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plz-territory-go/internal/auth"
	"plz-territory-go/internal/geodata"
	"plz-territory-go/internal/handler"
	"plz-territory-go/internal/metrics"
	"plz-territory-go/internal/region"
	"plz-territory-go/internal/storage"
	"plz-territory-go/pkg/config"
	"plz-territory-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "plz-territory")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL, logg)
	if err != nil {
		logg.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Load boundary data and seed regions from it
	dataset, err := geodata.Load(cfg.GeoJSONPath, cfg.PLZProperty)
	if err != nil {
		logg.Fatal("Failed to load boundary data", zap.String("path", cfg.GeoJSONPath), zap.Error(err))
	}

	// Initialize services
	m := metrics.NewMetrics()
	regionService := region.NewRegionService(db, logg.Named("region"), m)
	if _, err := regionService.Seed(ctx, dataset.UniqueCodes()); err != nil {
		logg.Fatal("Failed to seed regions", zap.Error(err))
	}

	authenticator := auth.NewAuthenticator(cfg.AdminPassword, cfg.AdminPasswordHash)
	authService := auth.NewAuthService(authenticator, cfg.JWTSecret, cfg.SessionTTL, logg.Named("auth"))

	// Initialize handlers
	router := &handler.Router{
		Auth:        handler.NewAuthHandler(authService, logg),
		Regions:     handler.NewRegionHandler(regionService, logg),
		Map:         handler.NewMapHandler(regionService, dataset, logg),
		Health:      handler.NewHealthHandler(db),
		Validator:   authService,
		Metrics:     m.Handler(),
		Observer:    m,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logg.Named("http"),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("Starting server", zap.String("port", cfg.Port), zap.Int("regions", len(dataset.Codes)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("Server shutdown failed", zap.Error(err))
	}
}
