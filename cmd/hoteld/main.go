package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"

	"hotel-booking-backend/config"
	"hotel-booking-backend/internal/api"
	"hotel-booking-backend/internal/auth"
	"hotel-booking-backend/internal/db"
	"hotel-booking-backend/internal/logger"
	"hotel-booking-backend/internal/mw"
	"hotel-booking-backend/internal/notification"
	"hotel-booking-backend/internal/store"
	"hotel-booking-backend/internal/sweeper"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}

	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	log.Info().Str("path", configPath).Str("env", cfg.Env).Msg("configuration loaded")

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		log.Warn().Msg("VAPID keys are not configured; push notifications are disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	appStore := store.NewGormStore(gormDB)
	log.Info().Str("driver", cfg.Database.Driver).Msg("data store initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wp := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
	wp.Start(ctx)

	responseCache := mw.NewResponseCache(time.Duration(cfg.Server.CacheTTLSeconds) * time.Second)

	sweeperSvc := sweeper.NewService(cfg.Sweeper, appStore, wp)
	sweeperSvc.OnChange(responseCache.Flush)
	sweeperSvc.Start(ctx)

	jwtService := auth.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, 0)
	handler := api.NewHandler(appStore, webpushOptions, wp, api.Options{
		PreventOverlap: cfg.Bookings.PreventOverlap,
		Location:       cfg.Reports.Location,
	})

	router := api.NewRouter(ctx, cfg.Server, handler, jwtService, responseCache)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server ListenAndServe")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info().Msg("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server Shutdown")
	}

	cancel()
	sweeperSvc.Wait()
	wp.Wait()

	if err := appStore.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}

	log.Info().Msg("server gracefully stopped")
}
