package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tableside_server/api"
	"tableside_server/config"
	"tableside_server/database"
	"tableside_server/messaging"
	"tableside_server/services"
	"tableside_server/structs"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var logger *gecho.Logger
var cfg *structs.Config

// init function to load environment variables and initialize logger and database
func init() {
	envErr := godotenv.Load()

	cfg = config.GetConfig()
	logger = config.InitializeLogger()

	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}

	if err := database.Initialize(); err != nil {
		logger.Fatal("Failed to initialize database", gecho.Field("error", err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.GetInstance()
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, logger); err != nil {
			logger.Fatal("Failed to migrate database", gecho.Field("error", err))
		}
	}

	publisher, err := messaging.NewPublisher(cfg.Events, logger)
	if err != nil {
		logger.Fatal("Failed to create event publisher", gecho.Field("error", err))
	}

	sm := services.NewServiceManager(logger, cfg, db, publisher)

	server := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        api.App(sm, cfg),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", gecho.Field("error", err))
	}

	shutdown(sm, publisher)
}

// shutdown releases everything in reverse order of creation
func shutdown(sm *services.ServiceManager, publisher messaging.Publisher) {
	if err := sm.Close(); err != nil {
		logger.Warn("Failed to close services", gecho.Field("error", err))
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("Failed to close event publisher", gecho.Field("error", err))
	}
	if err := database.CloseInstance(); err != nil {
		logger.Warn("Failed to close database", gecho.Field("error", err))
	}
	logger.Info("Shutdown complete")
}
