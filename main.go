package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/recipe-api-be/internal/api"
	"github.com/isdelr/recipe-api-be/internal/config"
	"github.com/isdelr/recipe-api-be/internal/database"
	"github.com/isdelr/recipe-api-be/internal/logger"
	"github.com/isdelr/recipe-api-be/internal/metrics"
	"github.com/isdelr/recipe-api-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Ensure the base directory for uploaded media exists
	if err := os.MkdirAll(cfg.MediaPath, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create media directory")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), time.Duration(cfg.DBWaitTries)*cfg.DBWaitDelay+5*time.Second)
	if err := database.WaitForReady(waitCtx, db, cfg.DBWaitTries, cfg.DBWaitDelay); err != nil {
		cancelWait()
		log.Fatal().Err(err).Msg("Database never became ready")
	}
	cancelWait()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	recipeService := services.NewRecipeService(db, cfg.MediaPath)
	tagService := services.NewTagService(db)
	ingredientService := services.NewIngredientService(db)

	// Set up metrics and router
	collector := metrics.NewCollector()
	router := api.NewRouter(userService, tokenService, recipeService, tagService, ingredientService, collector)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
