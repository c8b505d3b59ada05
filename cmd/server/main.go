package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/plhub/epl-analytics/internal/api/handlers"
	"github.com/plhub/epl-analytics/internal/services"
	"github.com/plhub/epl-analytics/internal/store"
	"github.com/plhub/epl-analytics/pkg/config"
	"github.com/plhub/epl-analytics/pkg/database"
	"github.com/plhub/epl-analytics/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger("", cfg.IsDevelopment())
	logger.WithService("trajectory-engine").WithFields(logrus.Fields{
		"environment": cfg.Env,
		"port":        cfg.Port,
	}).Info("Starting trajectory engine service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Core services
	cacheService := services.NewCacheService(redisClient, log)
	narrativeClient := services.NewNarrativeClient(cfg, cacheService, log)
	playerStore := store.NewPlayerStore(db.DB)
	trajectoryService := services.NewTrajectoryService(playerStore, narrativeClient, cfg, log)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	trajectoryHandler := handlers.NewTrajectoryHandler(trajectoryService, log)
	healthHandler := handlers.NewHealthHandler(db.DB, cacheService, narrativeClient, log)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/players/:id/trajectory", trajectoryHandler.GetTrajectory)
		apiV1.POST("/players/compare", trajectoryHandler.ComparePlayers)
	}

	router.GET("/health", healthHandler.GetHealth)
	router.HEAD("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Trajectory engine service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down trajectory engine service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Trajectory engine service forced to shutdown: %v", err)
	}

	log.Info("Trajectory engine service exited")
}
