package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"valora/server/config"
	"valora/server/internal/api"
	"valora/server/internal/database"
	"valora/server/internal/importer"
	"valora/server/internal/notify"
	"valora/server/internal/processor"
	"valora/server/internal/queue"
	"valora/server/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}

	db, err := database.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	studyRepo := database.NewStudyRepository(db)
	projectRepo := database.NewProjectRepository(db)
	unitRepo := database.NewUnitRepository(db)

	// Import pipeline: CSV uploads feed the queue, the processor drains it.
	unitQueue := queue.NewUnitQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(db, unitQueue, cfg, logger)
	batchProcessor.Start()
	unitQueue.Start()
	defer func() {
		unitQueue.Close()
		batchProcessor.Stop()
	}()

	csvImporter := importer.New(unitQueue, cfg.BatchProcessing.MaxBatchSize, logger)
	notifier := notify.NewService(*cfg, logger)

	digest := scheduler.NewScheduler(projectRepo, notifier, cfg.Digest.Hour, logger)
	digest.Start()
	defer digest.Stop()

	handler := api.NewHandler(studyRepo, projectRepo, unitRepo, csvImporter, notifier, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	api.SetupRoutes(router, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
