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

	"driveclone/config"
	"driveclone/jobs"
	"driveclone/repository"
	"driveclone/routes"
	"driveclone/services"
	"driveclone/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	// Load .env before reading configuration
	envPath, envErr := config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	switch {
	case envErr != nil:
		logger.Warn("could not load .env file", zap.Error(envErr))
	case envPath != "":
		logger.Info("loaded environment file", zap.String("path", envPath))
	default:
		logger.Info("no .env file found, using process environment")
	}

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.DatabaseName),
		zap.String("mongo_uri", config.MaskConnectionString(cfg.MongoURI)),
		zap.String("jwt_secret", utils.MaskSecret(cfg.JWTSecret)),
		zap.String("b2_key_id", utils.MaskSecret(cfg.B2ApplicationKeyID)),
		zap.String("b2_bucket", cfg.B2BucketName),
		zap.Bool("redis", cfg.RedisEnabled()),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
	)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize MongoDB client
	ctx, cancel := config.CreateContext(10 * time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, disconnectCancel := config.CreateContext(5 * time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Warn("failed to disconnect MongoDB", zap.Error(err))
		}
	}()

	if err := mongoClient.Ping(ctx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}
	logger.Info("connected to MongoDB")

	db := mongoClient.Database(cfg.DatabaseName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	deps := routes.Dependencies{
		Folders:       repository.NewFolderRepository(db),
		Files:         repository.NewFileRepository(db),
		Users:         repository.NewUserRepository(db),
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.JWTExpiration,
		MaxUploadSize: cfg.MaxUploadSize,
		Logger:        logger,
	}

	if cfg.B2Enabled() {
		b2Service, err := services.NewB2Service(ctx, cfg.B2ApplicationKeyID, cfg.B2ApplicationKey, cfg.B2BucketName, cfg.B2SignedURLTTL)
		if err != nil {
			logger.Fatal("failed to initialize B2", zap.Error(err))
		}
		deps.Blobs = b2Service
	} else {
		logger.Warn("B2 is not configured, uploads are disabled and blob deletes are skipped")
	}

	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		deps.Cache = services.NewRedisFolderCache(rdb, cfg.FolderCacheTTL)
		logger.Info("folder cache enabled", zap.Duration("ttl", cfg.FolderCacheTTL))
	}

	container := routes.NewServiceContainer(deps)
	router := routes.NewRouter(container, routes.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	scheduler := cron.New()
	if cfg.PathReconcileSchedule != "" {
		reconciler := jobs.NewPathReconciler(container.FolderService, 30*time.Minute, logger.Named("jobs"))
		if _, err := reconciler.Schedule(scheduler, cfg.PathReconcileSchedule); err != nil {
			logger.Fatal("failed to schedule path reconciler", zap.Error(err))
		}
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting DriveClone server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
