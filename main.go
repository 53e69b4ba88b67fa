package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"epaper-app/config"
	"epaper-app/database"
	routes "epaper-app/internal/app/http"
	"epaper-app/internal/app/http/middleware"
	"epaper-app/internal/editions"
	"epaper-app/internal/infra/lock"
	"epaper-app/internal/infra/storage"
	"epaper-app/internal/jobs"
	"epaper-app/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logging, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()
	zap.ReplaceGlobals(logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store
	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logging.Warn("using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		db, err := database.Open(cfg.DBURL, logging)
		if err != nil {
			logging.Fatal("Failed to connect to database", zap.Error(err))
		}
		st = store.NewGormStore(db)
	}

	// Edition lock
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rl, err := lock.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, "epaper", cfg.EditionLockTTL, cfg.EditionLockTTL, logging)
		if err != nil {
			logging.Fatal("Redis locker creation failed", zap.Error(err))
		}
		defer rl.Close()
		locker = rl
		logging.Info("edition lock backed by redis", zap.String("addr", cfg.RedisAddr))
	}

	// Page images
	var images storage.ImageDeleter = storage.NoopDeleter{}
	if cfg.StorageEnabled() {
		client, err := storage.NewS3Client(ctx, storage.S3Settings{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		images = storage.NewS3Deleter(client, cfg.S3Bucket, logging)
	}

	svc := editions.NewService(st, images, locker, logging, editions.Options{
		MaxPageNo:         cfg.PageNoMax,
		StaleTargetPolicy: cfg.StaleTargetPolicy,
		BulkDeleteMax:     cfg.BulkDeleteMax,
	})

	// Cron
	if cfg.AuditSchedule != "" {
		scheduler, err := jobs.NewScheduler(cfg.AuditSchedule, svc, logging)
		if err != nil {
			logging.Fatal("Invalid AUDIT_SCHEDULE", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logging))

	if cfg.CORSOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{cfg.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(r, svc, cfg.JWTSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
