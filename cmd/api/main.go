package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/config"
	"github.com/chachabrian/tourbook-backend/internal/database"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/routes"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Init(cfg.LogDir)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}

	// Redis is optional; without it only Idempotency-Key headers dedupe bookings.
	var (
		rdb    *redis.Client
		dedupe services.DedupeStore
	)
	if cfg.RedisURL != "" {
		rdb, err = services.InitRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		dedupe = services.NewRedisDedupe(rdb)
		logger.Success("Redis connected")
	} else {
		logger.Warning("REDIS_URL not set. Booking de-duplication falls back to idempotency keys only")
	}

	store, err := services.NewStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", err)
	}

	hub := services.NewHub()
	go hub.Run()

	activity := services.NewAsyncActivityLogger(db)
	activity.Start()

	var queue services.NotificationQueue
	if cfg.AMQPURL != "" {
		publisher, err := services.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", err)
		}
		queue = publisher
		logger.Success("Publishing notifications to RabbitMQ exchange " + cfg.AMQPExchange)
	} else {
		deliverer := services.NewDeliverer(
			&utils.SMTPMailer{
				Host:        cfg.SMTPHost,
				Port:        cfg.SMTPPort,
				From:        cfg.EmailFrom,
				Password:    cfg.EmailPassword,
				CompanyName: cfg.CompanyName,
			},
			utils.NewATSender(cfg.ATUsername, cfg.ATAPIKey),
		)
		queue = services.NewDispatcher(deliverer, cfg.NotifyWorkers, cfg.NotifyMaxAttempts, cfg.NotifyRetryDelay)
		logger.Info("Delivering notifications in-process")
	}

	notifications := services.NewNotifications(db, queue, services.NotificationSettings{
		CompanyName: cfg.CompanyName,
		AdminEmail:  cfg.AdminNotifyEmail,
		FrontendURL: cfg.FrontendURL,
		SMSEnabled:  cfg.ATUsername != "" && cfg.ATAPIKey != "",
	})

	bookings := services.NewBookingService(db, services.BookingServiceDeps{
		Notifier:     notifications,
		Events:       hub,
		Activity:     activity,
		Dedupe:       dedupe,
		DedupeWindow: cfg.BookingDedupeWindow,
	})
	auth := services.NewAuthService(db, services.AuthServiceConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.JWTTTL(),
		ResetTokenTTL: cfg.ResetTokenTTL,
	}, notifications, activity)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"}
	r.Use(cors.New(corsConfig))
	r.MaxMultipartMemory = 32 << 20

	if !cfg.UseS3() {
		r.Static("/uploads", cfg.UploadDir)
	}

	routes.SetupRoutes(r, routes.Deps{
		DB:                    db,
		Redis:                 rdb,
		JWTSecret:             cfg.JWTSecret,
		Bookings:              bookings,
		Auth:                  auth,
		Notifications:         notifications,
		Storage:               store,
		Activity:              activity,
		Hub:                   hub,
		ActivityRetentionDays: cfg.ActivityRetentionDays,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Success("Server listening on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", err)
	}

	hub.Stop()
	if err := queue.Close(); err != nil {
		logger.Error("Failed to close notification queue", err)
	}
	activity.Stop()
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
