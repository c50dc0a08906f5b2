package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/tourbook-backend/internal/config"
	"github.com/chachabrian/tourbook-backend/internal/logger"
	"github.com/chachabrian/tourbook-backend/internal/services"
	"github.com/chachabrian/tourbook-backend/pkg/utils"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Init(cfg.LogDir)

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

	consumer := services.NewAMQPConsumer(services.AMQPConsumerConfig{
		URL:         cfg.AMQPURL,
		Exchange:    cfg.AMQPExchange,
		Queue:       cfg.AMQPQueue,
		MaxAttempts: cfg.NotifyMaxAttempts,
		Prefetch:    cfg.NotifyPrefetch,
		RetryDelay:  cfg.NotifyRetryDelay,
	}, deliverer)

	for {
		if err := consumer.Connect(); err != nil {
			logger.Warning("[notify] connect failed: " + err.Error() + "; retry in 2s")
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Run(ctx); err != nil {
			logger.Error("[notify] run error", err)
		}
	}()

	logger.Success("[notify] started. queue=" + cfg.AMQPQueue + " exchange=" + cfg.AMQPExchange)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-done:
		logger.Warning("[notify] consumer stopped")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
