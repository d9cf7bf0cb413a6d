package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"trellolite/internal/config"
	"trellolite/internal/logger"
	"trellolite/internal/notify"
)

// notifier consumes user.registered events and sends the welcome mail
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  .env file not found, using environment only: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer zl.Sync()

	if cfg.MQURL == "" {
		zl.Fatal("MQ_URL is required for the notifier")
	}

	var mailer notify.Mailer = notify.NewLogMailer(zl)
	if cfg.SMTPAddr != "" {
		smtpMailer, err := notify.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			zl.Fatal("Failed to init SMTP mailer", zap.Error(err))
		}
		mailer = smtpMailer
	} else {
		zl.Warn("SMTP_ADDR not set, welcome mail will only be logged")
	}

	consumer, err := notify.NewConsumer(cfg.MQURL, mailer, zl)
	if err != nil {
		zl.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl.Info("notifier started", zap.String("queue", notify.WelcomeQueue))
	if err := consumer.Run(ctx); err != nil {
		zl.Error("consumer stopped", zap.Error(err))
		return
	}
	zl.Info("notifier shutdown complete")
}
