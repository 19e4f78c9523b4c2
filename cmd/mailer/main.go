package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/chirotrack/backend/config"
	"github.com/chirotrack/backend/infra/queue"
	"github.com/chirotrack/backend/internal/mailer"
)

func main() {
	cfg := config.LoadMailerConfig()

	if cfg.KafkaBroker == "" {
		log.Fatal("KAFKA_BROKER is required")
	}

	svc := mailer.NewMailService(
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPassword,
		cfg.MailFrom,
		cfg.MailFromName,
	)

	consumer := queue.NewConsumer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		"Mail Service",
		svc,
	)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Mail Service listening on topic %s", cfg.KafkaTopic)
	consumer.Listen(ctx)
}
