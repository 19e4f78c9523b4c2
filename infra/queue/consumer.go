package queue

import (
	"context"
	"crypto/tls"
	"log"
	"time"

	"github.com/chirotrack/backend/internal/interfaces"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type Consumer struct {
	Reader      *kafka.Reader
	Handler     interfaces.ConsumerHandler
	ServiceName string
}

func NewConsumer(broker, topic, groupID, username, password, serviceName string, handler interfaces.ConsumerHandler) *Consumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	if username != "" {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{
			Username: username,
			Password: password,
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return &Consumer{
		Reader:      reader,
		Handler:     handler,
		ServiceName: serviceName,
	}
}

func (c *Consumer) Listen(ctx context.Context) {
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[%s] read error: %v\n", c.ServiceName, err)
			continue
		}

		if err := c.Handler.HandleMessage(msg.Key, msg.Value); err != nil {
			log.Printf("[%s] handler error: %v\n", c.ServiceName, err)
		}
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.Reader == nil {
		return nil
	}
	return c.Reader.Close()
}
