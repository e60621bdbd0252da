package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher is the subset of RabbitClient the sink needs.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte, headers amqp.Table, contentType string, persistent bool) error
}

// AMQPSink publishes notifications as persistent JSON to a fanout exchange,
// where a mail worker picks them up.
type AMQPSink struct {
	Publisher Publisher
	Exchange  string
	Source    string
}

func (s AMQPSink) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	headers := amqp.Table{
		"x-source":     s.Source,
		"x-message-id": uuid.New().String(),
	}
	if err := s.Publisher.Publish(ctx, s.Exchange, "", body, headers, "application/json", true); err != nil {
		return fmt.Errorf("publish to %s: %w", s.Exchange, err)
	}
	log.WithFields(logrus.Fields{
		"exchange": s.Exchange,
		"order_id": msg.OrderID,
	}).Debug("Notification published")
	return nil
}
