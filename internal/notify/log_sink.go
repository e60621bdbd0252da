package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSink writes notifications to the application log. It is used when no
// broker is configured.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Send(ctx context.Context, msg Message) error {
	logger := s.Logger
	if logger == nil {
		logger = log
	}
	logger.WithFields(logrus.Fields{
		"to":       msg.To,
		"subject":  msg.Subject,
		"order_id": msg.OrderID,
		"status":   msg.Status,
	}).Info("Notification sent")
	return nil
}
