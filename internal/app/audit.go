package app

import (
	"encoding/json"
	"fmt"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"

	"storeapi/internal/models"
	"storeapi/pkg/rabbitmq"
)

// AuditHandler logs every product lifecycle event read from the queue.
func AuditHandler(logger *zap.Logger) rabbitmq.MessageHandler {
	return func(msg amqp.Delivery) error {
		var ev models.ProductEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("decode product event: %w", err)
		}
		if ev.Type == "" {
			ev.Type = msg.RoutingKey
		}
		logger.Info("product event",
			zap.String("type", ev.Type),
			zap.String("product_id", ev.ProductID),
			zap.String("name", ev.Name),
			zap.String("category", ev.Category),
			zap.String("price", ev.Price),
			zap.Time("occurred_at", ev.OccurredAt),
		)
		return nil
	}
}
