package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// NotificationQueue is the durable queue downstream senders consume from
const NotificationQueue = "schedule.notifications"

// AMQPNotifier hands outbox messages to RabbitMQ instead of sending them
type AMQPNotifier struct {
	conn   *amqp.Connection
	queue  string
	logger logger.Logger
}

// NewAMQPNotifier declares the queue and returns the notifier
func NewAMQPNotifier(conn *amqp.Connection, queue string, logger logger.Logger) (repository.NotificationRepository, error) {
	if queue == "" {
		queue = NotificationQueue
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &AMQPNotifier{
		conn:   conn,
		queue:  queue,
		logger: logger,
	}, nil
}

// Send publishes one persistent JSON message. Channels are not safe for
// concurrent use, so each send opens its own.
func (n *AMQPNotifier) Send(ctx context.Context, message *entity.OutboundMessage) (string, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return "", fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    message.ID,
		Type:         string(message.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	n.logger.Debug("Notification published", "queue", n.queue, "id", message.ID, "transactionID", message.TransactionID)
	return message.ID, nil
}
