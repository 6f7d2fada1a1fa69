package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/storefront-api/internal/model"
)

const (
	orderPlacedQueue = "orders.placed"
	dlxExchange      = "orders.dlx"
	dlqQueueName     = "orders.dlq"
)

// SetupRabbitMQ declares the order-placed queue and its dead-letter queue.
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderPlacedQueue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderPlacedQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderPlacedQueue,
	}); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

// ChannelPublisher is the publishing half of *amqp.Channel.
type ChannelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	channel ChannelPublisher
	now     func() time.Time
}

func NewPublisher(ch ChannelPublisher) *Publisher {
	return &Publisher{channel: ch, now: time.Now}
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, msg model.OrderMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal order message: %w", err)
	}
	err = p.channel.PublishWithContext(ctx, "", orderPlacedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.OrderID,
		Timestamp:    p.now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish order %s: %w", msg.OrderID, err)
	}
	return nil
}
