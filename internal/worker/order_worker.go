package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var errInvalidMessage = errors.New("order message has no customer email")

// ChannelConsumer is the consuming half of *amqp.Channel.
type ChannelConsumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// OrderWorker keeps the customer directory up to date from order-placed
// events.
type OrderWorker struct {
	channel   ChannelConsumer
	customers repository.CustomerRepository
	processed IdempotencyStore
	log       *slog.Logger
	now       func() time.Time

	started  bool
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewOrderWorker(
	ch ChannelConsumer,
	customers repository.CustomerRepository,
	processed IdempotencyStore,
	log *slog.Logger,
) *OrderWorker {
	if log == nil {
		log = slog.Default()
	}
	return &OrderWorker{
		channel:   ch,
		customers: customers,
		processed: processed,
		log:       log,
		now:       time.Now,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (w *OrderWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderPlacedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	w.started = true
	go func() {
		defer close(w.stopped)
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("order worker started", "queue", orderPlacedQueue)
	return nil
}

// Stop ends the consume loop and waits for the message in flight.
func (w *OrderWorker) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
	if w.started {
		<-w.stopped
	}
}

func (w *OrderWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var orderMsg model.OrderMessage
	if err := json.Unmarshal(msg.Body, &orderMsg); err != nil {
		w.log.Error("unmarshal order message", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("order_id", orderMsg.OrderID)

	seen, err := w.processed.Seen(ctx, orderMsg.OrderID)
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if seen {
		log.Info("order already processed, skipping")
		_ = msg.Ack(false)
		return
	}

	if err := w.upsertCustomer(ctx, orderMsg.User); err != nil {
		log.Error("process order failed", "error", err)
		_ = msg.Nack(false, false) // dead-lettered
		return
	}

	if err := w.processed.Mark(ctx, orderMsg.OrderID); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order processed successfully")
}

func (w *OrderWorker) upsertCustomer(ctx context.Context, user model.OrderUser) error {
	email := model.NormalizeEmail(user.Email)
	if email == "" {
		return errInvalidMessage
	}
	if err := w.customers.Upsert(ctx, &model.Customer{
		Email:     email,
		Name:      user.Name,
		Tel:       user.Tel,
		Address:   user.Address,
		UpdatedAt: w.now().UTC(),
	}); err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}
	return nil
}
