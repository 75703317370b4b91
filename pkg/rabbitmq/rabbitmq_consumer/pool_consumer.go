package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"property-search-service/pkg/rabbitmq/rabbitmq_common"
	"property-search-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. ack/nack делает потребитель.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// PoolConsumer читает очередь и раздает сообщения ограниченному пулу горутин.
type PoolConsumer struct {
	config    ConsumerConfig
	handler   MessageHandler
	queueName string

	connection        *amqp.Connection
	channel           *amqp.Channel
	finalDlxPublisher *rabbitmq_producer.Publisher

	pool *ants.Pool
	wg   sync.WaitGroup

	Logger rabbitmq_common.Logger
}

// NewPoolConsumer объявляет топологию и создает пул обработчиков.
func NewPoolConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*PoolConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("pool consumer: message handler is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("pool consumer: %w", err)
	}

	c := &PoolConsumer{
		config:  cfg,
		handler: handler,
		Logger:  rabbitmq_common.OrNoop(cfg.Logger),
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("pool consumer: failed to get channel from manager: %w", err)
	}
	c.connection = conn
	c.channel = ch

	c.queueName, err = declareTopology(ch, cfg, c.Logger)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("pool consumer: setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.finalDlxPublisher, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       c.Logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("pool consumer: failed to create final DLX publisher: %w", err)
		}
	}

	c.pool, err = ants.NewPool(cfg.workers(), ants.WithPanicHandler(func(p interface{}) {
		c.Logger.Error(fmt.Errorf("panic: %v", p), "Message handler panicked")
	}))
	if err != nil {
		_ = c.closeChannels()
		return nil, fmt.Errorf("pool consumer: failed to create worker pool: %w", err)
	}

	return c, nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения.
func (c *PoolConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("pool consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.queueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("pool consumer %s: failed to register a consumer on queue '%s': %w", c.config.ConsumerTag, c.queueName, err)
	}

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	c.Logger.Info("[*] Waiting for messages", "queue_name", c.queueName, "workers", c.pool.Cap())

	// обработчики не должны обрываться вместе с отменой приема
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, stopping consumption", "consumer_tag", c.config.ConsumerTag)
			return nil

		case amqpErr, ok := <-notifyClose:
			if !ok || amqpErr == nil {
				return fmt.Errorf("pool consumer %s: connection closed", c.config.ConsumerTag)
			}
			c.Logger.Error(amqpErr, "Connection closed", "consumer_tag", c.config.ConsumerTag)
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed by RabbitMQ", "consumer_tag", c.config.ConsumerTag)
				return nil
			}
			c.dispatch(handlerCtx, d)
		}
	}
}

// dispatch блокируется, пока в пуле нет свободного воркера.
func (c *PoolConsumer) dispatch(ctx context.Context, d amqp.Delivery) {
	c.wg.Add(1)
	err := c.pool.Submit(func() {
		defer c.wg.Done()
		c.process(ctx, d)
	})
	if err != nil {
		c.wg.Done()
		c.Logger.Error(err, "Failed to submit message to worker pool, requeueing", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, true)
	}
}

func (c *PoolConsumer) process(ctx context.Context, d amqp.Delivery) {
	c.Logger.Debug("[->] Processing message", "delivery_tag", d.DeliveryTag)

	handlerErr := c.handler(ctx, d)
	deaths := deathCount(d.Headers, c.queueName)
	action := decide(handlerErr, c.config.EnableRetryMechanism, deaths, c.config.MaxRetries)

	if handlerErr != nil {
		c.Logger.Error(handlerErr, "Handler error",
			"delivery_tag", d.DeliveryTag,
			"death_count", deaths,
			"action", action.String())
	}

	switch action {
	case dispositionAck:
		_ = d.Ack(false)
		c.Logger.Debug("[+] Message acked", "delivery_tag", d.DeliveryTag)
	case dispositionDrop, dispositionRetry:
		_ = d.Nack(false, false)
	case dispositionDeadLetter:
		c.deadLetter(ctx, d)
	}
}

func (c *PoolConsumer) deadLetter(ctx context.Context, d amqp.Delivery) {
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := c.finalDlxPublisher.Publish(publishCtx, c.config.FinalDLQRoutingKey, amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		Headers:      d.Headers,
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
	})
	if err != nil {
		// не удалось положить в DLQ - пусть пройдет еще один круг ретрая
		c.Logger.Error(err, "Failed to publish to final DLX", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
		return
	}
	c.Logger.Info("Message moved to final DLQ", "delivery_tag", d.DeliveryTag, "dlq", c.config.FinalDLQ)
	_ = d.Ack(false)
}

// Close дожидается обработчиков и освобождает пул и каналы.
func (c *PoolConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()
	if c.pool != nil {
		c.pool.Release()
	}
	err := c.closeChannels()
	c.Logger.Info("Consumer closed")
	return err
}

func (c *PoolConsumer) closeChannels() error {
	var firstErr error
	if c.finalDlxPublisher != nil {
		if err := c.finalDlxPublisher.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			if firstErr == nil {
				firstErr = err
			}
		}
		c.channel = nil
	}
	return firstErr
}
