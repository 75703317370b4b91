package rabbitmq_consumer

import (
	"fmt"

	"property-search-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig конфигурация потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Очередь
	QueueName       string // пустое имя сгенерирует сервер
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table

	// Обменник для привязки (пустое имя - без привязки)
	ExchangeNameForBind    string
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	RoutingKeyForBind      string

	// QoS, 0 - без ограничений
	PrefetchCount int

	ConsumerTag string

	// Ретраи через wait-очередь с TTL и финальную DLQ
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // мс
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	// Размер пула обработчиков
	Workers int

	Logger rabbitmq_common.Logger
}

func (c ConsumerConfig) validate() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if !c.DeclareQueue && c.QueueName == "" {
		return fmt.Errorf("queue name is required if DeclareQueue is false")
	}
	if c.DeclareExchangeForBind && (c.ExchangeNameForBind == "" || c.ExchangeTypeForBind == "") {
		return fmt.Errorf("exchange name and type are required to declare an exchange for binding")
	}
	if c.EnableRetryMechanism {
		if c.RetryExchange == "" || c.RetryQueue == "" || c.FinalDLXExchange == "" || c.FinalDLQ == "" {
			return fmt.Errorf("retry exchange, retry queue, final DLX and final DLQ are required when retries are enabled")
		}
		if c.RetryTTL <= 0 {
			return fmt.Errorf("retry TTL must be positive, got %d", c.RetryTTL)
		}
		if c.MaxRetries < 0 {
			return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
		}
	}
	return nil
}

func (c ConsumerConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if c.PrefetchCount > 0 {
		return c.PrefetchCount
	}
	return 1
}
