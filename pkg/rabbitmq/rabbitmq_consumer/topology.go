package rabbitmq_consumer

import (
	"fmt"

	"property-search-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// topologyChannel - часть *amqp.Channel, нужная для объявления сущностей.
type topologyChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

// declareTopology настраивает QoS, очередь, привязку и инфраструктуру ретраев.
// Возвращает фактическое имя очереди.
func declareTopology(ch topologyChannel, cfg ConsumerConfig, logger rabbitmq_common.Logger) (string, error) {
	if cfg.PrefetchCount > 0 {
		logger.Debug("Setting QoS", "prefetch_count", cfg.PrefetchCount)
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return "", fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	queueArgs := amqp.Table{}
	for k, v := range cfg.QueueArgs {
		queueArgs[k] = v
	}
	if cfg.EnableRetryMechanism {
		// отвергнутые сообщения основной очереди уходят в retry-обменник
		queueArgs["x-dead-letter-exchange"] = cfg.RetryExchange
	}

	queueName := cfg.QueueName
	if cfg.DeclareQueue {
		logger.Debug("Declaring queue", "name", cfg.QueueName, "durable", cfg.DurableQueue)
		q, err := ch.QueueDeclare(cfg.QueueName, cfg.DurableQueue, cfg.AutoDeleteQueue, cfg.ExclusiveQueue, false, queueArgs)
		if err != nil {
			return "", fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
		}
		queueName = q.Name
	}

	if cfg.DeclareExchangeForBind {
		logger.Debug("Declaring exchange", "name", cfg.ExchangeNameForBind, "type", cfg.ExchangeTypeForBind)
		err := ch.ExchangeDeclare(cfg.ExchangeNameForBind, cfg.ExchangeTypeForBind, cfg.DurableExchangeForBind, false, false, false, nil)
		if err != nil {
			return "", fmt.Errorf("failed to declare exchange '%s' for binding: %w", cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.ExchangeNameForBind != "" {
		logger.Debug("Binding queue to exchange",
			"queue_name", queueName,
			"exchange_name", cfg.ExchangeNameForBind,
			"routing_key", cfg.RoutingKeyForBind,
		)
		if err := ch.QueueBind(queueName, cfg.RoutingKeyForBind, cfg.ExchangeNameForBind, false, nil); err != nil {
			return "", fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", queueName, cfg.ExchangeNameForBind, err)
		}
	}

	if cfg.EnableRetryMechanism {
		if err := declareRetryTopology(ch, cfg, logger); err != nil {
			return "", err
		}
	}

	logger.Debug("Setup complete", "queue", queueName)
	return queueName, nil
}

// declareRetryTopology: финальные DLX/DLQ и fanout retry-обменник с wait-очередью,
// которая по истечении TTL возвращает сообщение в основной обменник.
func declareRetryTopology(ch topologyChannel, cfg ConsumerConfig, logger rabbitmq_common.Logger) error {
	logger.Debug("Declaring final DLX and DLQ", "dlx", cfg.FinalDLXExchange, "dlq", cfg.FinalDLQ)
	if err := ch.ExchangeDeclare(cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := ch.QueueBind(cfg.FinalDLQ, cfg.FinalDLQRoutingKey, cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	logger.Debug("Declaring retry exchange and wait queue", "exchange", cfg.RetryExchange, "queue", cfg.RetryQueue, "ttl", cfg.RetryTTL)
	if err := ch.ExchangeDeclare(cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	waitArgs := amqp.Table{
		"x-message-ttl":          int32(cfg.RetryTTL),
		"x-dead-letter-exchange": cfg.ExchangeNameForBind,
	}
	if _, err := ch.QueueDeclare(cfg.RetryQueue, true, false, false, false, waitArgs); err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}
	if err := ch.QueueBind(cfg.RetryQueue, "", cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}
	return nil
}
