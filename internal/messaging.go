package internal

import (
	"fmt"

	rabbitmq_adapter "property-search-service/internal/adapters/rabbitmq"
	"property-search-service/internal/constants"
	"property-search-service/internal/core/port"
	"property-search-service/pkg/rabbitmq/rabbitmq_common"
	"property-search-service/pkg/rabbitmq/rabbitmq_producer"
)

// Messaging - соединение с RabbitMQ и издатель результатов поиска
type Messaging struct {
	ConnManager    *rabbitmq_common.ConnectionManager
	MatchPublisher *rabbitmq_adapter.MatchPublisherAdapter

	producer *rabbitmq_producer.Publisher
	logger   port.LoggerPort
}

// OpenMessaging создает менеджер соединений и объявляет обменник поиска.
func OpenMessaging(url string, baseLogger port.LoggerPort) (*Messaging, error) {
	rabbitCfg := rabbitmq_common.Config{URL: url}

	connManager, err := rabbitmq_common.NewConnectionManager(
		rabbitCfg,
		rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitCfg,
		ExchangeName:             constants.SearchExchange,
		ExchangeType:             constants.SearchExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		_ = connManager.Close()
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}

	matchPublisher, err := rabbitmq_adapter.NewMatchPublisherAdapter(producer, constants.RoutingKeySearchMatched)
	if err != nil {
		_ = producer.Close()
		_ = connManager.Close()
		return nil, err
	}

	return &Messaging{
		ConnManager:    connManager,
		MatchPublisher: matchPublisher,
		producer:       producer,
		logger:         baseLogger,
	}, nil
}

// Close закрывает издателя, затем соединение
func (m *Messaging) Close() {
	if err := m.producer.Close(); err != nil {
		m.logger.Error("Error closing event producer", err, nil)
	}
	if err := m.ConnManager.Close(); err != nil {
		m.logger.Error("Error closing RabbitMQ connection manager", err, nil)
	}
}
