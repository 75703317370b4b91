package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"property-search-service/internal/constants"
	"property-search-service/internal/contextkeys"
	"property-search-service/internal/contracts"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/port/usecases_port"
	"property-search-service/pkg/rabbitmq/rabbitmq_common"
	"property-search-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type SearchRequestConsumerAdapter struct {
	consumer  *rabbitmq_consumer.PoolConsumer
	processUC usecases_port.ProcessSearchRequestUseCase
	logger    port.LoggerPort
}

func NewSearchRequestConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	processUC usecases_port.ProcessSearchRequestUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*SearchRequestConsumerAdapter, error) {

	adapter := &SearchRequestConsumerAdapter{
		processUC: processUC,
		logger:    logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_pool_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewPoolConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for search requests: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func (a *SearchRequestConsumerAdapter) messageHandler(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers[constants.HeaderTraceID].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)

	msgLogger.Info("Received search request", nil)

	// битое сообщение повторять бессмысленно
	if err := contracts.Validate(contracts.SearchRequestedEvent, contracts.Version1, d.Body); err != nil {
		msgLogger.Error("Search request failed schema validation", err, nil)
		return rabbitmq_consumer.Permanent(fmt.Errorf("%w: %w", domain.ErrInvalidPayload, err))
	}

	var dto SearchRequestDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Error("Error unmarshalling search request DTO", err, nil)
		return rabbitmq_consumer.Permanent(fmt.Errorf("%w: unmarshal error: %w", domain.ErrInvalidPayload, err))
	}

	reqLogger := msgLogger.WithFields(port.Fields{"request_id": dto.RequestID})
	ctx = contextkeys.ContextWithLogger(ctx, reqLogger)
	ctx = contextkeys.ContextWithRequestID(ctx, dto.RequestID)

	if _, err := a.processUC.Execute(ctx, dto.toDomain()); err != nil {
		reqLogger.Error("Process search request use case failed", err, nil)
		return err // уйдет на ретрай
	}

	return nil
}

// Start реализует EventListenerPort
func (a *SearchRequestConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *SearchRequestConsumerAdapter) Close() error {
	return a.consumer.Close()
}
