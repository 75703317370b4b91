package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"property-search-service/internal/constants"
	"property-search-service/internal/contextkeys"
	"property-search-service/internal/contracts"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// jsonPublisher - то, что адаптеру нужно от rabbitmq_producer.Publisher
type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error
}

// MatchPublisherAdapter публикует SearchMatchedEvent для внешнего нотификатора.
type MatchPublisherAdapter struct {
	producer   jsonPublisher
	routingKey string
}

func NewMatchPublisherAdapter(producer jsonPublisher, routingKey string) (*MatchPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("routingKey cannot be empty")
	}
	return &MatchPublisherAdapter{producer: producer, routingKey: routingKey}, nil
}

// PublishOutcome реализует MatchPublisherPort
func (a *MatchPublisherAdapter) PublishOutcome(ctx context.Context, outcome domain.SearchOutcome) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "MatchPublisherAdapter",
		"routing_key": a.routingKey,
	})

	event := toSearchMatchedDTO(outcome)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal search outcome %s: %w", outcome.RequestID, err)
	}
	// исходящее событие должно соответствовать собственному контракту
	if err := contracts.Validate(contracts.SearchMatchedEvent, contracts.Version1, body); err != nil {
		adapterLogger.Error("Outgoing event does not match its schema", err, nil)
		return err
	}

	headers := amqp.Table{
		constants.HeaderEventType:    contracts.SearchMatchedEvent,
		constants.HeaderEventVersion: contracts.Version1,
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.PublishJSON(publishCtx, a.routingKey, event, headers); err != nil {
		adapterLogger.Error("Failed to publish search outcome", err, nil)
		return err
	}

	adapterLogger.Info("Successfully published search outcome", port.Fields{
		"tier":     event.Tier,
		"no_match": event.NoMatch,
	})
	return nil
}
