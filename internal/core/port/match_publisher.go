package port

import (
	"context"
	"property-search-service/internal/core/domain"
)

// MatchPublisherPort отправляет результат поиска внешнему уведомителю
type MatchPublisherPort interface {
	PublishOutcome(ctx context.Context, outcome domain.SearchOutcome) error
}
