package port

import (
	"context"
	"property-search-service/internal/core/domain"
)

// ListingStorePort определяет контракт коллекции объектов недвижимости.
// Для поискового движка коллекция доступна только на чтение.
type ListingStorePort interface {
	// FindByID ищет объект по точному идентификатору.
	// Если объекта нет, возвращает domain.ErrListingNotFound.
	FindByID(ctx context.Context, id string) (*domain.Listing, error)

	// FindCandidates возвращает не более q.Limit кандидатов в порядке,
	// который задает само хранилище (релевантность, затем свежесть).
	FindCandidates(ctx context.Context, q domain.CandidateQuery) ([]domain.Candidate, error)

	// EnsureIndexes идемпотентно создает индексы. Вызывается один раз при старте.
	EnsureIndexes(ctx context.Context) error

	Ping(ctx context.Context) error
}
