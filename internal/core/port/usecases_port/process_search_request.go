package usecases_port

import (
	"context"
	"property-search-service/internal/core/domain"
)

type ProcessSearchRequestUseCase interface {
	Execute(ctx context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error)
}
