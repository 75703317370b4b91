package usecases_port

import (
	"context"
	"property-search-service/internal/core/domain"
)

type FindBestMatchUseCase interface {
	Execute(ctx context.Context, raw domain.RawQuery) (*domain.MatchResult, error)
}
