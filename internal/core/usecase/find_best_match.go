package usecase

import (
	"context"
	"errors"
	"property-search-service/internal/contextkeys"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/search"
)

type FindBestMatchUseCase struct {
	normalizer *search.Normalizer
	engine     *search.Engine
}

func NewFindBestMatchUseCase(normalizer *search.Normalizer, engine *search.Engine) *FindBestMatchUseCase {
	return &FindBestMatchUseCase{normalizer: normalizer, engine: engine}
}

func (uc *FindBestMatchUseCase) Execute(ctx context.Context, raw domain.RawQuery) (*domain.MatchResult, error) {
	// Получаем и обогащаем логгер
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "FindBestMatch",
	})

	ucLogger.Info("Use case started", nil)

	q, err := uc.normalizer.Normalize(raw)
	if err != nil {
		if errors.Is(err, domain.ErrMissingKeyword) {
			ucLogger.Warn("Query rejected by validation", port.Fields{"error": err.Error()})
		}
		return nil, err
	}

	ucLogger = ucLogger.WithFields(port.Fields{
		"keyword":     q.Keyword,
		"listing_id":  q.ListingID,
		"purpose":     q.Purpose,
		"subcategory": q.Subcategory,
	})

	result, err := uc.engine.Search(contextkeys.ContextWithLogger(ctx, ucLogger), q)
	if err != nil {
		ucLogger.Error("Search engine returned an error", err, nil)
		return nil, err
	}

	fields := port.Fields{
		"tier":            string(result.Tier),
		"tiers_attempted": len(result.Debug),
	}
	if result.Found() {
		fields["match_id"] = result.Listing.ID
	}
	ucLogger.Info("Use case finished successfully", fields)

	return result, nil
}
