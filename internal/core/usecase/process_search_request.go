package usecase

import (
	"context"
	"errors"
	"fmt"
	"property-search-service/internal/contextkeys"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/port/usecases_port"
	"property-search-service/internal/core/summary"
)

// ProcessSearchRequestUseCase обрабатывает запрос из очереди: ищет объект,
// строит сводку и отправляет результат нотификатору.
type ProcessSearchRequestUseCase struct {
	findBestMatch usecases_port.FindBestMatchUseCase
	summarizer    *summary.Summarizer
	publisher     port.MatchPublisherPort
}

func NewProcessSearchRequestUseCase(
	findBestMatch usecases_port.FindBestMatchUseCase,
	summarizer *summary.Summarizer,
	publisher port.MatchPublisherPort,
) *ProcessSearchRequestUseCase {
	return &ProcessSearchRequestUseCase{
		findBestMatch: findBestMatch,
		summarizer:    summarizer,
		publisher:     publisher,
	}
}

// Execute возвращает ошибку только при сбое хранилища или публикации,
// такие сообщения стоит повторить. Невалидный запрос публикуется как результат с полем Error.
func (uc *ProcessSearchRequestUseCase) Execute(ctx context.Context, req domain.SearchRequest) (*domain.SearchOutcome, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ProcessSearchRequest",
		"request_id": req.RequestID,
		"dry":        req.Dry,
	})

	ucLogger.Info("Use case started", nil)

	outcome := &domain.SearchOutcome{
		RequestID:   req.RequestID,
		PhoneNumber: req.PhoneNumber,
		Dry:         req.Dry,
		Tier:        domain.TierNone,
	}

	result, err := uc.findBestMatch.Execute(ctx, req.Query)
	switch {
	case errors.Is(err, domain.ErrMissingKeyword):
		outcome.Error = err.Error()
	case err != nil:
		ucLogger.Error("Search failed", err, nil)
		return nil, fmt.Errorf("search for request %s: %w", req.RequestID, err)
	default:
		outcome.Tier = result.Tier
		if result.Found() {
			s := uc.summarizer.Summarize(result.Listing)
			outcome.Summary = &s
		}
	}

	if err := uc.publisher.PublishOutcome(ctx, *outcome); err != nil {
		ucLogger.Error("Failed to publish search outcome", err, nil)
		return nil, fmt.Errorf("publish outcome for request %s: %w", req.RequestID, err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"tier":     string(outcome.Tier),
		"no_match": outcome.Summary == nil,
	})
	return outcome, nil
}
