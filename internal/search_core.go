package internal

import (
	"property-search-service/internal/configs"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/search"
	"property-search-service/internal/core/summary"
	"property-search-service/internal/core/usecase"
	"property-search-service/internal/core/vocabulary"
)

// SearchCore - движок поиска и сводка поверх одного хранилища
type SearchCore struct {
	FindBestMatch *usecase.FindBestMatchUseCase
	Summarizer    *summary.Summarizer
	EngineConfig  search.Config
}

func NewSearchCore(cfg configs.SearchConfig, store port.ListingStorePort) SearchCore {
	engineCfg := search.DefaultConfig()
	engineCfg.CandidateLimit = search.ClampLimit(cfg.CandidateLimit)
	engineCfg.FuzzyCutoff = cfg.FuzzyCutoff

	resolver := vocabulary.NewResolver(engineCfg.FuzzyCutoff)

	return SearchCore{
		FindBestMatch: usecase.NewFindBestMatchUseCase(search.NewNormalizer(resolver), search.NewEngine(store, resolver, engineCfg)),
		Summarizer:    summary.NewSummarizer(cfg.EbrochureBaseURL, resolver),
		EngineConfig:  engineCfg,
	}
}
