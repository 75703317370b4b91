package rabbitmq

import (
	"property-search-service/internal/core/domain"
)

// SearchRequestDTO - входящее событие SearchRequestedEvent
type SearchRequestDTO struct {
	RequestID   string                 `json:"request_id"`
	PhoneNumber string                 `json:"phone_number"`
	Dry         bool                   `json:"dry"`
	Query       map[string]interface{} `json:"query"`
}

func (d SearchRequestDTO) toDomain() domain.SearchRequest {
	return domain.SearchRequest{
		RequestID:   d.RequestID,
		PhoneNumber: d.PhoneNumber,
		Dry:         d.Dry,
		Query:       domain.RawQuery(d.Query),
	}
}

// SearchMatchedDTO - исходящее событие SearchMatchedEvent для нотификатора
type SearchMatchedDTO struct {
	RequestID   string                 `json:"request_id"`
	PhoneNumber string                 `json:"phone_number,omitempty"`
	Dry         bool                   `json:"dry"`
	Tier        string                 `json:"tier"`
	NoMatch     bool                   `json:"no_match"`
	Summary     *domain.ListingSummary `json:"summary"`
	Error       string                 `json:"error,omitempty"`
}

func toSearchMatchedDTO(o domain.SearchOutcome) SearchMatchedDTO {
	return SearchMatchedDTO{
		RequestID:   o.RequestID,
		PhoneNumber: o.PhoneNumber,
		Dry:         o.Dry,
		Tier:        string(o.Tier),
		NoMatch:     o.Summary == nil,
		Summary:     o.Summary,
		Error:       o.Error,
	}
}
