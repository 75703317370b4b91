package rest

import (
	"encoding/json"

	"property-search-service/internal/core/domain"
)

// SearchResponseDTO - ответ POST /api/v1/properties/search
type SearchResponseDTO struct {
	Match   *domain.ListingSummary `json:"match"`
	Tier    domain.Tier            `json:"tier"`
	NoMatch bool                   `json:"no_match"`
	Debug   []domain.TierTrace     `json:"debug"`
}

// ToolCallEnvelopeDTO - вебхук голосового ассистента
type ToolCallEnvelopeDTO struct {
	Message struct {
		ToolCallList []ToolCallDTO `json:"toolCallList"`
	} `json:"message"`
}

type ToolCallDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	// некоторые клиенты кладут аргументы в function.arguments
	Function *struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function,omitempty"`
}

// ToolCallResultDTO - result может быть строкой или объектом сводки
type ToolCallResultDTO struct {
	ToolCallID string      `json:"toolCallId"`
	Result     interface{} `json:"result"`
}

type ToolCallResponseDTO struct {
	Results []ToolCallResultDTO `json:"results"`
}

// FoundPropertyDTO - сводка плюс статус отправки уведомления
type FoundPropertyDTO struct {
	*domain.ListingSummary
	Tier         domain.Tier `json:"tier"`
	Notification string      `json:"notification,omitempty"`
}
