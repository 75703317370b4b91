package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"property-search-service/internal/contextkeys"
	"property-search-service/internal/contracts"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/port/usecases_port"
	"property-search-service/internal/core/summary"
)

const (
	findPropertyTool = "find_property"
	defaultStatus    = "current"
)

// аргументы инструмента, которые без изменений попадают в запрос поиска
var passthroughArgs = []string{"beds_min", "baths_min", "price_min", "price_max", "purpose", "subcategory", "features"}

type ToolCallHandlers struct {
	findBestMatchUC usecases_port.FindBestMatchUseCase
	// nil, если очередь уведомлений выключена
	processUC  usecases_port.ProcessSearchRequestUseCase
	summarizer *summary.Summarizer
}

func NewToolCallHandlers(
	findBestMatchUC usecases_port.FindBestMatchUseCase,
	processUC usecases_port.ProcessSearchRequestUseCase,
	summarizer *summary.Summarizer,
) *ToolCallHandlers {
	return &ToolCallHandlers{
		findBestMatchUC: findBestMatchUC,
		processUC:       processUC,
		summarizer:      summarizer,
	}
}

// HandleToolCalls - обработчик для POST /api/v1/tool-calls.
// Ошибка одного вызова не ломает ответ: она возвращается строкой в его result.
func (h *ToolCallHandlers) HandleToolCalls(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleToolCalls"})

	var envelope ToolCallEnvelopeDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&envelope); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	calls := envelope.Message.ToolCallList
	if len(calls) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "no toolCallList in body")
		return
	}

	resp := ToolCallResponseDTO{Results: make([]ToolCallResultDTO, 0, len(calls))}
	for _, call := range calls {
		id := call.ID
		if id == "" {
			id = "unknown"
		}
		callLogger := logger.WithFields(port.Fields{"tool_call_id": id})
		ctx := contextkeys.ContextWithLogger(r.Context(), callLogger)

		resp.Results = append(resp.Results, ToolCallResultDTO{
			ToolCallID: id,
			Result:     h.handleCall(ctx, id, call),
		})
	}

	RespondWithJSON(w, http.StatusOK, resp)
}

func (h *ToolCallHandlers) handleCall(ctx context.Context, id string, call ToolCallDTO) interface{} {
	logger := contextkeys.LoggerFromContext(ctx)

	name, rawArgs := call.Name, call.Arguments
	if call.Function != nil {
		if name == "" {
			name = call.Function.Name
		}
		if len(rawArgs) == 0 {
			rawArgs = call.Function.Arguments
		}
	}
	if name != findPropertyTool {
		return fmt.Sprintf("unsupported tool %s", name)
	}

	args, err := decodeArguments(rawArgs)
	if err != nil {
		return fmt.Sprintf("invalid arguments: %v", err)
	}

	location, _ := args["location"].(string)
	location = strings.TrimSpace(location)
	if location == "" {
		return "location is required"
	}
	args["location"] = location
	if err := contracts.ValidateValue(contracts.FindPropertyRequest, contracts.Version1, args); err != nil {
		return fmt.Sprintf("invalid arguments: %v", err)
	}

	query := buildToolQuery(location, args)
	phone, _ := args["phone_number"].(string)
	phone = strings.TrimSpace(phone)
	dry, _ := args["dry"].(bool)

	if phone != "" && !dry && h.processUC != nil {
		outcome, err := h.processUC.Execute(ctx, domain.SearchRequest{
			RequestID:   id,
			PhoneNumber: phone,
			Query:       query,
		})
		if err != nil {
			logger.Error("Tool call search failed", err, nil)
			return fmt.Sprintf("search error: %v", err)
		}
		if outcome.Summary == nil {
			return "no property found"
		}
		return FoundPropertyDTO{ListingSummary: outcome.Summary, Tier: outcome.Tier, Notification: "queued"}
	}

	result, err := h.findBestMatchUC.Execute(ctx, query)
	if err != nil {
		logger.Error("Tool call search failed", err, nil)
		return fmt.Sprintf("search error: %v", err)
	}
	if !result.Found() {
		return "no property found"
	}

	s := h.summarizer.Summarize(result.Listing)
	found := FoundPropertyDTO{ListingSummary: &s, Tier: result.Tier}
	if phone != "" && !dry {
		found.Notification = "disabled"
	}
	return found
}

// decodeArguments принимает как объект, так и JSON-строку с объектом.
func decodeArguments(raw json.RawMessage) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if len(raw) == 0 || string(raw) == "null" {
		return args, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
		if strings.TrimSpace(encoded) == "" {
			return args, nil
		}
	}

	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

func buildToolQuery(location string, args map[string]interface{}) domain.RawQuery {
	query := domain.RawQuery{
		"keyword": location,
		"status":  defaultStatus,
	}
	if status, ok := args["status"].(string); ok && strings.TrimSpace(status) != "" {
		query["status"] = status
	}
	for _, key := range passthroughArgs {
		if v, ok := args[key]; ok {
			query[key] = v
		}
	}
	return query
}
