package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"property-search-service/internal/contextkeys"
	"property-search-service/internal/contracts"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/port/usecases_port"
	"property-search-service/internal/core/summary"
)

const maxBodyBytes = 1 << 20

type SearchHandlers struct {
	findBestMatchUC usecases_port.FindBestMatchUseCase
	summarizer      *summary.Summarizer
}

func NewSearchHandlers(findBestMatchUC usecases_port.FindBestMatchUseCase, summarizer *summary.Summarizer) *SearchHandlers {
	return &SearchHandlers{findBestMatchUC: findBestMatchUC, summarizer: summarizer}
}

// HandleSearch - обработчик для POST /api/v1/properties/search
func (h *SearchHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleSearch"})

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "Request body is empty")
		return
	}

	if err := contracts.Validate(contracts.PropertyQueryRequest, contracts.Version1, body); err != nil {
		logger.Warn("Search request rejected by schema", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var raw domain.RawQuery
	if err := json.Unmarshal(body, &raw); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.findBestMatchUC.Execute(r.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrMissingKeyword) {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Use case execution failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	resp := SearchResponseDTO{
		Tier:    result.Tier,
		NoMatch: !result.Found(),
		Debug:   result.Debug,
	}
	if result.Found() {
		s := h.summarizer.Summarize(result.Listing)
		resp.Match = &s
	}

	RespondWithJSON(w, http.StatusOK, resp)
}
