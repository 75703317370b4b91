package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search-service/internal/adapters/memstore"
	"property-search-service/internal/core/domain"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/search"
	"property-search-service/internal/core/summary"
	"property-search-service/internal/core/usecase"
	"property-search-service/internal/core/vocabulary"
)

type nopLogger struct{}

func (nopLogger) Info(string, port.Fields)                 {}
func (nopLogger) Warn(string, port.Fields)                 {}
func (nopLogger) Error(string, error, port.Fields)         {}
func (nopLogger) Debug(string, port.Fields)                {}
func (l nopLogger) WithFields(port.Fields) port.LoggerPort { return l }

var errStoreDown = errors.New("connection refused")

// brokenStore отвечает ошибкой на любой запрос
type brokenStore struct{}

func (brokenStore) FindByID(context.Context, string) (*domain.Listing, error) {
	return nil, errStoreDown
}

func (brokenStore) FindCandidates(context.Context, domain.CandidateQuery) ([]domain.Candidate, error) {
	return nil, errStoreDown
}

func (brokenStore) EnsureIndexes(context.Context) error { return nil }
func (brokenStore) Ping(context.Context) error          { return errStoreDown }

type capturePublisher struct {
	published []domain.SearchOutcome
}

func (p *capturePublisher) PublishOutcome(_ context.Context, o domain.SearchOutcome) error {
	p.published = append(p.published, o)
	return nil
}

func chelseaStore() *memstore.Store {
	return memstore.New(
		domain.Listing{
			ID:             "L-1",
			Purpose:        domain.PurposeSale,
			Status:         "current",
			DisplayAddress: "7 Markham Square, Chelsea",
			Prices:         domain.Prices{SaleGBP: 2950000},
			Attributes:     map[string]interface{}{"bedrooms": 3, "bathrooms": 2},
		},
		domain.Listing{
			ID:             "L-2",
			Purpose:        domain.PurposeRental,
			Status:         "current",
			DisplayAddress: "Elm Park Gardens, Chelsea",
			Prices:         domain.Prices{RentPCMGBP: 4500},
		},
	)
}

type fixture struct {
	handler   http.Handler
	publisher *capturePublisher
}

func newFixture(t *testing.T, store port.ListingStorePort, cfg ServerConfig, withQueue bool) fixture {
	t.Helper()

	resolver := vocabulary.NewResolver(vocabulary.DefaultCutoff)
	summarizer := summary.NewSummarizer("", resolver)
	findUC := usecase.NewFindBestMatchUseCase(search.NewNormalizer(resolver), search.NewEngine(store, resolver, search.DefaultConfig()))

	f := fixture{publisher: &capturePublisher{}}
	toolCalls := NewToolCallHandlers(findUC, nil, summarizer)
	if withQueue {
		toolCalls = NewToolCallHandlers(findUC, usecase.NewProcessSearchRequestUseCase(findUC, summarizer, f.publisher), summarizer)
	}

	f.handler = NewRouter(cfg, NewSearchHandlers(findUC, summarizer), toolCalls, NewHealthHandlers(store), nopLogger{})
	return f
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSearch_ReturnsSummary(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	rec := post(t, f.handler, "/api/v1/properties/search", `{"location":"chelsea","purpose":"for sale","beds_min":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	body := decode(t, rec)
	assert.Equal(t, "text_strict", body["tier"])
	assert.Equal(t, false, body["no_match"])

	match := body["match"].(map[string]interface{})
	assert.Equal(t, "L-1", match["listing_id"])
	assert.Equal(t, "Markham Square, Chelsea", match["address"])
	assert.Equal(t, "£2,950,000", match["price"])
	assert.NotEmpty(t, body["debug"])
}

func TestSearch_KeepsIncomingTraceID(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/properties/search", strings.NewReader(`{"location":"chelsea"}`))
	req.Header.Set("X-Trace-ID", "trace-abc")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trace-abc", rec.Header().Get("X-Trace-ID"))
}

func TestSearch_NoMatch(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	rec := post(t, f.handler, "/api/v1/properties/search", `{"keyword":"Narnia"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "none", body["tier"])
	assert.Equal(t, true, body["no_match"])
	assert.Nil(t, body["match"])
}

func TestSearch_BadRequests(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"not json", `{location`},
		{"schema violation", `{"location":"chelsea","beds_min":[2]}`},
		{"missing keyword", `{"purpose":"sale"}`},
		{"array instead of object", `["chelsea"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, f.handler, "/api/v1/properties/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestSearch_StoreFailureIs500(t *testing.T) {
	f := newFixture(t, brokenStore{}, ServerConfig{}, false)

	rec := post(t, f.handler, "/api/v1/properties/search", `{"location":"chelsea"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestToolCalls_Envelope(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	body := `{"message":{"toolCallList":[
		{"id":"tc-1","name":"find_property","arguments":{"location":"Chelsea","purpose":"sale"}},
		{"id":"tc-2","name":"book_viewing","arguments":{}},
		{"id":"tc-3","name":"find_property","arguments":{"purpose":"sale"}},
		{"name":"find_property","arguments":{"location":"Narnia"}},
		{"id":"tc-5","function":{"name":"find_property","arguments":"{\"location\":\"Elm Park\",\"purpose\":\"rent\"}"}}
	]}}`

	rec := post(t, f.handler, "/api/v1/tool-calls", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Results []struct {
			ToolCallID string      `json:"toolCallId"`
			Result     interface{} `json:"result"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 5)

	first := resp.Results[0].Result.(map[string]interface{})
	assert.Equal(t, "tc-1", resp.Results[0].ToolCallID)
	assert.Equal(t, "L-1", first["listing_id"])
	assert.Equal(t, "text_strict", first["tier"])
	assert.NotContains(t, first, "notification")

	assert.Equal(t, "unsupported tool book_viewing", resp.Results[1].Result)
	assert.Equal(t, "location is required", resp.Results[2].Result)

	assert.Equal(t, "unknown", resp.Results[3].ToolCallID)
	assert.Equal(t, "no property found", resp.Results[3].Result)

	fifth := resp.Results[4].Result.(map[string]interface{})
	assert.Equal(t, "L-2", fifth["listing_id"])
}

func TestToolCalls_QueuesNotification(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, true)

	body := `{"message":{"toolCallList":[
		{"id":"tc-1","name":"find_property","arguments":{"location":"Chelsea","purpose":"sale","phone_number":" +447700900123 "}},
		{"id":"tc-2","name":"find_property","arguments":{"location":"Chelsea","purpose":"sale","phone_number":"+447700900123","dry":true}}
	]}}`

	rec := post(t, f.handler, "/api/v1/tool-calls", body)
	require.Equal(t, http.StatusOK, rec.Code)

	results := decode(t, rec)["results"].([]interface{})
	queued := results[0].(map[string]interface{})["result"].(map[string]interface{})
	dry := results[1].(map[string]interface{})["result"].(map[string]interface{})

	assert.Equal(t, "queued", queued["notification"])
	assert.NotContains(t, dry, "notification")

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, "tc-1", f.publisher.published[0].RequestID)
	assert.Equal(t, "+447700900123", f.publisher.published[0].PhoneNumber)
}

func TestToolCalls_NotificationDisabledWithoutQueue(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	rec := post(t, f.handler, "/api/v1/tool-calls",
		`{"message":{"toolCallList":[{"id":"tc-1","name":"find_property","arguments":{"location":"Chelsea","phone_number":"+44"}}]}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode(t, rec)["results"].([]interface{})[0].(map[string]interface{})["result"].(map[string]interface{})
	assert.Equal(t, "disabled", result["notification"])
}

func TestToolCalls_StoreErrorReportedPerCall(t *testing.T) {
	f := newFixture(t, brokenStore{}, ServerConfig{}, false)

	rec := post(t, f.handler, "/api/v1/tool-calls",
		`{"message":{"toolCallList":[{"id":"tc-1","name":"find_property","arguments":{"location":"Chelsea"}}]}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decode(t, rec)["results"].([]interface{})[0].(map[string]interface{})["result"].(string)
	assert.True(t, strings.HasPrefix(result, "search error:"), result)
}

func TestToolCalls_BadEnvelope(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	assert.Equal(t, http.StatusBadRequest, post(t, f.handler, "/api/v1/tool-calls", `{"message":{}}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, f.handler, "/api/v1/tool-calls", `nope`).Code)
}

func TestBuildToolQuery_DefaultsStatus(t *testing.T) {
	q := buildToolQuery("Chelsea", map[string]interface{}{"beds_min": float64(2), "phone_number": "+44"})
	assert.Equal(t, domain.RawQuery{"keyword": "Chelsea", "status": "current", "beds_min": float64(2)}, q)

	q = buildToolQuery("Chelsea", map[string]interface{}{"status": "sold"})
	assert.Equal(t, "sold", q["status"])
}

func TestHealthz(t *testing.T) {
	ok := newFixture(t, chelseaStore(), ServerConfig{}, false)
	rec := httptest.NewRecorder()
	ok.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := newFixture(t, brokenStore{}, ServerConfig{}, false)
	rec = httptest.NewRecorder()
	broken.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1}, false)

	first := post(t, f.handler, "/api/v1/properties/search", `{"location":"chelsea"}`)
	second := post(t, f.handler, "/api/v1/properties/search", `{"location":"chelsea"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// healthz не лимитируется
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, chelseaStore(), ServerConfig{}, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tool-calls", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}
