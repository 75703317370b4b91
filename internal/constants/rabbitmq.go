package constants

// Обменник сервиса
const (
	SearchExchange     = "property_search_exchange"
	SearchExchangeType = "direct"
)

// Имена очередей
const (
	QueueSearchRequests = "property_search_requests"
)

// Ключи маршрутизации
const (
	RoutingKeySearchRequested = "search.requested"
	RoutingKeySearchMatched   = "search.matched"
)

// Ретраи и финальная "свалка" для запросов поиска
const (
	SearchRequestsRetryExchange = QueueSearchRequests + "_retry_ex"
	SearchRequestsRetryQueue    = QueueSearchRequests + "_retry_wait_10s"
	SearchRequestsRetryTTL      = 10000 // мс

	FinalDLXExchangeForSearchRequests   = "property_search_requests_final_dlx"
	FinalDLQForSearchRequests           = "property_search_requests_final_dlq"
	FinalDLQRoutingKeyForSearchRequests = "search_requests.dlq.key"

	SearchRequestsMaxRetries = 3
)

// Заголовки сообщений
const (
	HeaderTraceID      = "x-trace-id"
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
)
