package domain

// SearchRequest - запрос на поиск, пришедший из очереди
type SearchRequest struct {
	RequestID   string
	PhoneNumber string
	Dry         bool
	Query       RawQuery
}

// SearchOutcome - результат обработки запроса для внешнего нотификатора
type SearchOutcome struct {
	RequestID   string
	PhoneNumber string
	Dry         bool
	Tier        Tier
	Summary     *ListingSummary
	// Error заполняется, если запрос отклонен валидацией
	Error string
}
