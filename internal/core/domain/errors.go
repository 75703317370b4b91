package domain

import "errors"

var (
	// ErrMissingKeyword - в запросе нет ни ключевого слова/локации, ни идентификатора.
	// Это ошибка запроса, а не "ничего не найдено".
	ErrMissingKeyword  = errors.New("keyword or location is required")
	ErrListingNotFound = errors.New("listing not found")
	ErrInvalidPayload  = errors.New("invalid payload")
)
