package port

import "context"

// EventListenerPort определяет контракт для компонента, который слушает
// очередь запросов поиска и запускает соответствующий сценарий
type EventListenerPort interface {
	// Start запускает слушателя
	Start(ctx context.Context) error

	// Close корректно останавливает слушателя, дожидаясь завершения активных задач
	Close() error
}
