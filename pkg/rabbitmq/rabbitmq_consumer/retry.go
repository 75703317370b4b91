package rabbitmq_consumer

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// permanentError помечает ошибку, которую бессмысленно повторять.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent оборачивает ошибку обработчика: сообщение сразу уходит в финальную DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent сообщает, помечена ли ошибка как постоянная.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

type disposition int

const (
	dispositionAck        disposition = iota
	dispositionDrop                   // nack без requeue, ретраи выключены
	dispositionRetry                  // nack без requeue, сообщение уйдет в wait-очередь
	dispositionDeadLetter             // публикация в финальный DLX и ack оригинала
)

func (d disposition) String() string {
	switch d {
	case dispositionAck:
		return "ack"
	case dispositionDrop:
		return "drop"
	case dispositionRetry:
		return "retry"
	case dispositionDeadLetter:
		return "dead_letter"
	default:
		return "unknown"
	}
}

// decide выбирает судьбу сообщения по результату обработчика.
func decide(handlerErr error, retryEnabled bool, deaths int64, maxRetries int) disposition {
	if handlerErr == nil {
		return dispositionAck
	}
	if !retryEnabled {
		return dispositionDrop
	}
	if IsPermanent(handlerErr) || deaths >= int64(maxRetries) {
		return dispositionDeadLetter
	}
	return dispositionRetry
}

// deathCount возвращает, сколько раз сообщение было отвергнуто в очереди queueName.
func deathCount(headers amqp.Table, queueName string) int64 {
	if headers == nil {
		return 0
	}
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue != queueName {
			continue
		}
		switch n := tbl["count"].(type) {
		case int64:
			return n
		case int32:
			return int64(n)
		case int:
			return int64(n)
		}
	}
	return 0
}
