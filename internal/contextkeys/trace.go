package contextkeys

import (
	"context"
)

type (
	traceIDKeyType   struct{}
	requestIDKeyType struct{}
)

var (
	traceIDKey   = traceIDKeyType{}
	requestIDKey = requestIDKeyType{}
)

// ContextWithTraceID помещает trace_id (X-Trace-ID или x-trace-id из AMQP заголовков) в контекст
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext возвращает пустую строку, если trace_id не найден
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// ContextWithRequestID - идентификатор запроса поиска из очереди
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
