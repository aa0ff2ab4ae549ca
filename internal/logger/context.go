package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey struct{}

type requestIDKey struct{}

// WithContext 将请求级 logger 放入 context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext 取出请求级 logger，不存在时返回 fallback（fallback 为空时返回 Nop）
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// NewRequestID 生成请求 ID
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID 记录请求 ID，并派生带 request_id 字段的 logger
func WithRequestID(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	if requestID == "" {
		requestID = NewRequestID()
	}
	if base == nil {
		base = zap.NewNop()
	}
	ctx = context.WithValue(ctx, requestIDKey{}, requestID)
	return WithContext(ctx, base.With(zap.String("request_id", requestID)))
}

// RequestID 返回 context 中的请求 ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
