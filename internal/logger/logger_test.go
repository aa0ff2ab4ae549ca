package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	l, err := NewLogger(LoggerConfig{
		Level:      "debug",
		Format:     "json",
		OutputPath: path,
		MaxSize:    1,
		Service:    "shopee-products",
		Version:    "1.0.0",
		Env:        "test",
	})
	require.NoError(t, err)

	l.Info("hello", zap.Int("n", 1))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"service":"shopee-products"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	l, err := NewLogger(LoggerConfig{Level: "loud"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := WithRequestID(context.Background(), base, "req-1")
	FromContext(ctx, nil).Info("handled")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestWithRequestID_Generates(t *testing.T) {
	ctx := WithRequestID(context.Background(), nil, "")

	_, err := uuid.Parse(RequestID(ctx))
	assert.NoError(t, err)
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}
