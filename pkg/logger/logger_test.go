package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)

	ctx := context.WithValue(context.Background(), RequestIdKey, "abc123")
	l.WithContext(ctx).Info("handled", zap.Int("status", 200))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "handled", entry.Message)
	assert.Equal(t, "abc123", entry.ContextMap()["request_id"])
}

func TestWithContextWithoutRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewWithCore(core)

	l.WithContext(context.Background()).Info("plain")

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestSugaredHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	l.Infof("running on port %s", "5000")
	l.Warnf("limiter %s", "fallback")
	l.Errorf("failed: %v", "boom")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "running on port 5000", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestNewBuildsBothModes(t *testing.T) {
	assert.NotNil(t, New(ProductionMode).Logger)
	assert.NotNil(t, New(DevelopmentMode).Logger)
}
