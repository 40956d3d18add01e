package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/minitwit/config"
)

func TestInit_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(config.LogConfig{Level: "loud", Format: "json"}))
}

func TestInit_Console(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, Init(config.LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
}

func TestHelpersWriteThroughGlobal(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	Warn("queue full", zap.String("user", "alice"))
	Debug("noise")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "queue full", entry.Message)
	assert.Equal(t, "alice", entry.ContextMap()["user"])
}
