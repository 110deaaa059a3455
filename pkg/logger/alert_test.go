package logger

import (
	"testing"
	"time"

	"gold-pulse/pkg/common"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFormatAlertMessage(t *testing.T) {
	entry := zapcore.Entry{
		Level:   zapcore.ErrorLevel,
		Message: "Failed to dispatch alert",
		Time:    time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	fields := []zapcore.Field{
		zap.String("symbol", "GOLD"),
		zap.Bool(common.KEY_LOG_HOOK_SEND_ALERT, true),
	}

	msg := FormatAlertMessage(entry, fields)

	assert.Contains(t, msg, "ERROR Alert")
	assert.Contains(t, msg, "Failed to dispatch alert")
	assert.Contains(t, msg, "• symbol: GOLD")
	assert.NotContains(t, msg, common.KEY_LOG_HOOK_SEND_ALERT)
	assert.Contains(t, msg, "2025-03-01 09:30:00")
}

func TestHasAlertFlag(t *testing.T) {
	assert.True(t, hasAlertFlag([]zapcore.Field{zap.Bool(common.KEY_LOG_HOOK_SEND_ALERT, true)}))
	assert.False(t, hasAlertFlag([]zapcore.Field{zap.Bool(common.KEY_LOG_HOOK_SEND_ALERT, false)}))
	assert.False(t, hasAlertFlag([]zapcore.Field{zap.String("symbol", "GOLD")}))
}
