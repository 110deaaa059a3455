package logger

import (
	"context"
	"fmt"
	"gold-pulse/pkg/common"
	"gold-pulse/pkg/httpclient"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// AlertCore forwards entries carrying the send_alert field to a Telegram chat.
type AlertCore struct {
	core     zapcore.Core
	client   httpclient.HTTPClient
	token    string
	chatID   int64
	minLevel zapcore.Level
}

// NewAlertCore builds an alert core posting to the Telegram Bot API.
func NewAlertCore(botToken string, chatID int64, timeout time.Duration) *AlertCore {
	return &AlertCore{
		client:   httpclient.New("https://api.telegram.org", timeout, ""),
		token:    botToken,
		chatID:   chatID,
		minLevel: zapcore.ErrorLevel,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		client:   a.client,
		token:    a.token,
		chatID:   a.chatID,
		minLevel: a.minLevel,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && hasAlertFlag(fields) {
		go a.sendTelegramAlert(entry, fields) // async, never block the caller
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func hasAlertFlag(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

// FormatAlertMessage renders a log entry as a plain Telegram message.
func FormatAlertMessage(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚨 %s Alert\n\nMessage: %s\n\n", entry.Level.CapitalString(), entry.Message))
	if len(keys) > 0 {
		sb.WriteString("Fields:\n")
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("• %s: %v\n", k, enc.Fields[k]))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Time: %s", entry.Time.Format("2006-01-02 15:04:05")))
	return sb.String()
}

func (a *AlertCore) sendTelegramAlert(entry zapcore.Entry, fields []zapcore.Field) {
	if a.token == "" || a.chatID == 0 {
		return
	}
	payload := map[string]interface{}{
		"chat_id": a.chatID,
		"text":    FormatAlertMessage(entry, fields),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = a.client.Post(ctx, fmt.Sprintf("/bot%s/sendMessage", a.token), payload, nil, nil)
}
