package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode"
)

const (
	redacted          = "[REDACTED]"
	maxAttrStringSize = 256
)

var sensitiveKeys = []string{"secret", "signature", "authorization", "password", "token"}

// New creates a preconfigured slog.Logger.
func New() *slog.Logger {
	return newWithWriter(os.Stdout)
}

func newWithWriter(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceAttr,
	})
	return slog.New(handler)
}

// replaceAttr drops secret-looking values and strips control characters from strings.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if isSensitive(a.Key) {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, Sanitize(a.Value.String()))
	}
	return a
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

// Sanitize removes control characters and caps length so caller-supplied values cannot forge log lines.
func Sanitize(value string) string {
	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		cleaned = append(cleaned, r)
	}
	if len(cleaned) > maxAttrStringSize {
		cleaned = cleaned[:maxAttrStringSize]
	}
	return string(cleaned)
}
