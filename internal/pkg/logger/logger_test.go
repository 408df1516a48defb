package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLogErrorUsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), NewJSON(&buf, "info").With("request_id", "req-7"))

	LogError(ctx, nil, "ignored")
	assert.Zero(t, buf.Len())

	LogError(ctx, errors.New("upstream timeout"), "quote failed", "endpoint", "bindingQuote")
	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-7"`)
	assert.Contains(t, out, `"error":"upstream timeout"`)
	assert.Contains(t, out, `"endpoint":"bindingQuote"`)
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	assert.Same(t, Get(), FromContext(context.Background()))
}
