package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), buf
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()
	log, buf := newBufLogger(slog.LevelDebug)

	log.Debug(ctx, "dbg", "k", 1)
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	out := buf.String()
	assert.Contains(t, out, "dbg")
	assert.Contains(t, out, "k=1")
	assert.Contains(t, out, "inf")
	assert.Contains(t, out, "wrn")
	assert.Contains(t, out, "err")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	log, buf := newBufLogger(slog.LevelWarn)
	log.Info(context.Background(), "quiet")
	assert.Empty(t, buf.String())
}

func TestSlogLogger_With(t *testing.T) {
	log, buf := newBufLogger(slog.LevelInfo)
	child := log.With("component", "sync")
	child.Info(context.Background(), "pass done")
	assert.Contains(t, buf.String(), "component=sync")
}
