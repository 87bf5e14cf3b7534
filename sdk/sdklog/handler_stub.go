//go:build !wasip1

package sdklog

import (
	"context"
	"log/slog"
	"os"
)

// Handler falls back to a plain stderr text handler outside the wasip1
// target, so a plugin's own unit tests (run on the host platform, not
// under wazero) still see its log output.
type Handler struct {
	inner slog.Handler
}

// NewHandler returns a stderr-backed handler for non-WASM builds.
func NewHandler() *Handler {
	return &Handler{inner: slog.NewTextHandler(os.Stderr, nil)}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name)}
}
