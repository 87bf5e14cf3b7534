//go:build wasip1

// Package sdklog provides a slog.Handler a kargo extension installs with
// slog.SetDefault so its log lines travel through the `log_message` host
// import (spec.md §6.2) instead of the guest's own stdout/stderr,
// grounded on reglet-sdk's go/log package (handler_wasm.go /
// handler_host.go split by build tag, same idea: the host decides where
// a guest's log line ultimately lands).
package sdklog

import (
	"context"
	"log/slog"

	"github.com/cyrup-ai/kargo/sdk/hostcall"
)

// Handler forwards every record to the host via log_message.
type Handler struct {
	attrs []slog.Attr
}

// NewHandler returns a ready-to-use Handler. Install it with
// slog.SetDefault(slog.New(sdklog.NewHandler())) at the top of the
// plugin's init().
func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Enabled(context.Context, slog.Level) bool { return true }

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	hostcall.LogMessage(r.Level.String(), r.Message)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *Handler) WithGroup(string) slog.Handler { return h }
