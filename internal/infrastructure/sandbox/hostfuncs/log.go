package hostfuncs

import (
	"context"
	"log/slog"

	"github.com/tetratelabs/wazero/api"

	"github.com/cyrup-ai/kargo/internal/domain/capability"
	"github.com/cyrup-ai/kargo/wireformat"
)

// LogMessage implements the `log_message` host import. Per spec.md §6.2
// its signature is (level_ptr, message_ptr) -> i32 status; this host
// accepts the same packed-JSON convention as the other five functions for
// a single argument (one fewer ABI shape to maintain) and returns 0/1.
func LogMessage(ctx context.Context, mod api.Module, stack []uint64, sender Sender) uint64 {
	var req wireformat.LogMessageRequest
	if err := readJSON(mod, stack[0], &req); err != nil {
		slog.Warn("hostfuncs: failed to decode log_message payload", "error", err)
		return 1
	}

	pluginName, _ := PluginNameFromContext(ctx)
	slog.Debug("log_message: dispatching", "plugin", pluginName)

	env := capability.NewEnvelope()
	resp := call(ctx, sender, capability.LogMessage{Envelope: env, Level: req.Level, Text: req.Message})

	if _, ok := resp.(capability.Success); ok {
		return 0
	}
	return 1
}
