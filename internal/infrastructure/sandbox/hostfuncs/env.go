package hostfuncs

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/cyrup-ai/kargo/internal/domain/capability"
	"github.com/cyrup-ai/kargo/wireformat"
)

// GetEnvVar implements the `get_env_var` host import.
func GetEnvVar(ctx context.Context, mod api.Module, stack []uint64, sender Sender) {
	var req wireformat.GetEnvVarRequest
	if err := readJSON(mod, stack[0], &req); err != nil {
		stack[0] = writeJSON(ctx, mod, wireformat.GetEnvVarResponse{Error: err.Error()})
		return
	}

	env := capability.NewEnvelope()
	resp := call(ctx, sender, capability.GetEnvVar{Envelope: env, Name: req.Name})

	var out wireformat.GetEnvVarResponse
	switch r := resp.(type) {
	case capability.Text:
		out = wireformat.GetEnvVarResponse{OK: true, Value: r.Value}
	case capability.Error:
		out = wireformat.GetEnvVarResponse{Error: r.Message}
	default:
		out = wireformat.GetEnvVarResponse{Error: "unexpected response type for get_env_var"}
	}

	stack[0] = writeJSON(ctx, mod, out)
}
