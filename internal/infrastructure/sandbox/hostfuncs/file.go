package hostfuncs

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/cyrup-ai/kargo/internal/domain/capability"
	"github.com/cyrup-ai/kargo/wireformat"
)

// ReadFile implements the `read_file` host import.
// Parameters: requestPacked (i64) — packed ptr+len of a
// wireformat.ReadFileRequest JSON payload.
// Returns: responsePacked (i64) — packed ptr+len of a
// wireformat.ReadFileResponse JSON payload.
func ReadFile(ctx context.Context, mod api.Module, stack []uint64, sender Sender) {
	var req wireformat.ReadFileRequest
	if err := readJSON(mod, stack[0], &req); err != nil {
		stack[0] = writeJSON(ctx, mod, wireformat.ReadFileResponse{Error: err.Error()})
		return
	}

	env := capability.NewEnvelope()
	resp := call(ctx, sender, capability.ReadFile{Envelope: env, Path: req.Path})

	var out wireformat.ReadFileResponse
	switch r := resp.(type) {
	case capability.Data:
		out = wireformat.ReadFileResponse{OK: true, Data: r.Bytes}
	case capability.Error:
		out = wireformat.ReadFileResponse{Error: r.Message}
	default:
		out = wireformat.ReadFileResponse{Error: "unexpected response type for read_file"}
	}

	stack[0] = writeJSON(ctx, mod, out)
}

// WriteFile implements the `write_file` host import.
func WriteFile(ctx context.Context, mod api.Module, stack []uint64, sender Sender) {
	var req wireformat.WriteFileRequest
	if err := readJSON(mod, stack[0], &req); err != nil {
		stack[0] = writeJSON(ctx, mod, wireformat.WriteFileResponse{Error: err.Error()})
		return
	}

	env := capability.NewEnvelope()
	resp := call(ctx, sender, capability.WriteFile{Envelope: env, Path: req.Path, Bytes: req.Data})

	var out wireformat.WriteFileResponse
	switch r := resp.(type) {
	case capability.Success:
		out = wireformat.WriteFileResponse{OK: true}
	case capability.Error:
		out = wireformat.WriteFileResponse{Error: r.Message}
	default:
		out = wireformat.WriteFileResponse{Error: "unexpected response type for write_file"}
	}

	stack[0] = writeJSON(ctx, mod, out)
}
