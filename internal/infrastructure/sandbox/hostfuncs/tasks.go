package hostfuncs

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/cyrup-ai/kargo/internal/domain/capability"
	"github.com/cyrup-ai/kargo/wireformat"
)

// SpawnTask implements the `spawn_kargo_task` host import.
func SpawnTask(ctx context.Context, mod api.Module, stack []uint64, sender Sender) {
	var req wireformat.SpawnTaskRequest
	if err := readJSON(mod, stack[0], &req); err != nil {
		stack[0] = writeJSON(ctx, mod, wireformat.SpawnTaskResponse{Error: err.Error()})
		return
	}

	env := capability.NewEnvelope()
	resp := call(ctx, sender, capability.SpawnTask{Envelope: env, Name: req.Name, Params: req.Params})

	var out wireformat.SpawnTaskResponse
	switch r := resp.(type) {
	case capability.Spawned:
		out = wireformat.SpawnTaskResponse{OK: true, TaskID: r.ID}
	case capability.Error:
		out = wireformat.SpawnTaskResponse{Error: r.Message}
	default:
		out = wireformat.SpawnTaskResponse{Error: "unexpected response type for spawn_kargo_task"}
	}

	stack[0] = writeJSON(ctx, mod, out)
}

// PollTask implements the `poll_kargo_task` host import.
func PollTask(ctx context.Context, mod api.Module, stack []uint64, sender Sender) {
	var req wireformat.PollTaskRequest
	if err := readJSON(mod, stack[0], &req); err != nil {
		stack[0] = writeJSON(ctx, mod, wireformat.PollTaskResponse{Error: err.Error()})
		return
	}

	env := capability.NewEnvelope()
	resp := call(ctx, sender, capability.PollTask{Envelope: env, TaskID: req.TaskID})

	var out wireformat.PollTaskResponse
	switch r := resp.(type) {
	case capability.TaskPending:
		out = wireformat.PollTaskResponse{Ready: false}
	case capability.Data:
		out = wireformat.PollTaskResponse{Ready: true, OK: true, Data: r.Bytes}
	case capability.Error:
		out = wireformat.PollTaskResponse{Ready: true, Error: r.Message}
	default:
		out = wireformat.PollTaskResponse{Error: "unexpected response type for poll_kargo_task"}
	}

	stack[0] = writeJSON(ctx, mod, out)
}
