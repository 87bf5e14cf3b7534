// Package bridge implements the Capability Bridge (spec.md §4.5): the
// request/reply message bus that lets a sandboxed guest's synchronous
// host-function calls be serviced by the host's asynchronous runtime.
package bridge

import (
	"context"
	"log/slog"
	"os"

	"github.com/cyrup-ai/kargo/internal/application/tasks"
	"github.com/cyrup-ai/kargo/internal/domain/capability"
	"github.com/cyrup-ai/kargo/internal/domain/task"
)

// DefaultCapacity is the channel capacity used when callers don't specify
// one. spec.md §4.5: "channel capacity is bounded; if full, the guest's
// try_send fails and the host function reports error to the guest."
const DefaultCapacity = 32

// Bridge is a single shared request channel with one asynchronous
// consumer goroutine for the process lifetime (spec.md §4.5: "a shared one
// for all [extensions] — choice is local to the implementation").
type Bridge struct {
	requests chan capability.Request
	tasks    *tasks.Registry
}

// New creates a Bridge backed by the given Task Registry (nil creates one
// seeded with tasks.BuiltinFactories).
func New(taskRegistry *tasks.Registry, capacity int) *Bridge {
	if taskRegistry == nil {
		taskRegistry = tasks.NewRegistry(tasks.BuiltinFactories())
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bridge{
		requests: make(chan capability.Request, capacity),
		tasks:    taskRegistry,
	}
}

// TrySend attempts a non-blocking enqueue, mirroring the guest-side
// try_send semantics described in spec.md §4.5. It reports false if the
// channel is full — callers (host function wrappers) must surface that as
// a recoverable error to the guest, never block the guest's own send.
func (b *Bridge) TrySend(req capability.Request) bool {
	select {
	case b.requests <- req:
		return true
	default:
		return false
	}
}

// Run drains requests until ctx is cancelled. It is meant to run on its
// own goroutine for the process lifetime (spec.md §4.5 "runs for the
// process lifetime").
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-b.requests:
			b.dispatch(ctx, req)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, req capability.Request) {
	var resp capability.Response

	switch r := req.(type) {
	case capability.ReadFile:
		resp = handleReadFile(r)
	case capability.WriteFile:
		resp = handleWriteFile(r)
	case capability.GetEnvVar:
		resp = handleGetEnvVar(r)
	case capability.LogMessage:
		slog.Info("guest log", "level", r.Level, "message", r.Text)
		resp = capability.Success{}
	case capability.SpawnTask:
		resp = b.handleSpawnTask(ctx, r)
	case capability.PollTask:
		resp = b.handlePollTask(r)
	default:
		slog.Warn("bridge: unknown capability request type", "tag", req.Tag())
		resp = capability.Error{Message: "unknown request type"}
	}

	// I5: exactly one Response is sent per request that obtains a reply
	// channel. The channel has capacity 1, so this never blocks.
	req.ReplyTo() <- resp
}

func handleReadFile(r capability.ReadFile) capability.Response {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return capability.Error{Message: err.Error()}
	}
	return capability.Data{Bytes: data}
}

func handleWriteFile(r capability.WriteFile) capability.Response {
	if err := os.WriteFile(r.Path, r.Bytes, 0o644); err != nil {
		return capability.Error{Message: err.Error()}
	}
	return capability.Success{}
}

func handleGetEnvVar(r capability.GetEnvVar) capability.Response {
	value, ok := os.LookupEnv(r.Name)
	if !ok {
		return capability.Error{Message: "environment variable not set: " + r.Name}
	}
	return capability.Text{Value: value}
}

func (b *Bridge) handleSpawnTask(ctx context.Context, r capability.SpawnTask) capability.Response {
	id, err := b.tasks.Spawn(ctx, r.Name, r.Params)
	if err != nil {
		return capability.Error{Message: err.Error()}
	}
	return capability.Spawned{ID: uint64(id)}
}

func (b *Bridge) handlePollTask(r capability.PollTask) capability.Response {
	t, err := b.tasks.Poll(task.ID(r.TaskID))
	if err != nil {
		return capability.Error{Message: err.Error()}
	}
	switch t.State {
	case task.Running:
		return capability.TaskPending{}
	case task.Completed:
		return capability.Data{Bytes: t.Result}
	case task.Failed:
		return capability.Error{Message: t.Err}
	default:
		return capability.Error{Message: "unknown task state"}
	}
}

// Tasks exposes the underlying Task Registry so callers (e.g. the CLI's
// `plugins list` diagnostics, or tests) can inspect it directly.
func (b *Bridge) Tasks() *tasks.Registry { return b.tasks }
