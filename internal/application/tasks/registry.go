// Package tasks implements the Task Registry (spec.md §4.6): admission,
// id allocation, and polling of long-running host-side operations that
// sandboxed guests spawn via the Capability Bridge.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cyrup-ai/kargo/internal/domain/task"
)

// Runnable is one admitted unit of work. Run is invoked on a dedicated
// goroutine; its return value becomes the task's terminal payload.
type Runnable func(ctx context.Context) ([]byte, error)

// Factory builds a Runnable from the guest-supplied params string. Factory
// functions are pure: they must not block or perform I/O themselves — that
// belongs inside the Runnable they return.
type Factory func(params string) (Runnable, error)

// ErrUnknownTaskType is returned by Spawn when no factory is registered
// under the requested name.
type ErrUnknownTaskType struct{ Name string }

func (e ErrUnknownTaskType) Error() string {
	return fmt.Sprintf("unknown task type %q", e.Name)
}

// ErrTaskNotFound is returned by Poll for an id never admitted.
type ErrTaskNotFound struct{ ID task.ID }

func (e ErrTaskNotFound) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

// Registry tracks every task admitted for the lifetime of the process
// (spec.md §9: reaping is an accepted v1 limitation — memory footprint is
// O(lifetime spawn count)).
type Registry struct {
	nextID   atomic.Uint64
	mu       sync.Mutex
	tasks    map[task.ID]*task.Task
	factories map[string]Factory
}

// NewRegistry creates an empty registry seeded with the given task-type
// factories (see builtin.go for the reference set).
func NewRegistry(factories map[string]Factory) *Registry {
	if factories == nil {
		factories = map[string]Factory{}
	}
	return &Registry{
		tasks:     make(map[task.ID]*task.Task),
		factories: factories,
	}
}

// Register adds (or replaces) a task-type factory. It takes the same lock
// as Spawn's factory lookup, so it is safe to call concurrently with it;
// intended for start-up wiring.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Spawn admits a new task of the given type, allocates its id, and starts
// it running on a dedicated goroutine. The id is valid and observable via
// Poll before Spawn returns (I1-style "admitted, not completed").
func (r *Registry) Spawn(ctx context.Context, name, params string) (task.ID, error) {
	r.mu.Lock()
	factory, ok := r.factories[name]
	r.mu.Unlock()
	if !ok {
		return 0, ErrUnknownTaskType{Name: name}
	}

	runnable, err := factory(params)
	if err != nil {
		return 0, fmt.Errorf("constructing task %q: %w", name, err)
	}

	id := task.ID(r.nextID.Add(1))
	t := &task.Task{ID: id, State: task.Running}

	r.mu.Lock()
	r.tasks[id] = t
	r.mu.Unlock()

	go r.run(ctx, id, runnable)

	return id, nil
}

func (r *Registry) run(ctx context.Context, id task.ID, runnable Runnable) {
	result, err := runnable(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return // should not happen: Spawn always inserts before starting the goroutine
	}
	if err != nil {
		t.State = task.Failed
		t.Err = err.Error()
		return
	}
	t.State = task.Completed
	t.Result = result
}

// Poll reads the current terminal-or-running state of a task. It never
// mutates state and never blocks beyond the short mutex hold (spec.md §5).
func (r *Registry) Poll(id task.ID) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return task.Task{}, ErrTaskNotFound{ID: id}
	}
	return *t, nil
}
