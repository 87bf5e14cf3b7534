package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/kargo/internal/domain/task"
)

func echoFactory(params string) (Runnable, error) {
	return func(ctx context.Context) ([]byte, error) {
		return []byte(params), nil
	}, nil
}

func TestRegistry_SpawnUnknownTaskType(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Spawn(context.Background(), "nonexistent", "")
	require.Error(t, err)
	var unknown ErrUnknownTaskType
	assert.ErrorAs(t, err, &unknown)
}

func TestRegistry_PollUnknownID(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Poll(task.ID(999))
	require.Error(t, err)
	var notFound ErrTaskNotFound
	assert.ErrorAs(t, err, &notFound)
}

// P4: for any sequence of successful SpawnTask calls, returned ids are
// strictly increasing and unique.
func TestRegistry_SpawnIDsAreStrictlyIncreasing(t *testing.T) {
	r := NewRegistry(map[string]Factory{"echo": echoFactory})
	ctx := context.Background()

	var last task.ID
	for i := 0; i < 20; i++ {
		id, err := r.Spawn(ctx, "echo", "x")
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}
}

// P5: once a task is observed Completed or Failed, Poll never again
// returns Running and never mutates the terminal payload.
func TestRegistry_CompletedTaskStaysTerminal(t *testing.T) {
	done := make(chan struct{})
	factory := func(params string) (Runnable, error) {
		return func(ctx context.Context) ([]byte, error) {
			<-done
			return []byte("result"), nil
		}, nil
	}
	r := NewRegistry(map[string]Factory{"wait": factory})

	id, err := r.Spawn(context.Background(), "wait", "")
	require.NoError(t, err)

	tk, err := r.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, task.Running, tk.State)

	close(done)
	require.Eventually(t, func() bool {
		tk, err := r.Poll(id)
		return err == nil && tk.State == task.Completed
	}, time.Second, 5*time.Millisecond)

	tk, err = r.Poll(id)
	require.NoError(t, err)
	require.Equal(t, task.Completed, tk.State)
	assert.Equal(t, []byte("result"), tk.Result)

	// Poll again: state must not regress or mutate.
	tk2, err := r.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, task.Completed, tk2.State)
	assert.Equal(t, tk.Result, tk2.Result)
}

func TestRegistry_FailedTaskReportsError(t *testing.T) {
	factory := func(params string) (Runnable, error) {
		return func(ctx context.Context) ([]byte, error) {
			return nil, assert.AnError
		}, nil
	}
	r := NewRegistry(map[string]Factory{"fail": factory})

	id, err := r.Spawn(context.Background(), "fail", "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		tk, err := r.Poll(id)
		return err == nil && tk.State == task.Failed
	}, time.Second, 5*time.Millisecond)

	tk, err := r.Poll(id)
	require.NoError(t, err)
	assert.Equal(t, assert.AnError.Error(), tk.Err)
}

func TestRegistry_ConcurrentSpawnsProduceUniqueIDs(t *testing.T) {
	r := NewRegistry(map[string]Factory{"echo": echoFactory})
	ctx := context.Background()

	const n = 50
	ids := make([]task.ID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := r.Spawn(ctx, "echo", "x")
			require.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[task.ID]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate task id %d", id)
		seen[id] = true
	}
}
