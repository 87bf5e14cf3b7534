package bridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/kargo/internal/application/tasks"
	"github.com/cyrup-ai/kargo/internal/domain/capability"
)

func runBridge(t *testing.T, b *Bridge) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	return cancel
}

// P8: every Capability Request that obtains a reply channel receives
// exactly one Response.
func TestBridge_ReadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hostname")
	require.NoError(t, os.WriteFile(path, []byte("kargo-host"), 0o644))

	b := New(nil, DefaultCapacity)
	cancel := runBridge(t, b)
	defer cancel()

	env := capability.NewEnvelope()
	req := capability.ReadFile{Envelope: env, Path: path}
	require.True(t, b.TrySend(req))

	select {
	case resp := <-req.ReplyTo():
		data, ok := resp.(capability.Data)
		require.True(t, ok, "expected Data response, got %T", resp)
		assert.Equal(t, "kargo-host", string(data.Bytes))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bridge response")
	}
}

func TestBridge_ReadFileMissingReturnsError(t *testing.T) {
	b := New(nil, DefaultCapacity)
	cancel := runBridge(t, b)
	defer cancel()

	env := capability.NewEnvelope()
	req := capability.ReadFile{Envelope: env, Path: "/does/not/exist/at/all"}
	require.True(t, b.TrySend(req))

	resp := <-req.ReplyTo()
	_, ok := resp.(capability.Error)
	assert.True(t, ok, "expected Error response, got %T", resp)
}

func TestBridge_LogMessageAlwaysSucceeds(t *testing.T) {
	b := New(nil, DefaultCapacity)
	cancel := runBridge(t, b)
	defer cancel()

	env := capability.NewEnvelope()
	req := capability.LogMessage{Envelope: env, Level: "info", Text: "hello"}
	require.True(t, b.TrySend(req))

	resp := <-req.ReplyTo()
	_, ok := resp.(capability.Success)
	assert.True(t, ok)
}

func TestBridge_GetEnvVar(t *testing.T) {
	t.Setenv("KARGO_BRIDGE_TEST_VAR", "present")

	b := New(nil, DefaultCapacity)
	cancel := runBridge(t, b)
	defer cancel()

	env := capability.NewEnvelope()
	req := capability.GetEnvVar{Envelope: env, Name: "KARGO_BRIDGE_TEST_VAR"}
	require.True(t, b.TrySend(req))

	resp := <-req.ReplyTo()
	text, ok := resp.(capability.Text)
	require.True(t, ok)
	assert.Equal(t, "present", text.Value)
}

// Scenario 4 (spec.md §8): a guest spawns and polls a host task; the
// first poll observes TaskPending, a later poll observes the result.
func TestBridge_SpawnAndPollTask(t *testing.T) {
	taskReg := tasks.NewRegistry(map[string]tasks.Factory{
		"sleep": func(params string) (tasks.Runnable, error) {
			return func(ctx context.Context) ([]byte, error) {
				time.Sleep(30 * time.Millisecond)
				return []byte{}, nil
			}, nil
		},
	})
	b := New(taskReg, DefaultCapacity)
	cancel := runBridge(t, b)
	defer cancel()

	spawnEnv := capability.NewEnvelope()
	spawnReq := capability.SpawnTask{Envelope: spawnEnv, Name: "sleep", Params: "50ms"}
	require.True(t, b.TrySend(spawnReq))
	spawnResp := <-spawnReq.ReplyTo()
	spawned, ok := spawnResp.(capability.Spawned)
	require.True(t, ok)

	pollEnv := capability.NewEnvelope()
	pollReq := capability.PollTask{Envelope: pollEnv, TaskID: spawned.ID}
	require.True(t, b.TrySend(pollReq))
	firstResp := <-pollReq.ReplyTo()
	_, pending := firstResp.(capability.TaskPending)
	assert.True(t, pending, "first poll should observe the task still running")

	require.Eventually(t, func() bool {
		env := capability.NewEnvelope()
		req := capability.PollTask{Envelope: env, TaskID: spawned.ID}
		require.True(t, b.TrySend(req))
		resp := <-req.ReplyTo()
		_, ok := resp.(capability.Data)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestBridge_SpawnUnknownTaskTypeReturnsError(t *testing.T) {
	b := New(nil, DefaultCapacity)
	cancel := runBridge(t, b)
	defer cancel()

	env := capability.NewEnvelope()
	req := capability.SpawnTask{Envelope: env, Name: "does-not-exist", Params: ""}
	require.True(t, b.TrySend(req))

	resp := <-req.ReplyTo()
	_, ok := resp.(capability.Error)
	assert.True(t, ok)
}

func TestBridge_TrySendFailsWhenFull(t *testing.T) {
	b := New(nil, 1)
	// No consumer running: fill the single slot, then the next TrySend
	// must report false instead of blocking (spec.md §4.5 backpressure).
	env1 := capability.NewEnvelope()
	require.True(t, b.TrySend(capability.LogMessage{Envelope: env1, Level: "info", Text: "first"}))

	env2 := capability.NewEnvelope()
	assert.False(t, b.TrySend(capability.LogMessage{Envelope: env2, Level: "info", Text: "second"}))
}
