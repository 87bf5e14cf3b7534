package hostfuncs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cyrup-ai/kargo/internal/domain/capability"
)

type acceptingSender struct {
	received capability.Request
}

func (s *acceptingSender) TrySend(req capability.Request) bool {
	s.received = req
	return true
}

type refusingSender struct{}

func (refusingSender) TrySend(capability.Request) bool { return false }

func TestCall_ReturnsReplyOnceBridgeResponds(t *testing.T) {
	sender := &acceptingSender{}
	req := capability.GetEnvVar{Envelope: capability.NewEnvelope(), Name: "PATH"}

	go func() {
		req.ReplyTo() <- capability.Text{Value: "/usr/bin"}
	}()

	resp := call(context.Background(), sender, req)
	assert.Equal(t, capability.Text{Value: "/usr/bin"}, resp)
}

// Backpressure: a full/unserviced bridge must not block the guest forever.
func TestCall_BackpressureReturnsErrorImmediately(t *testing.T) {
	req := capability.GetEnvVar{Envelope: capability.NewEnvelope(), Name: "PATH"}

	resp := call(context.Background(), refusingSender{}, req)

	errResp, ok := resp.(capability.Error)
	assert.True(t, ok)
	assert.NotEmpty(t, errResp.Message)
}

// I5: an abandoned request (context cancelled before any reply arrives)
// must surface as an error, not hang.
func TestCall_ContextCancelledReturnsErrorWithoutReply(t *testing.T) {
	sender := &acceptingSender{}
	req := capability.ReadFile{Envelope: capability.NewEnvelope(), Path: "/tmp/x"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := call(ctx, sender, req)

	errResp, ok := resp.(capability.Error)
	assert.True(t, ok)
	assert.Contains(t, errResp.Message, "abandoned")

	// A late reply into the now-unread, capacity-1 channel must not panic
	// or block the bridge's consumer goroutine.
	select {
	case req.ReplyTo() <- capability.Success{}:
	case <-time.After(time.Second):
		t.Fatal("late reply send blocked unexpectedly")
	}
}
