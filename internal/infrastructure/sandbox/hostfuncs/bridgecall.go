package hostfuncs

import (
	"context"
	"log/slog"

	"github.com/cyrup-ai/kargo/internal/domain/capability"
)

// Sender is the narrow interface host functions need from the Capability
// Bridge: a non-blocking enqueue. Implemented by *bridge.Bridge.
type Sender interface {
	TrySend(req capability.Request) bool
}

// call enqueues req on the bridge and blocks the calling goroutine for its
// single reply, or until ctx is cancelled. This is the "blocking receive
// on its own reply channel" spec.md §5 requires of every host function
// wrapper: the guest's entry into the host function is synchronous, so
// this goroutine (which IS the guest's current execution, per the adapter
// in internal/infrastructure/sandbox) must not return until the bridge's
// asynchronous consumer has produced a Response.
//
// If the channel is full (backpressure), req is never sent and the guest
// observes a recoverable error immediately rather than blocking
// indefinitely on a request nobody will service.
func call(ctx context.Context, sender Sender, req capability.Request) capability.Response {
	if !sender.TrySend(req) {
		slog.Warn("hostfuncs: capability bridge backpressure, request dropped", "tag", req.Tag())
		return capability.Error{Message: "capability bridge is at capacity, try again"}
	}

	select {
	case resp := <-req.ReplyTo():
		return resp
	case <-ctx.Done():
		// I5: the guest must observe an abandoned request as an error,
		// not hang forever — ctx cancellation (dispatch timeout/shutdown)
		// is the host-side signal that no reply will ever arrive even
		// though the bridge consumer may still eventually send one into
		// the now-unread, capacity-1 channel (harmless — it is GC'd with
		// the request).
		return capability.Error{Message: "capability request abandoned: " + ctx.Err().Error()}
	}
}
