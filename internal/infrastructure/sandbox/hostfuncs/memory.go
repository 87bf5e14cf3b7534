package hostfuncs

import (
	"context"
	"encoding/json"

	"github.com/tetratelabs/wazero/api"

	"github.com/cyrup-ai/kargo/wireformat"
)

// readJSON reads the packed ptr+len argument off the guest stack and
// unmarshals it into v.
func readJSON(mod api.Module, packed uint64, v interface{}) error {
	ptr, length := wireformat.UnpackPtrLen(packed)
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return errMemRead
	}
	return json.Unmarshal(data, v)
}

// writeJSON marshals v, allocates guest memory via the guest's required
// `alloc` export, writes the bytes, and returns the packed ptr+len to
// return to the guest (spec.md §6.2: "the host allocates in guest memory
// via the guest's alloc export").
func writeJSON(ctx context.Context, mod api.Module, v interface{}) uint64 {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"ok":false,"error":"host: failed to marshal response"}`)
	}

	allocFn := mod.ExportedFunction("alloc")
	if allocFn == nil {
		return 0
	}
	results, err := allocFn.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		return 0
	}
	ptr := uint32(results[0])
	if !mod.Memory().Write(ptr, data) {
		return 0
	}
	return wireformat.PackPtrLen(ptr, uint32(len(data)))
}

var errMemRead = memReadError{}

type memReadError struct{}

func (memReadError) Error() string { return "hostfuncs: failed to read guest memory" }
