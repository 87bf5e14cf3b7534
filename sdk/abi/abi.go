//go:build wasip1

// Package abi provides the guest-side WASM linear memory allocator every
// kargo plugin links in. It tracks every allocation handed to the host so
// Go's GC never collects a buffer the host is still reading, grounded on
// reglet-sdk's go/internal/abi package (same pin-by-map-reference
// technique, same packed ptr+len convention).
package abi

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/cyrup-ai/kargo/wireformat"
)

// DefaultMaxTotalAllocations bounds how much linear memory a guest's SDK
// layer will pin at once before alloc panics. 100 MB, matching the guest
// process's practical ceiling for a single describe/execute call.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024

type manager struct {
	sync.Mutex
	ptrs      map[uint32][]byte
	allocated int
	limit     int
}

var global = &manager{
	ptrs:  make(map[uint32][]byte),
	limit: DefaultMaxTotalAllocations,
}

// SetLimit overrides the default pinning ceiling. Call before any alloc.
func SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	global.Lock()
	defer global.Unlock()
	global.limit = limit
}

// alloc is the guest export the host calls (from the sandbox adapter's
// writeGuestJSON and the host functions' writeJSON) before writing an
// execute argument or a host-function response into guest memory.
//
//go:wasmexport alloc
func alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	global.Lock()
	defer global.Unlock()

	if global.allocated+int(size) > global.limit {
		panic(fmt.Sprintf("sdk/abi: allocation limit exceeded (requested %d, in use %d, limit %d)", size, global.allocated, global.limit))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0])))
	global.ptrs[ptr] = buf
	global.allocated += int(size)
	return ptr
}

// dealloc releases a pinned buffer. Unknown pointers are ignored so a
// double-free from a confused host never panics the guest.
//
//go:wasmexport dealloc
func dealloc(ptr uint32, _ uint32) {
	global.Lock()
	defer global.Unlock()

	buf, ok := global.ptrs[ptr]
	if !ok {
		return
	}
	delete(global.ptrs, ptr)
	global.allocated -= len(buf)
	if global.allocated < 0 {
		global.allocated = 0
	}
}

// PutJSON marshals v, pins it in guest memory, and returns the packed
// ptr+len a `_kargo_plugin_*` export hands back to the host.
func PutJSON(v interface{}, marshal func(interface{}) ([]byte, error)) (uint64, error) {
	data, err := marshal(v)
	if err != nil {
		return 0, fmt.Errorf("sdk/abi: marshal: %w", err)
	}
	if len(data) == 0 {
		return 0, nil
	}
	ptr := alloc(uint32(len(data)))
	copy(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), len(data)), data)
	return wireformat.PackPtrLen(ptr, uint32(len(data))), nil
}

// ReadJSON reads the bytes at a packed ptr+len the host passed into a
// describe/execute export, without taking ownership of the source memory.
func ReadJSON(packed uint64) []byte {
	ptr, length := wireformat.UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length)
	out := make([]byte, length)
	copy(out, src)
	return out
}

// Stats reports the current pin count and byte total, for plugin tests
// that want to assert no leaks across repeated describe/execute calls.
func Stats() (allocations, totalBytes int) {
	global.Lock()
	defer global.Unlock()
	return len(global.ptrs), global.allocated
}

// Reset clears every tracked allocation. Test-only.
func Reset() {
	global.Lock()
	defer global.Unlock()
	clear(global.ptrs)
	global.allocated = 0
}
