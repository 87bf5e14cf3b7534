// Package sandbox implements the Sandbox Extension Adapter (spec.md §4.4):
// loading a WASM module, installing host functions backed by the
// Capability Bridge, and exposing the guest's two well-known exports as an
// extension.Extension.
//
// Grounded on reglet's internal/infrastructure/wasm package (a per-runtime
// wazero.Runtime with WASI preview1 + a host module of capability-backed
// imports), generalized from reglet's compliance-check ABI to this host's
// describe/execute ABI and given a genuinely async Capability Bridge in
// place of reglet's synchronous, directly-dispatched capability checker.
package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/cyrup-ai/kargo/internal/application/bridge"
	"github.com/cyrup-ai/kargo/internal/infrastructure/sandbox/hostfuncs"
)

// globalCache lets repeated LoadModule calls within one process reuse
// compiled code across wazero.Runtime instances.
var globalCache = wazero.NewCompilationCache()

// CloseGlobalCache releases the shared compilation cache. CLI-style
// one-shot invocations can skip this; long-running hosts should call it
// during graceful shutdown.
func CloseGlobalCache(ctx context.Context) error {
	return globalCache.Close(ctx)
}

// Runtime owns one wazero.Runtime plus the Capability Bridge wired into it
// as the backing store for every host function import.
type Runtime struct {
	wz     wazero.Runtime
	bridge *bridge.Bridge

	mu           sync.Mutex
	bridgeCtx    context.Context
	bridgeCancel context.CancelFunc
}

// NewRuntime creates a Runtime around br (or a fresh Capability Bridge
// when br is nil) whose consumer goroutine runs for the Runtime's lifetime.
func NewRuntime(ctx context.Context, br *bridge.Bridge) (*Runtime, error) {
	if br == nil {
		br = bridge.New(nil, bridge.DefaultCapacity)
	}

	config := wazero.NewRuntimeConfig().WithCompilationCache(globalCache)
	wz := wazero.NewRuntimeWithConfig(ctx, config)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, wz); err != nil {
		_ = wz.Close(ctx)
		return nil, fmt.Errorf("sandbox: instantiate WASI: %w", err)
	}

	if err := hostfuncs.Register(ctx, wz, br); err != nil {
		_ = wz.Close(ctx)
		return nil, fmt.Errorf("sandbox: register host functions: %w", err)
	}

	bridgeCtx, cancel := context.WithCancel(context.Background())
	go br.Run(bridgeCtx)

	return &Runtime{wz: wz, bridge: br, bridgeCtx: bridgeCtx, bridgeCancel: cancel}, nil
}

// LoadModule compiles wasmBytes and wraps it as an Extension named name.
func (r *Runtime) LoadModule(ctx context.Context, name string, wasmBytes []byte) (*Extension, error) {
	compiled, err := r.wz.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("sandbox: compile module %s: %w", name, err)
	}
	return &Extension{name: name, module: compiled, runtime: r.wz}, nil
}

// Close tears down the bridge consumer and the wazero runtime.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.bridgeCancel != nil {
		r.bridgeCancel()
	}
	r.mu.Unlock()
	return r.wz.Close(ctx)
}
