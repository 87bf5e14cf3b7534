package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/cyrup-ai/kargo/internal/domain/extension"
	"github.com/cyrup-ai/kargo/internal/infrastructure/sandbox/hostfuncs"
	"github.com/cyrup-ai/kargo/wireformat"
)

// Extension wraps one compiled WASM module as an extension.Extension,
// serializing every call into its single shared instance (I3: "A
// sandboxed extension's module is mutated by at most one host operation
// at a time"). See DESIGN.md's sandbox section for why this host keeps one
// long-lived instance rather than the teacher's ephemeral-instance-per-call
// approach.
type Extension struct {
	name    string
	module  wazero.CompiledModule
	runtime wazero.Runtime

	mu       sync.Mutex // serializes describe/execute into instance (the Locked state of spec.md's sandbox invocation state machine)
	instance api.Module
	spec     *extension.CommandSpec
}

var _ extension.Extension = (*Extension)(nil)

func (e *Extension) Kind() extension.Kind { return extension.KindSandbox }

// ensureInstance lazily instantiates the module the first time it is
// needed. Caller must hold e.mu.
func (e *Extension) ensureInstance(ctx context.Context) (api.Module, error) {
	if e.instance != nil {
		return e.instance, nil
	}

	config := wazero.NewModuleConfig().
		WithStdout(os.Stderr).
		WithStderr(os.Stderr).
		WithSysWalltime().
		WithSysNanotime()

	instance, err := e.runtime.InstantiateModule(ctx, e.module, config)
	if err != nil {
		return nil, fmt.Errorf("sandbox: instantiate %s: %w", e.name, err)
	}

	if init := instance.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = instance.Close(ctx)
			return nil, fmt.Errorf("sandbox: initialize %s: %w", e.name, err)
		}
	}

	e.instance = instance
	return instance, nil
}

// Spec calls the guest's _kargo_plugin_get_command_spec_json export
// (cached after the first successful call — a CommandSpec is immutable
// for the process lifetime of a loaded module).
func (e *Extension) Spec(ctx context.Context) (extension.CommandSpec, error) {
	ctx = hostfuncs.WithPluginName(ctx, e.name)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.spec != nil {
		return *e.spec, nil
	}

	instance, err := e.ensureInstance(ctx)
	if err != nil {
		return extension.CommandSpec{}, err
	}

	fn := instance.ExportedFunction("_kargo_plugin_get_command_spec_json")
	if fn == nil {
		return extension.CommandSpec{}, fmt.Errorf("sandbox: %s does not export _kargo_plugin_get_command_spec_json", e.name)
	}

	argPacked, err := writeGuestJSON(ctx, instance, struct{}{})
	if err != nil {
		return extension.CommandSpec{}, err
	}

	results, err := fn.Call(ctx, argPacked)
	if err != nil {
		return extension.CommandSpec{}, fmt.Errorf("sandbox: %s: _kargo_plugin_get_command_spec_json: %w", e.name, err)
	}
	if len(results) == 0 {
		return extension.CommandSpec{}, fmt.Errorf("sandbox: %s: _kargo_plugin_get_command_spec_json returned no results", e.name)
	}

	data, err := readGuestJSON(instance, results[0])
	if err != nil {
		return extension.CommandSpec{}, err
	}

	if err := extension.ValidateCommandSpecJSON(data); err != nil {
		return extension.CommandSpec{}, fmt.Errorf("sandbox: %s: %w", e.name, err)
	}

	var wire wireformat.CommandSpecJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return extension.CommandSpec{}, fmt.Errorf("sandbox: %s: invalid command spec JSON: %w", e.name, err)
	}

	spec := commandSpecFromWire(wire)
	e.spec = &spec
	return spec, nil
}

// Run calls the guest's _kargo_plugin_execute export with the serialized
// ExecutionContext and reports success/failure.
//
// Pins the calling goroutine to its OS thread for the guest call's
// duration; only load-bearing if a future guest toolchain compiles to
// cgo-calling host functions, which wazero's pure-Go modes do not today.
func (e *Extension) Run(ctx context.Context, ec extension.ExecutionContext) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx = hostfuncs.WithPluginName(ctx, e.name)

	e.mu.Lock()
	defer e.mu.Unlock()

	instance, err := e.ensureInstance(ctx)
	if err != nil {
		return err
	}

	fn := instance.ExportedFunction("_kargo_plugin_execute")
	if fn == nil {
		return fmt.Errorf("sandbox: %s does not export _kargo_plugin_execute", e.name)
	}

	ctxWire := wireformat.ExecutionContextJSON{
		Argv:       ec.Argv,
		CurrentDir: ec.CurrentDir,
		ConfigDir:  ec.ConfigDir,
	}
	argPacked, err := writeGuestJSON(ctx, instance, ctxWire)
	if err != nil {
		return err
	}

	results, err := fn.Call(ctx, argPacked)
	if err != nil {
		return fmt.Errorf("sandbox: %s: _kargo_plugin_execute: %w", e.name, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("sandbox: %s: _kargo_plugin_execute returned no results", e.name)
	}

	data, err := readGuestJSON(instance, results[0])
	if err != nil {
		return err
	}

	var result wireformat.ExecuteResultJSON
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("sandbox: %s: invalid execute result JSON: %w", e.name, err)
	}
	if !result.OK {
		return fmt.Errorf("sandbox: %s: %s", e.name, result.Error)
	}
	return nil
}

// Close closes the shared instance. The CompiledModule and the owning
// Runtime's wazero.Runtime are released by Runtime.Close.
func (e *Extension) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance == nil {
		return nil
	}
	err := e.instance.Close(ctx)
	e.instance = nil
	return err
}

func commandSpecFromWire(w wireformat.CommandSpecJSON) extension.CommandSpec {
	spec := extension.CommandSpec{Name: w.Name, About: w.About}
	for _, a := range w.Args {
		spec.Args = append(spec.Args, extension.Arg{
			ID:            a.ID,
			Short:         a.Short,
			Long:          a.Long,
			Help:          a.Help,
			ValueRequired: a.ValueRequired,
			IsFlag:        a.IsFlag,
			Multiple:      a.Multiple,
		})
	}
	for _, sub := range w.Subcommands {
		spec.Subcommands = append(spec.Subcommands, commandSpecFromWire(sub))
	}
	return spec
}

// writeGuestJSON marshals v and writes it into the guest's memory via its
// required `alloc` export, returning the packed ptr+len argument to pass
// into a describe/execute call.
func writeGuestJSON(ctx context.Context, instance api.Module, v interface{}) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("sandbox: marshal guest argument: %w", err)
	}

	allocFn := instance.ExportedFunction("alloc")
	if allocFn == nil {
		return 0, fmt.Errorf("sandbox: module does not export alloc()")
	}
	results, err := allocFn.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 {
		return 0, fmt.Errorf("sandbox: alloc() failed: %w", err)
	}
	ptr := uint32(results[0])

	if !instance.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("sandbox: failed to write guest argument at offset %d", ptr)
	}

	return wireformat.PackPtrLen(ptr, uint32(len(data))), nil
}

// readGuestJSON reads the packed ptr+len result a describe/execute call
// returned. Memory ownership returns to the host (spec.md §6.1); this
// implementation copies it out immediately and relies on the guest's own
// allocator bookkeeping rather than an explicit deallocate call, since the
// ABI does not name one for results (only `alloc` is mandated of guests).
func readGuestJSON(instance api.Module, packed uint64) ([]byte, error) {
	ptr, length := wireformat.UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil, fmt.Errorf("sandbox: guest returned null pointer or zero length")
	}
	data, ok := instance.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("sandbox: failed to read guest memory at offset %d", ptr)
	}
	out := make([]byte, length)
	copy(out, data)
	return out, nil
}
