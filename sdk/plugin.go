// Package sdk is the guest-side API a kargo extension written in Go
// compiles against to target the sandboxed WASM ABI (spec.md §6). It
// mirrors reglet-sdk's top-level "implement Plugin, call Register in
// init()" shape (application/plugin/stub.go), adapted to kargo's simpler
// two-export ABI: describe once, execute once per invocation, instead of
// reglet's reflection-based multi-operation service registry — kargo
// extensions expose a single command tree, not a set of independently
// dispatched operations.
package sdk

import "context"

// Arg describes one flag or positional argument a CommandSpec accepts,
// mirroring extension.Arg on the host side (wireformat.ArgJSON is the
// wire shape both ends agree on).
type Arg struct {
	ID            string
	Short         string
	Long          string
	Help          string
	ValueRequired bool
	IsFlag        bool
	Multiple      bool
}

// CommandSpec describes one subcommand (and, recursively, its own
// subcommands) an extension contributes to the composed CLI tree.
type CommandSpec struct {
	Name        string
	About       string
	Args        []Arg
	Subcommands []CommandSpec
}

// ExecutionContext carries everything Run needs to act: the argv the
// dispatcher routed to this extension (with the command name itself as
// argv[0]), the directory kargo was invoked from, and kargo's config
// directory (for an extension that wants to read sibling config).
type ExecutionContext struct {
	Argv       []string
	CurrentDir string
	ConfigDir  string
}

// Plugin is the interface a kargo extension implements. Describe is
// called once per process lifetime (spec.md: "a CommandSpec is immutable
// for the process lifetime of a loaded module"); Execute runs once per
// invocation, serialized by the host (invariant I3) so a Plugin never
// needs its own locking around shared state.
type Plugin interface {
	Describe(ctx context.Context) (CommandSpec, error)
	Execute(ctx context.Context, ec ExecutionContext) error
}
