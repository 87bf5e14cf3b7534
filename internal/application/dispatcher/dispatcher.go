// Package dispatcher implements the Dispatcher (spec.md §4.8): routing a
// parsed argument vector to the matching extension, the passthrough tool,
// or help/usage output, and translating the outcome into a process exit
// code.
//
// The Composer's cobra tree remains the canonical description of the
// surface (used for --help output and flag metadata); routing decisions
// here work directly off raw argv so residual-argument recovery (spec.md
// §4.8 step 3) is exact rather than reconstructed from parsed flag
// matches, per the spec's explicit preference.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cyrup-ai/kargo/internal/application/ports"
	"github.com/cyrup-ai/kargo/internal/domain/extension"
)

// Exit codes per spec.md §4.8.
const (
	ExitSuccess      = 0
	ExitHostFailure  = 1
	ExitParseFailure = 2
)

// Dispatcher routes argv to the right handler and reports an exit code.
type Dispatcher struct {
	registry        ports.ExtensionRegistry
	root            *cobra.Command
	passthroughName string // subcommand keyword recognized as an explicit passthrough request
	wrappedTool     string // executable name looked up on PATH for any passthrough dispatch
	configDir       string
}

// New creates a Dispatcher. root is the Composer-built tree, used only to
// print help/usage; routing itself works off raw argv. wrappedTool is the
// executable name passthrough dispatch resolves on PATH (spec.md §4.8 step
// 2, first bullet); passthroughName is the reserved subcommand keyword
// that requests passthrough explicitly (Composer.DefaultPassthroughName
// if empty).
func New(registry ports.ExtensionRegistry, root *cobra.Command, passthroughName, wrappedTool, configDir string) *Dispatcher {
	if passthroughName == "" {
		passthroughName = extension.DefaultPassthroughName
	}
	return &Dispatcher{registry: registry, root: root, passthroughName: passthroughName, wrappedTool: wrappedTool, configDir: configDir}
}

// SetRoot attaches the Composer-built tree once it exists. Construction
// order is Dispatcher (no root) → Composer (takes Dispatcher as its
// Executor) → Composer.Build() → SetRoot, breaking what would otherwise
// be a circular dependency between the two packages.
func (d *Dispatcher) SetRoot(root *cobra.Command) {
	d.root = root
}

// Dispatch implements the composer.Executor interface. Every registered
// extension's cobra command (and the passthrough command) sets
// DisableFlagParsing, so the argv composer.Composer hands this is the
// same untouched raw residual spec.md §4.8 step 3 prefers — this is the
// path reached for every matched subcommand in the compiled binary.
func (d *Dispatcher) Dispatch(argv []string) int {
	return d.DispatchContext(context.Background(), argv)
}

// DispatchContext implements the spec.md §4.8 algorithm against raw argv
// (argv[0] is the candidate subcommand name; it does not include the
// program name). cmd/kargo reaches it only through Dispatch above: root's
// RunE for a first token that matched no cobra subcommand at all (spec.md
// §4.8 step 2's "unknown subcommand" branch), and the composed extension
// and passthrough commands for a matched one.
func (d *Dispatcher) DispatchContext(ctx context.Context, argv []string) int {
	if len(argv) == 0 {
		_ = d.root.Help()
		return ExitParseFailure
	}

	name := argv[0]
	residual := argv[1:]

	if name == "help" || name == "-h" || name == "--help" {
		_ = d.root.Help()
		return ExitSuccess
	}

	// A registered extension always shadows the passthrough name on
	// collision (spec.md I2, §4.7 "the extension wins") — so registry
	// lookup runs before the explicit-passthrough check, not after.
	if ext, ok := d.registry.Lookup(name); ok {
		invocationID := uuid.New().String()
		return d.runExtension(ctx, ext, name, residual, invocationID)
	}

	if name == d.passthroughName {
		return d.runPassthrough(ctx, residual)
	}

	// Unknown subcommand: treat as passthrough (spec.md §4.8 step 2,
	// third bullet) — spawn the wrapped tool with [name, ...residual].
	slog.Debug("dispatcher: unknown subcommand, treating as passthrough", "name", name)
	return d.runPassthrough(ctx, argv)
}

// runExtension dispatches into a registered extension. invocationID
// correlates this run's log lines with any Capability Bridge or Task
// Registry activity the extension triggers underneath it — grounded on
// the teacher's use of google/uuid to identify one execution run
// end-to-end (internal/domain/values.ExecutionID) — here scoped to a
// single dispatch rather than a persisted repository key, since this host
// has no execution-result store to key into.
func (d *Dispatcher) runExtension(ctx context.Context, ext extension.Extension, name string, residual []string, invocationID string) int {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	ec := extension.ExecutionContext{
		Argv:       append([]string{name}, residual...),
		CurrentDir: wd,
		ConfigDir:  d.configDir,
	}

	if err := ext.Run(ctx, ec); err != nil {
		var runtimeErr *extension.PluginRuntimeError
		if errors.As(err, &runtimeErr) {
			slog.Error("dispatcher: extension run failed", "name", name, "invocation_id", invocationID, "error", runtimeErr)
		} else {
			slog.Error("dispatcher: extension run failed", "name", name, "invocation_id", invocationID, "error", err)
		}
		return ExitHostFailure
	}
	return ExitSuccess
}

// runPassthrough locates the wrapped tool on PATH and forwards stdio,
// propagating its exit status (spec.md §4.8 step 2, first/third bullets).
func (d *Dispatcher) runPassthrough(ctx context.Context, argv []string) int {
	path, err := exec.LookPath(d.wrappedTool)
	if err != nil {
		slog.Error("dispatcher: failed to locate wrapped tool", "tool", d.wrappedTool, "error", err)
		return ExitHostFailure
	}

	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		slog.Error("dispatcher: failed to run wrapped tool", "tool", d.wrappedTool, "error", err)
		return ExitHostFailure
	}
	return ExitSuccess
}
