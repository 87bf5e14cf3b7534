// Package composer builds a single cobra.Command tree out of every loaded
// extension's CommandSpec (spec.md §4.7), plus a fixed passthrough
// subcommand. Grounded on reglet's cmd/reglet command-building idiom
// (cmd/reglet/root.go, cmd/reglet/plugins.go): one *cobra.Command per
// concept, flags attached via cobra.Command.Flags(), RunE closures.
//
// The composed tree is the surface description used for --help output
// and flag metadata (SPEC_FULL.md §4.7), but every extension command
// (top-level and nested alike) sets DisableFlagParsing, the same way
// buildPassthroughCommand already did — so cobra's role in routing is
// limited to walking the Use-name chain down to the matched command;
// the raw residual argv cobra hands that command's RunE is exactly what
// spec.md §4.8 step 3 prefers over reconstructing from parsed matches,
// and is what reaches internal/application/dispatcher via Executor.
package composer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cyrup-ai/kargo/internal/application/ports"
	"github.com/cyrup-ai/kargo/internal/domain/extension"
)

// DefaultPassthroughName re-exports extension.DefaultPassthroughName for
// callers that only import this package.
const DefaultPassthroughName = extension.DefaultPassthroughName

// Executor runs argv (the raw residual a DisableFlagParsing cobra command
// received, prefixed with its commandPath) through the same routing logic
// Dispatcher.DispatchContext uses, returning a process exit code. The
// Dispatcher implements this.
type Executor interface {
	Dispatch(argv []string) int
}

// Composer builds the root *cobra.Command tree for a registry snapshot.
type Composer struct {
	registry        ports.ExtensionRegistry
	exec            Executor
	passthroughName string
}

// New creates a Composer. passthroughName defaults to DefaultPassthroughName
// when empty.
func New(registry ports.ExtensionRegistry, exec Executor, passthroughName string) *Composer {
	if passthroughName == "" {
		passthroughName = DefaultPassthroughName
	}
	return &Composer{registry: registry, exec: exec, passthroughName: passthroughName}
}

// Build constructs the root command. Each top-level extension becomes a
// subcommand of root; CommandSpec.Subcommands nest recursively. Name
// collisions between two extensions are impossible here because the
// Registry already rejects duplicate names at Insert time (I1); this
// function still returns an error on malformed specs defensively.
func (c *Composer) Build(use, short string) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	for _, named := range c.registry.Iter() {
		spec, err := named.Ext.Spec(root.Context())
		if err != nil {
			return nil, fmt.Errorf("composer: %s: spec: %w", named.Name, err)
		}
		cmd, err := c.buildExtensionCommand(spec)
		if err != nil {
			return nil, fmt.Errorf("composer: %s: %w", named.Name, err)
		}
		root.AddCommand(cmd)
	}

	root.AddCommand(c.buildPassthroughCommand())

	return root, nil
}

func (c *Composer) buildExtensionCommand(spec extension.CommandSpec) (*cobra.Command, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cmd := &cobra.Command{
		Use:                spec.Name,
		Short:              spec.About,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// cmd may be a nested Subcommands entry, not the top-level
			// extension Registry.Lookup knows by name — commandPath
			// rebuilds the full [topLevelName, ...nested names] prefix
			// cobra's own traversal already matched, so Dispatch always
			// sees the same argv shape DispatchContext expects
			// (argv[0] == the registered extension name) regardless of
			// how deep cobra descended to find this command.
			argv := append(commandPath(cmd), args...)
			if code := c.exec.Dispatch(argv); code != 0 {
				return &ExitCodeError{Code: code}
			}
			return nil
		},
	}

	for _, arg := range spec.Args {
		addArgFlag(cmd, arg)
	}

	for _, sub := range spec.Subcommands {
		subCmd, err := c.buildExtensionCommand(sub)
		if err != nil {
			return nil, err
		}
		cmd.AddCommand(subCmd)
	}

	return cmd, nil
}

// buildPassthroughCommand builds the fixed subcommand that recovers raw
// argv for the wrapped tool (spec.md §4.8: "residual argv recovery is
// preferred over reconstructing from parsed matches").
func (c *Composer) buildPassthroughCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:                c.passthroughName + " [args...]",
		Short:              "Pass arguments straight through to the wrapped tool",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{c.passthroughName}, args...)
			if code := c.exec.Dispatch(argv); code != 0 {
				return &ExitCodeError{Code: code}
			}
			return nil
		},
	}
	return cmd
}

// addArgFlag registers arg on cmd's flag set purely as --help/usage
// metadata (DisableFlagParsing means cobra never actually consumes these
// during routing) — but the StringP/BoolP/StringArrayP shorthand forms
// are still used whenever arg.Short is set, so that metadata (and a
// `--help` listing's "-o, --output") match what a real invocation's "-o"
// means, per SPEC_FULL.md §4.7.
func addArgFlag(cmd *cobra.Command, arg extension.Arg) {
	flags := cmd.Flags()
	name := longOrID(arg)
	switch {
	case arg.IsFlag:
		if arg.Short != "" {
			flags.BoolP(name, arg.Short, false, arg.Help)
		} else {
			flags.Bool(name, false, arg.Help)
		}
	case arg.Multiple:
		if arg.Short != "" {
			flags.StringArrayP(name, arg.Short, nil, arg.Help)
		} else {
			flags.StringArray(name, nil, arg.Help)
		}
	default:
		if arg.Short != "" {
			flags.StringP(name, arg.Short, "", arg.Help)
		} else {
			flags.String(name, "", arg.Help)
		}
	}
}

func longOrID(arg extension.Arg) string {
	if arg.Long != "" {
		return arg.Long
	}
	return arg.ID
}

// commandPath rebuilds the Use-name chain from (but not including) root
// down to cmd, e.g. ["mddoc", "sub"] for a command nested one level under
// the "mddoc" extension's own subtree. The first element is always the
// name the Registry/Dispatcher know the extension by.
func commandPath(cmd *cobra.Command) []string {
	var parts []string
	for c := cmd; c != nil && c.Parent() != nil; c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return parts
}

// ExitCodeError carries a non-zero exit code up through cobra's RunE
// without needing a sentinel string comparison.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
