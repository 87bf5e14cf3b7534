package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cyrup-ai/kargo/internal/domain/extension"
	"github.com/cyrup-ai/kargo/internal/infrastructure/container"
)

// addInfraCommands wires the CLI surface extras (SPEC_FULL.md §4.7): a
// `kargo plugins list` table, grounded on reglet's cmd/reglet/plugins_list.go
// and whiskeyjimbo-tack-cli's internal/output table formatter, plus a
// `kargo alias` surface-only shell-alias helper built on charmbracelet/huh
// the way reglet's init_aws.go prompts interactively.
func addInfraCommands(root *cobra.Command, c *container.Container) {
	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect loaded extensions",
	}
	pluginsCmd.AddCommand(newPluginsListCmd(c))
	root.AddCommand(pluginsCmd)

	root.AddCommand(newAliasCmd(c))
}

func newPluginsListCmd(c *container.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every extension currently registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			named := c.Registry.Iter()
			if len(named) == 0 {
				fmt.Println("No extensions found on the search path.")
				return nil
			}

			table := tablewriter.NewTable(os.Stdout)
			table.Header("NAME", "KIND", "ABOUT")

			for _, n := range named {
				spec, err := n.Ext.Spec(cmd.Context())
				if err != nil {
					continue
				}
				table.Append(n.Name, kindLabel(n.Ext.Kind()), spec.About)
			}

			return table.Render()
		},
	}
}

func kindLabel(k extension.Kind) string {
	switch k {
	case extension.KindNative:
		return "native"
	case extension.KindSandbox:
		return "sandbox"
	default:
		return "unknown"
	}
}

// newAliasCmd implements spec.md §6.3's "--alias" surface as a real
// subcommand: it only proposes the shell-rc snippet a user would add to
// invoke kargo under the wrapped tool's own name, confirmed interactively.
// It does not exec a shell itself (out of v1 scope, matching spec.md's
// "implementation optional" note on this surface).
func newAliasCmd(c *container.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "alias",
		Short: "Print a shell alias that invokes kargo under the wrapped tool's name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := true
			tool := c.Config.WrappedTool

			err := huh.NewConfirm().
				Title(fmt.Sprintf("Add a shell alias so %q runs through kargo?", tool)).
				Affirmative("Yes").
				Negative("No").
				Value(&confirm).
				Run()
			if err != nil {
				return err
			}
			if !confirm {
				fmt.Println("Skipped.")
				return nil
			}

			exe, err := os.Executable()
			if err != nil {
				exe = "kargo"
			}
			fmt.Printf("alias %s=%q\n", tool, exe)
			fmt.Println("Add the line above to your shell rc file to enable it.")
			return nil
		},
	}
}
