//go:build wasip1

package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cyrup-ai/kargo/sdk/abi"
	"github.com/cyrup-ai/kargo/wireformat"
)

var registered Plugin

// Register installs p as the extension this compiled module serves.
// Call it from an init() or main() — whichever runs before the host's
// first describe/execute call reaches the module's exports. Only the
// last call wins; a plugin registers exactly one Plugin.
func Register(p Plugin) {
	registered = p
}

//go:wasmexport _kargo_plugin_get_command_spec_json
func kargoPluginGetCommandSpecJSON(_ uint64) uint64 {
	if registered == nil {
		return mustWriteError("no plugin registered")
	}

	spec, err := registered.Describe(context.Background())
	if err != nil {
		return mustWriteError(err.Error())
	}

	packed, err := abi.PutJSON(commandSpecToWire(spec), json.Marshal)
	if err != nil {
		return mustWriteError(err.Error())
	}
	return packed
}

//go:wasmexport _kargo_plugin_execute
func kargoPluginExecute(argPacked uint64) uint64 {
	if registered == nil {
		return mustWriteResult(wireformat.ExecuteResultJSON{Error: "no plugin registered"})
	}

	data := abi.ReadJSON(argPacked)
	var wire wireformat.ExecutionContextJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return mustWriteResult(wireformat.ExecuteResultJSON{Error: fmt.Sprintf("invalid execution context: %v", err)})
	}

	ec := ExecutionContext{Argv: wire.Argv, CurrentDir: wire.CurrentDir, ConfigDir: wire.ConfigDir}
	if err := registered.Execute(context.Background(), ec); err != nil {
		return mustWriteResult(wireformat.ExecuteResultJSON{Error: err.Error()})
	}
	return mustWriteResult(wireformat.ExecuteResultJSON{OK: true})
}

func mustWriteResult(r wireformat.ExecuteResultJSON) uint64 {
	packed, err := abi.PutJSON(r, json.Marshal)
	if err != nil {
		// Nothing further to report through; stderr is forwarded to the
		// host's own WithStderr(os.Stderr) per internal/infrastructure/sandbox.
		fmt.Fprintf(os.Stderr, "sdk: failed to encode execute result: %v\n", err)
		return 0
	}
	return packed
}

func mustWriteError(msg string) uint64 {
	return mustWriteResult(wireformat.ExecuteResultJSON{Error: msg})
}

func commandSpecToWire(spec CommandSpec) wireformat.CommandSpecJSON {
	wire := wireformat.CommandSpecJSON{Name: spec.Name, About: spec.About}
	for _, a := range spec.Args {
		wire.Args = append(wire.Args, wireformat.ArgJSON{
			ID:            a.ID,
			Short:         a.Short,
			Long:          a.Long,
			Help:          a.Help,
			ValueRequired: a.ValueRequired,
			IsFlag:        a.IsFlag,
			Multiple:      a.Multiple,
		})
	}
	for _, sub := range spec.Subcommands {
		wire.Subcommands = append(wire.Subcommands, commandSpecToWire(sub))
	}
	return wire
}
