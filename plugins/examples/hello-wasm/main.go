//kargo:plugin
//kargo:target wasm

// Package main is an example kargo sandboxed extension: it builds with
// GOOS=wasip1 GOARCH=wasm into a .wasm module Discovery loads through the
// wazero runtime (spec.md §4.4), importing only sdk/ — never any
// internal/ host package — since it runs in a separate WASM instance
// with no shared memory or Go runtime.
package main

import (
	"context"
	"log/slog"

	"github.com/cyrup-ai/kargo/sdk"
	"github.com/cyrup-ai/kargo/sdk/hostcall"
	"github.com/cyrup-ai/kargo/sdk/sdklog"
)

func init() {
	slog.SetDefault(slog.New(sdklog.NewHandler()))
	sdk.Register(&helloExtension{})
}

// main is required by the wasip1 build target but never runs any guest
// logic itself — the host calls the module's exports directly.
func main() {}

type helloExtension struct{}

func (h *helloExtension) Describe(context.Context) (sdk.CommandSpec, error) {
	return sdk.CommandSpec{
		Name:  "hello-wasm",
		About: "print a greeting from a sandboxed kargo extension",
		Args: []sdk.Arg{
			{ID: "name", Long: "name", Help: "name to greet", ValueRequired: true},
		},
	}, nil
}

func (h *helloExtension) Execute(_ context.Context, ec sdk.ExecutionContext) error {
	name := "world"
	for i, a := range ec.Argv {
		if a == "--name" && i+1 < len(ec.Argv) {
			name = ec.Argv[i+1]
		}
	}

	if v, err := hostcall.GetEnvVar("USER"); err == nil && v != "" {
		slog.Info("greeting requested", "invoked_by", v)
	}

	hostcall.LogMessage("info", "hello, "+name+" (sandboxed)")
	return nil
}
