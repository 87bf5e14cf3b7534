//kargo:plugin
//kargo:target native

// Package main is an example kargo native extension: it builds with
// `go build -buildmode=plugin` into a shared object Discovery loads
// directly in-process (spec.md §4.3), so it imports the host's own
// extension/native packages rather than going through the sdk/ module —
// a native plugin and the kargo binary share a process and a Go runtime.
package main

import (
	"context"
	"fmt"

	"github.com/cyrup-ai/kargo/internal/domain/extension"
	"github.com/cyrup-ai/kargo/internal/infrastructure/native"
)

// KargoPluginCreate is the fixed ABI symbol native.Load resolves
// (internal/infrastructure/native.CreateSymbol).
func KargoPluginCreate() native.PluginAPI {
	return &helloExtension{}
}

type helloExtension struct{}

func (h *helloExtension) Spec(context.Context) (extension.CommandSpec, error) {
	return extension.CommandSpec{
		Name:  "hello-native",
		About: "print a greeting from an in-process kargo extension",
		Args: []extension.Arg{
			{ID: "name", Long: "name", Help: "name to greet", ValueRequired: true},
		},
	}, nil
}

func (h *helloExtension) Run(_ context.Context, ec extension.ExecutionContext) error {
	name := "world"
	for i, a := range ec.Argv {
		if a == "--name" && i+1 < len(ec.Argv) {
			name = ec.Argv[i+1]
		}
	}
	fmt.Printf("hello, %s (native)\n", name)
	return nil
}
