//go:build !wasip1

package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePlugin struct {
	spec    CommandSpec
	ran     ExecutionContext
	execErr error
}

func (f *fakePlugin) Describe(context.Context) (CommandSpec, error) { return f.spec, nil }

func (f *fakePlugin) Execute(_ context.Context, ec ExecutionContext) error {
	f.ran = ec
	return f.execErr
}

func TestRegisterIsNoopOutsideWasm(t *testing.T) {
	p := &fakePlugin{spec: CommandSpec{Name: "demo"}}
	assert.NotPanics(t, func() { Register(p) })
}

func TestCommandSpecShape(t *testing.T) {
	spec := CommandSpec{
		Name:  "build",
		About: "build the project",
		Args: []Arg{
			{ID: "release", Long: "release", IsFlag: true, Help: "build in release mode"},
		},
		Subcommands: []CommandSpec{
			{Name: "clean", About: "remove build artifacts"},
		},
	}

	assert.Equal(t, "build", spec.Name)
	assert.Len(t, spec.Args, 1)
	assert.True(t, spec.Args[0].IsFlag)
	assert.Len(t, spec.Subcommands, 1)
	assert.Equal(t, "clean", spec.Subcommands[0].Name)
}
