package extension

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandSpec_ValidateRejectsEmptyName(t *testing.T) {
	spec := CommandSpec{Name: ""}
	err := spec.Validate()
	var bad *BadSpecError
	assert.True(t, errors.As(err, &bad))
}

func TestCommandSpec_ValidateRejectsDuplicateArgID(t *testing.T) {
	spec := CommandSpec{
		Name: "mddoc",
		Args: []Arg{
			{ID: "output"},
			{ID: "output"},
		},
	}
	err := spec.Validate()
	var bad *BadSpecError
	assert.True(t, errors.As(err, &bad))
}

func TestCommandSpec_ValidateRejectsEmptyArgID(t *testing.T) {
	spec := CommandSpec{Name: "mddoc", Args: []Arg{{ID: ""}}}
	assert.Error(t, spec.Validate())
}

func TestCommandSpec_ValidateAcceptsWellFormedSpec(t *testing.T) {
	spec := CommandSpec{
		Name:  "mddoc",
		About: "generate markdown docs",
		Args: []Arg{
			{ID: "crate", Help: "crate@version to document"},
			{ID: "output", Short: "o", Long: "output", ValueRequired: true},
		},
		Subcommands: []CommandSpec{
			{Name: "clean"},
		},
	}
	assert.NoError(t, spec.Validate())
}
