package extension

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jsonschemavalidate "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cyrup-ai/kargo/wireformat"
)

// commandSpecSchema is compiled once from wireformat.CommandSpecJSON's
// struct tags (invopop/jsonschema reflection, ground: reglet-sdk's
// application/schema.GenerateSchema) and reused for every sandboxed guest's
// describe response — a native plugin already hands over a typed Go struct
// and skips this path entirely.
var (
	schemaOnce        sync.Once
	commandSpecSchema *jsonschemavalidate.Schema
	schemaErr         error
)

func compileCommandSpecSchema() (*jsonschemavalidate.Schema, error) {
	schemaOnce.Do(func() {
		reflector := jsonschema.Reflector{ExpandedStruct: true}
		reflected := reflector.Reflect(&wireformat.CommandSpecJSON{})

		raw, err := json.Marshal(reflected)
		if err != nil {
			schemaErr = fmt.Errorf("extension: marshal generated schema: %w", err)
			return
		}

		compiler := jsonschemavalidate.NewCompiler()
		compiler.Draft = jsonschemavalidate.Draft2020
		if err := compiler.AddResource("command-spec.json", bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("extension: add schema resource: %w", err)
			return
		}
		commandSpecSchema, schemaErr = compiler.Compile("command-spec.json")
	})
	return commandSpecSchema, schemaErr
}

// ValidateCommandSpecJSON checks raw describe-response bytes from a
// sandboxed guest against the CommandSpec JSON Schema before the host ever
// unmarshals them into a Go struct (spec.md §6.2 "the host validates the
// wire payload's shape before trusting it"). A guest returning malformed
// JSON fails here with a readable error rather than surfacing as a
// confusing zero-value CommandSpec downstream.
func ValidateCommandSpecJSON(data []byte) error {
	schema, err := compileCommandSpecSchema()
	if err != nil {
		return err
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("extension: command spec is not valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return &BadSpecError{Cause: fmt.Sprintf("command spec failed schema validation: %v", err)}
	}
	return nil
}
