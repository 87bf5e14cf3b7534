package extension

import "fmt"

// DuplicateNameError is raised by the Registry when a second extension
// advertises a name already present. Disposition: logged, second loser
// dropped (spec.md §7).
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate extension name %q", e.Name)
}

// BadSpecError is raised by the Composer (or CommandSpec.Validate) when an
// extension's spec cannot be reconciled into the command surface.
// Disposition: surfaced, extension omitted.
type BadSpecError struct {
	Name  string
	Cause string
}

func (e *BadSpecError) Error() string {
	return fmt.Sprintf("bad command spec for %q: %s", e.Name, e.Cause)
}

// PluginRuntimeError wraps a failure returned from Extension.Run.
// Disposition: surfaced to the CLI exit boundary, exit code 1.
type PluginRuntimeError struct {
	Name  string
	Cause error
}

func (e *PluginRuntimeError) Error() string {
	return fmt.Sprintf("extension %q failed: %v", e.Name, e.Cause)
}

func (e *PluginRuntimeError) Unwrap() error { return e.Cause }
