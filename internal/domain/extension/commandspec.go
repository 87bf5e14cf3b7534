package extension

// CommandSpec describes one subcommand: its name, help text, flags, and
// nested subcommands. It is the only shape the host understands — a
// sandboxed guest serializes this exact struct as JSON across the ABI
// boundary (see wireformat.CommandSpecJSON and sdk/register_wasm.go).
type CommandSpec struct {
	Name        string        `json:"name"`
	About       string        `json:"about,omitempty"`
	Args        []Arg         `json:"args,omitempty"`
	Subcommands []CommandSpec `json:"subcommands,omitempty"`
}

// Arg describes a single flag or positional argument of a CommandSpec.
type Arg struct {
	// ID is the canonical name used to look the value up after parsing.
	ID string `json:"id"`

	// Short is an optional single-character alias (e.g. "o" for "-o").
	Short string `json:"short,omitempty"`

	// Long is an optional long flag name (e.g. "output" for "--output").
	// When Long is empty the Composer registers the flag under ID; every
	// arg becomes a flag, and positional args are not supported.
	Long string `json:"long,omitempty"`

	Help string `json:"help,omitempty"`

	// ValueRequired is true for flags that take a value (--output FILE);
	// false for boolean switches (--verbose).
	ValueRequired bool `json:"value_required"`

	// IsFlag marks a boolean switch. Mutually exclusive with
	// ValueRequired in well-formed specs, but the host does not reject
	// the combination — IsFlag wins.
	IsFlag bool `json:"is_flag"`

	// Multiple allows the flag to be repeated, accumulating values.
	Multiple bool `json:"multiple"`
}

// Validate reports the first structural problem found in this node of the
// spec (name, arg ids), or nil. It deliberately does not descend into
// Subcommands: Registry.Insert calls it shallowly (it only needs the top
// level Name to key the map), while the Composer calls it once per node
// as it recursively walks Subcommands into the cobra tree — so a
// malformed nested subcommand surfaces as BadSpecError at composition
// time, matching spec.md §7's table ("BadSpecError | Composer | surfaced;
// extension omitted").
func (c CommandSpec) Validate() error {
	if c.Name == "" {
		return &BadSpecError{Name: c.Name, Cause: "command name must not be empty"}
	}
	seen := make(map[string]bool, len(c.Args))
	for _, a := range c.Args {
		if a.ID == "" {
			return &BadSpecError{Name: c.Name, Cause: "arg id must not be empty"}
		}
		if seen[a.ID] {
			return &BadSpecError{Name: c.Name, Cause: "duplicate arg id " + a.ID}
		}
		seen[a.ID] = true
	}
	return nil
}
