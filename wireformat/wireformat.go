// Package wireformat defines the JSON payloads and pointer-packing
// convention shared by the host and every sandboxed guest across the WASM
// ABI boundary (spec.md §6.2). It has no dependency on wazero or any other
// host-only package so guest-side Go code (sdk/) can import it too,
// grounded on reglet's standalone wireformat module serving both sides of
// its own wazero boundary.
package wireformat

// PackPtrLen packs a WASM32 pointer and length into the single uint64
// every guest export/import in this ABI uses for "JSON in, JSON out" and
// "ptr+len" parameters.
func PackPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// UnpackPtrLen reverses PackPtrLen.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed & 0xFFFFFFFF)
}

// CommandSpecJSON mirrors extension.CommandSpec's JSON shape so this
// package's decoders don't need to import the domain package (keeping the
// wire contract independent of internal Go types, per spec.md "sandboxed
// guests serialize it as JSON across the boundary").
type CommandSpecJSON struct {
	Name        string            `json:"name"`
	About       string            `json:"about,omitempty"`
	Args        []ArgJSON         `json:"args,omitempty"`
	Subcommands []CommandSpecJSON `json:"subcommands,omitempty"`
}

type ArgJSON struct {
	ID            string `json:"id"`
	Short         string `json:"short,omitempty"`
	Long          string `json:"long,omitempty"`
	Help          string `json:"help,omitempty"`
	ValueRequired bool   `json:"value_required"`
	IsFlag        bool   `json:"is_flag"`
	Multiple      bool   `json:"multiple"`
}

// ExecutionContextJSON mirrors extension.ExecutionContext.
type ExecutionContextJSON struct {
	Argv       []string `json:"argv"`
	CurrentDir string   `json:"current_dir"`
	ConfigDir  string   `json:"config_dir"`
}

// ExecuteResultJSON is the result payload _kargo_plugin_execute returns.
type ExecuteResultJSON struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
