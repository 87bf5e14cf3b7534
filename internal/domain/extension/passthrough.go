package extension

// DefaultPassthroughName is the subcommand keyword reserved for explicit
// passthrough to the wrapped tool when no extension claims the invoked
// verb (spec.md §4.8, §6.3: "<subcommand> == cargo -> explicit
// passthrough"). It matches the wrapped tool's own name by default so
// `kargo cargo build` reads the same as `cargo build`; config.PassthroughName
// overrides it for hosts wrapping a different tool. Shared between the
// Composer (surface description) and the Dispatcher (routing) so both
// agree on the reserved word without importing one another.
//
// Deliberately not "--": that token is pflag's own end-of-flags marker,
// and a subcommand registered under it would never actually be reached by
// cobra's lookup (see DESIGN.md, Open Question ii).
const DefaultPassthroughName = "cargo"
