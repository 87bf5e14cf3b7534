//go:build !wasip1

package sdk

// Register is a no-op outside the wasip1 target. It lets a plugin's
// package compile (and its own unit tests run) on the host platform
// without pulling in the wasmexport entrypoints, mirroring reglet-sdk's
// application/plugin/stub.go.
func Register(p Plugin) {}
