//go:build !wasip1

// Package hostcall (see hostcall.go for the wasip1 build) provides stub
// implementations so a plugin's own code compiles and unit-tests on the
// host platform without wazero in the loop, grounded on reglet-sdk's
// exec_stub.go split.
package hostcall

import "errors"

// ErrNotSandboxed is returned by every function in this package outside
// the wasip1 target, where there is no kargo_host to call into.
var ErrNotSandboxed = errors.New("hostcall: not available outside the sandboxed wasip1 target")

func ReadFile(path string) ([]byte, error) { return nil, ErrNotSandboxed }

func WriteFile(path string, data []byte) error { return ErrNotSandboxed }

func GetEnvVar(name string) (string, error) { return "", ErrNotSandboxed }

func SpawnTask(taskType string, params string) (uint64, error) { return 0, ErrNotSandboxed }

func PollTask(taskID uint64) (ready bool, data []byte, err error) { return false, nil, ErrNotSandboxed }

func LogMessage(level, message string) {}
