//go:build wasip1

// Package hostcall declares the six `kargo_host` imports every sandboxed
// guest links against (spec.md §6.2) and wraps each in a typed Go call,
// grounded on reglet-sdk's go/infrastructure/wasm host_imports.go +
// http_adapter.go pattern: a //go:wasmimport declaration per host
// function, each wrapped in a helper that marshals a wireformat request,
// calls the import, and unmarshals the wireformat response.
package hostcall

import (
	"encoding/json"
	"fmt"

	"github.com/cyrup-ai/kargo/sdk/abi"
	"github.com/cyrup-ai/kargo/wireformat"
)

//go:wasmimport kargo_host read_file
func hostReadFile(requestPacked uint64) uint64

//go:wasmimport kargo_host write_file
func hostWriteFile(requestPacked uint64) uint64

//go:wasmimport kargo_host get_env_var
func hostGetEnvVar(requestPacked uint64) uint64

//go:wasmimport kargo_host spawn_kargo_task
func hostSpawnTask(requestPacked uint64) uint64

//go:wasmimport kargo_host poll_kargo_task
func hostPollTask(requestPacked uint64) uint64

//go:wasmimport kargo_host log_message
func hostLogMessage(requestPacked uint64) uint32

func marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

// ReadFile asks the host to read path on the guest's behalf (spec.md §6.2:
// guests have no direct filesystem access).
func ReadFile(path string) ([]byte, error) {
	packed, err := abi.PutJSON(wireformat.ReadFileRequest{Path: path}, marshal)
	if err != nil {
		return nil, err
	}
	var resp wireformat.ReadFileResponse
	if err := call(hostReadFile(packed), &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("kargo_host: read_file %s: %s", path, resp.Error)
	}
	return resp.Data, nil
}

// WriteFile asks the host to write data to path on the guest's behalf.
func WriteFile(path string, data []byte) error {
	packed, err := abi.PutJSON(wireformat.WriteFileRequest{Path: path, Data: data}, marshal)
	if err != nil {
		return err
	}
	var resp wireformat.WriteFileResponse
	if err := call(hostWriteFile(packed), &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("kargo_host: write_file %s: %s", path, resp.Error)
	}
	return nil
}

// GetEnvVar reads an environment variable from the host process.
func GetEnvVar(name string) (string, error) {
	packed, err := abi.PutJSON(wireformat.GetEnvVarRequest{Name: name}, marshal)
	if err != nil {
		return "", err
	}
	var resp wireformat.GetEnvVarResponse
	if err := call(hostGetEnvVar(packed), &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return "", fmt.Errorf("kargo_host: get_env_var %s: %s", name, resp.Error)
	}
	return resp.Value, nil
}

// SpawnTask enqueues a host task by type name and a params string the
// task type interprets (a duration for "sleep", a command line for "exec"),
// returning the task ID the guest later passes to PollTask (invariant I4:
// IDs are monotonic but otherwise opaque to the guest).
func SpawnTask(taskType string, params string) (uint64, error) {
	packed, err := abi.PutJSON(wireformat.SpawnTaskRequest{Name: taskType, Params: params}, marshal)
	if err != nil {
		return 0, err
	}
	var resp wireformat.SpawnTaskResponse
	if err := call(hostSpawnTask(packed), &resp); err != nil {
		return 0, err
	}
	if !resp.OK {
		return 0, fmt.Errorf("kargo_host: spawn_kargo_task %s: %s", taskType, resp.Error)
	}
	return resp.TaskID, nil
}

// PollTask reports whether a spawned task has completed. ready is false
// while the task is still Running; the guest is expected to poll again.
func PollTask(taskID uint64) (ready bool, data []byte, err error) {
	packed, err := abi.PutJSON(wireformat.PollTaskRequest{TaskID: taskID}, marshal)
	if err != nil {
		return false, nil, err
	}
	var resp wireformat.PollTaskResponse
	if err := call(hostPollTask(packed), &resp); err != nil {
		return false, nil, err
	}
	if !resp.Ready {
		return false, nil, nil
	}
	if !resp.OK {
		return true, nil, fmt.Errorf("kargo_host: poll_kargo_task %d: %s", taskID, resp.Error)
	}
	return true, resp.Data, nil
}

// LogMessage forwards a log line to the host's own structured logger
// instead of writing to the guest's stdout/stderr directly.
func LogMessage(level, message string) {
	packed, err := abi.PutJSON(wireformat.LogMessageRequest{Level: level, Message: message}, marshal)
	if err != nil {
		return
	}
	_ = hostLogMessage(packed)
}

func call(packed uint64, out interface{}) error {
	data := abi.ReadJSON(packed)
	if data == nil {
		return fmt.Errorf("kargo_host: empty response")
	}
	return json.Unmarshal(data, out)
}
