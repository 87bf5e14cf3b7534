package capability

// ReadFile requests the bytes of a host file.
type ReadFile struct {
	Envelope
	Path string
}

func (ReadFile) Tag() string { return "read_file" }

// WriteFile requests that bytes be written to a host file.
type WriteFile struct {
	Envelope
	Path  string
	Bytes []byte
}

func (WriteFile) Tag() string { return "write_file" }

// LogMessage asks the host to emit a structured log line on the guest's
// behalf. Always replies Success (spec.md §4.5).
type LogMessage struct {
	Envelope
	Level string
	Text  string
}

func (LogMessage) Tag() string { return "log_message" }

// GetEnvVar requests the value of a host environment variable.
type GetEnvVar struct {
	Envelope
	Name string
}

func (GetEnvVar) Tag() string { return "get_env_var" }

// SpawnTask asks the Task Registry to admit a new long-running operation.
// Replies Spawned{ID} once admitted (not completed) or Error if the named
// task type is unknown (UnknownTaskType).
type SpawnTask struct {
	Envelope
	Name   string
	Params string
}

func (SpawnTask) Tag() string { return "spawn_task" }

// PollTask asks the Task Registry for the current state of a task.
type PollTask struct {
	Envelope
	TaskID uint64
}

func (PollTask) Tag() string { return "poll_task" }
