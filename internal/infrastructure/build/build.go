// Package build implements the Discovery source-project build step
// (spec.md §4.2, "SourceProject: decide whether to rebuild by comparing
// the newest source modification time against the existing artifact's
// modification time"). Grounded on reglet's cmd/reglet/create_plugin.go
// (invoking `go build` for a plugin skeleton) generalized to cover both
// the native `-buildmode=plugin` target and the WASI/wasm32 target a
// source project's own directive selects.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Builder invokes the Go toolchain against a source-project candidate.
type Builder struct {
	// GoTool is the `go` executable name, overridable for tests.
	GoTool string

	// TinygoTool is the `tinygo` executable name, preferred for WASM
	// artifacts when present on PATH (smaller, WASI-complete output);
	// falls back to GoTool with GOOS=wasip1 GOARCH=wasm when absent.
	TinygoTool string
}

// New creates a Builder using "go" and "tinygo" from PATH.
func New() *Builder {
	return &Builder{GoTool: "go", TinygoTool: "tinygo"}
}

// Build compiles the source project rooted at dir. It returns the path to
// the produced artifact and whether that artifact is a WASM module
// (false means a native shared object). name (the caller passes the
// project directory's base name) determines the artifact's base filename;
// the project's own //kargo:target directive selects native or wasm.
func (b *Builder) Build(ctx context.Context, dir, name string) (artifactPath string, isWasm bool, err error) {
	isWasm = hasWasmDirective(dir)

	if isWasm {
		artifactPath = filepath.Join(dir, name+".wasm")
	} else {
		artifactPath = filepath.Join(dir, nativeArtifactName(name))
	}

	stale, err := isStale(dir, artifactPath)
	if err != nil {
		return "", false, fmt.Errorf("build: stat %s: %w", dir, err)
	}
	if !stale {
		return artifactPath, isWasm, nil
	}

	var cmd *exec.Cmd
	if isWasm {
		if tinygoPath, lookErr := exec.LookPath(b.TinygoTool); lookErr == nil {
			cmd = exec.CommandContext(ctx, tinygoPath, "build", "-o", artifactPath, "-target=wasi", ".")
		} else {
			cmd = exec.CommandContext(ctx, b.GoTool, "build", "-o", artifactPath, ".")
			cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm")
		}
	} else {
		cmd = exec.CommandContext(ctx, b.GoTool, "build", "-buildmode=plugin", "-o", artifactPath, ".")
	}
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", false, fmt.Errorf("build: %s: %w: %s", dir, err, stderr.String())
	}

	return artifactPath, isWasm, nil
}

// hasWasmDirective scans dir's top-level .go files for //kargo:target wasm;
// any other (or absent) target value builds the native plugin form.
func hasWasmDirective(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if strings.Contains(string(data), "//kargo:target wasm") {
			return true
		}
	}
	return false
}

func nativeArtifactName(name string) string {
	switch runtime.GOOS {
	case "darwin":
		return "lib" + name + ".dylib"
	case "windows":
		return name + ".dll"
	default:
		return "lib" + name + ".so"
	}
}

// isStale reports whether the newest .go file under dir is newer than
// artifactPath, or artifactPath does not exist yet.
func isStale(dir, artifactPath string) (bool, error) {
	artifactInfo, err := os.Stat(artifactPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	var newestSource time.Time
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newestSource) {
			newestSource = info.ModTime()
		}
	}

	return newestSource.After(artifactInfo.ModTime()), nil
}
