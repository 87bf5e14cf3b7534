// Package discovery implements Discovery (spec.md §4.2): walking the
// search path, classifying candidates by shape, triggering builds for
// source projects, and feeding successfully loaded extensions into the
// Registry. Grounded on reglet's internal/infrastructure/plugins/repository
// (directory-walk-and-classify style) and cmd/reglet/create_plugin.go /
// init.go (manifest-driven project recognition), adapted from reglet's
// OCI-cache-directory shape to this host's local search-path shape.
package discovery

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cyrup-ai/kargo/internal/application/registry"
	"github.com/cyrup-ai/kargo/internal/domain/extension"
	"github.com/cyrup-ai/kargo/internal/infrastructure/build"
	"github.com/cyrup-ai/kargo/internal/infrastructure/native"
	"github.com/cyrup-ai/kargo/internal/infrastructure/sandbox"
	"github.com/cyrup-ai/kargo/internal/version"
)

// The manifestDirective* constants are the directive comments Go has no
// Cargo.toml equivalent for, so a source project is recognized by scanning
// its root .go files for manifestDirectivePlugin instead of a manifest key
// (SPEC_FULL.md §4.2 "manifest recognition & build").
// manifestDirectiveRequires is optional: a source project that omits it is
// assumed compatible with every host version (DESIGN.md, discovery).
const (
	manifestDirectivePlugin   = "//kargo:plugin"
	manifestDirectiveTarget   = "//kargo:target"
	manifestDirectiveRequires = "//kargo:requires"
)

// Kind classifies a discovered candidate by shape (spec.md §3 "Extension
// Artifact").
type Kind int

const (
	KindSharedObject Kind = iota
	KindWasmModule
	KindSourceProject
)

// Candidate is one classified filesystem entry awaiting adaptation into
// an extension.Extension.
type Candidate struct {
	Kind Kind
	Path string // file path for SharedObject/WasmModule, directory for SourceProject
}

// Discoverer walks a search path and populates a Registry. Each failure
// is logged and the candidate skipped — Discovery never aborts (spec.md
// §4.2 "Failure policy").
type Discoverer struct {
	runtime *sandbox.Runtime
	builder *build.Builder
}

// New creates a Discoverer. runtime backs every WasmModule candidate it
// loads; builder compiles SourceProject candidates before they become
// SharedObject or WasmModule candidates.
func New(sandboxRuntime *sandbox.Runtime, builder *build.Builder) *Discoverer {
	return &Discoverer{runtime: sandboxRuntime, builder: builder}
}

// Run walks searchPaths in order and inserts every successfully adapted
// extension into reg. Earlier paths shadow later ones by command name
// (spec.md §3 "Search Path"), which the Registry's first-loaded-wins
// insertion already enforces.
//
// Within a single directory, candidates are built/loaded concurrently via
// errgroup (Registry.Insert's doc comment already anticipates "Discovery
// may probe candidates in parallel"), but Insert calls happen afterward,
// sequentially, in classify's original order — preserving the insertion
// order invariant (I1) that parallel, racing Insert calls would otherwise
// scramble.
func (d *Discoverer) Run(ctx context.Context, reg *registry.Registry, searchPaths []string) {
	for _, dir := range searchPaths {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		candidates := classify(dir)
		prepared := make([]extension.Extension, len(candidates))

		g, gctx := errgroup.WithContext(ctx)
		for i, cand := range candidates {
			i, cand := i, cand
			g.Go(func() error {
				ext, err := d.prepare(gctx, cand)
				if err != nil {
					slog.Warn("discovery: failed to prepare candidate", "path", cand.Path, "error", err)
					return nil // candidate failures are non-fatal to the group
				}
				prepared[i] = ext
				return nil
			})
		}
		_ = g.Wait() // prepare never returns a group-aborting error; see above

		for i, ext := range prepared {
			if ext == nil {
				continue
			}
			if err := reg.Insert(ctx, ext); err != nil {
				slog.Warn("discovery: failed to register extension", "path", candidates[i].Path, "error", err)
			}
		}
	}
}

// classify implements spec.md §4.2 step 2: a directory is itself a
// source-project candidate if it carries the manifest marker; otherwise
// its immediate children are classified individually.
func classify(dir string) []Candidate {
	if isSourceProject(dir) {
		return []Candidate{{Kind: KindSourceProject, Path: dir}}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("discovery: failed to read search directory", "dir", dir, "error", err)
		return nil
	}

	var out []Candidate
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if isSourceProject(full) {
				out = append(out, Candidate{Kind: KindSourceProject, Path: full})
			}
		case strings.HasSuffix(entry.Name(), ".wasm"):
			out = append(out, Candidate{Kind: KindWasmModule, Path: full})
		case strings.HasSuffix(entry.Name(), sharedObjectSuffix()):
			out = append(out, Candidate{Kind: KindSharedObject, Path: full})
		}
	}
	return out
}

func sharedObjectSuffix() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// isSourceProject scans dir's top-level .go files for the manifest
// directive comment (SPEC_FULL.md §4.2).
func isSourceProject(dir string) bool {
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
		if strings.Contains(string(data), manifestDirectivePlugin) {
			return true
		}
	}
	return false
}

// targetName is the package name used to construct the expected build
// artifact filename (spec.md §4.2 "reading the package name from the
// manifest"). Cargo reads this from [package] name in Cargo.toml; Go has
// no equivalent manifest field, so this host takes the source project's
// directory name instead — //kargo:target is reserved exclusively for the
// native|wasm build-kind selector (SPEC_FULL.md §4.2), not a name.
func targetName(dir string) string {
	return filepath.Base(dir)
}

// requiresConstraint reads the optional //kargo:requires CONSTRAINT
// directive out of a source project's .go files (e.g. ">=0.1.0"). An
// empty return means no constraint was declared.
func requiresConstraint(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, manifestDirectiveRequires) {
				c := strings.TrimSpace(strings.TrimPrefix(line, manifestDirectiveRequires))
				if c != "" {
					return c
				}
			}
		}
	}
	return ""
}

// checkRequires reports whether version.Current satisfies dir's declared
// //kargo:requires constraint, if any (DESIGN.md, discovery — the
// mechanism reglet-sdk's own MinHostVersion field left as a placeholder). A malformed constraint or version is treated as
// unsatisfied rather than ignored, so a broken manifest fails loudly
// instead of silently loading against an incompatible host.
func checkRequires(dir string) error {
	c := requiresConstraint(dir)
	if c == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		return err
	}
	hostVersion, err := semver.NewVersion(version.Current)
	if err != nil {
		return err
	}
	if !constraint.Check(hostVersion) {
		return &hostVersionError{dir: dir, constraint: c, host: version.Current}
	}
	return nil
}

type hostVersionError struct {
	dir        string
	constraint string
	host       string
}

func (e *hostVersionError) Error() string {
	return "host version " + e.host + " does not satisfy " + e.constraint + " required by " + e.dir
}

// prepare adapts one candidate into an extension without inserting it,
// returning the error on any failure; Run logs it and skips the candidate
// per spec.md §4.2/§7 (DiscoveryFailure, BuildFailure, LoadFailure,
// SandboxInstantiation are all non-fatal there) and inserts the successful
// results afterward, in order.
func (d *Discoverer) prepare(ctx context.Context, cand Candidate) (extension.Extension, error) {
	path := cand.Path
	kind := cand.Kind

	if kind == KindSourceProject {
		if err := checkRequires(path); err != nil {
			return nil, err
		}

		name := targetName(path)
		artifact, wantWasm, err := d.builder.Build(ctx, path, name)
		if err != nil {
			return nil, err
		}
		path = artifact
		if wantWasm {
			kind = KindWasmModule
		} else {
			kind = KindSharedObject
		}
	}

	switch kind {
	case KindSharedObject:
		return native.Load(path)

	case KindWasmModule:
		wasmBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return d.runtime.LoadModule(ctx, filepath.Base(path), wasmBytes)
	}

	return nil, nil
}
