// Package config loads kargo's own configuration: search paths, the
// passthrough/wrapped-tool name, and dev-mode. Grounded on reglet's
// internal/infrastructure/system.Config (a goccy/go-yaml struct, loaded by
// reading the file directly with yaml.Unmarshal and falling back to safe
// defaults when it is absent) for the file-decode step, and on
// cmd/reglet/root.go's viper wiring for the environment-variable overlay
// (AutomaticEnv with a KARGO_ prefix) layered on top of the decoded file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"
)

// validate is a package-level singleton, grounded on reglet-sdk's
// validation.go: constructing a validator.Validate is expensive enough to
// reuse rather than build per call.
var validate = validator.New()

// EnvPluginPath is KARGO_PLUGIN_PATH (spec.md §6.4): a platform
// path-separated list of extension search directories, first match wins
// on name collision.
const EnvPluginPath = "KARGO_PLUGIN_PATH"

// EnvDevMode is KARGO_DEV (SPEC_FULL.md §4.2 Discovery expansion): when
// set to "1", SearchPaths also includes every <go.work root>/*/plugins
// directory.
const EnvDevMode = "KARGO_DEV"

// Config is kargo's own configuration file shape
// (~/.kargo/config.yaml, or ./.kargo/config.yaml).
type Config struct {
	// WrappedTool is the executable the Dispatcher resolves on PATH for
	// passthrough dispatch (spec.md §4.8). Defaults to "cargo" — kargo's
	// own worked example throughout spec.md is a Cargo-wrapping tool.
	WrappedTool string `yaml:"wrapped_tool" validate:"omitempty,alphanum"`

	// PassthroughName overrides the reserved subcommand keyword that
	// requests explicit passthrough (extension.DefaultPassthroughName
	// when empty).
	PassthroughName string `yaml:"passthrough_name" validate:"omitempty,alphanum"`

	// PluginPath is a config-file equivalent of KARGO_PLUGIN_PATH; the
	// environment variable takes precedence when both are set.
	PluginPath []string `yaml:"plugin_path" validate:"dive,dirpath"`
}

// DefaultWrappedTool is used when neither the config file nor environment
// names a wrapped tool.
const DefaultWrappedTool = "cargo"

// DefaultConfig returns safe defaults, used when no config file exists —
// kargo works out of the box without one, same as reglet's DefaultConfig.
func DefaultConfig() *Config {
	return &Config{
		WrappedTool: DefaultWrappedTool,
	}
}

// Load reads configPath (or, if empty, the first of the default config
// locations that exists) as YAML via goccy/go-yaml, layers KARGO_-prefixed
// environment overrides on top via viper's AutomaticEnv, and returns safe
// defaults if no config file is found (reglet's "silently continue if
// default config doesn't exist" policy, cmd/reglet/root.go initConfig).
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	resolved := configPath
	if resolved == "" {
		resolved = defaultConfigPath()
	}

	if resolved != "" {
		data, err := os.ReadFile(resolved)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", resolved, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("config: read %s: %w", resolved, err)
		}
		// os.IsNotExist: kargo works out of the box without a config file —
		// defaults stand (reglet's system.ConfigLoader.Load policy).
	}

	v := viper.New()
	v.SetEnvPrefix("KARGO")
	v.AutomaticEnv()
	if v.IsSet("wrapped_tool") {
		cfg.WrappedTool = v.GetString("wrapped_tool")
	}
	if v.IsSet("passthrough_name") {
		cfg.PassthroughName = v.GetString("passthrough_name")
	}

	if cfg.WrappedTool == "" {
		cfg.WrappedTool = DefaultWrappedTool
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %s failed validation: %w", resolved, err)
	}

	return cfg, nil
}

// defaultConfigPath returns the first of the user or project-local config
// file locations that exists, or "" if neither does.
func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		if candidate := filepath.Join(home, ".kargo", "config.yaml"); fileExists(candidate) {
			return candidate
		}
	}
	if candidate := filepath.Join(".kargo", "config.yaml"); fileExists(candidate) {
		return candidate
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SearchPaths returns the ordered list of directories Discovery should
// scan: KARGO_PLUGIN_PATH (first match wins on name collision, per
// spec.md §6.4), then workspace auto-discovery when DevMode is set, then
// the config file's plugin_path, the user config directory, and the
// project-local directory (spec.md §3 "Search Path", §6.5) — in that
// order, matching spec.md §3's numbered list exactly.
func SearchPaths(cfg *Config) []string {
	var paths []string

	if envPath := os.Getenv(EnvPluginPath); envPath != "" {
		paths = append(paths, filepath.SplitList(envPath)...)
	}

	if DevMode() {
		paths = append(paths, WorkspaceSearchPaths()...)
	}

	paths = append(paths, cfg.PluginPath...)

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".kargo", "plugins"))
	}

	paths = append(paths, filepath.Join(".", ".kargo", "plugins"))

	return paths
}

// DevMode reports whether KARGO_DEV=1 is set (SPEC_FULL.md §4.2: gated on
// a runtime signal, never a compile-time build tag, so it stays testable).
func DevMode() bool {
	return strings.TrimSpace(os.Getenv(EnvDevMode)) == "1"
}

// WorkspaceSearchPaths implements workspace auto-discovery (spec.md §9
// "Workspace development mode"): walk upward from the current directory
// for a go.work marker, then collect every immediate sibling directory's
// "plugins" subdirectory that exists. Returns nil if no go.work is found
// above the current directory. Performs the walk unconditionally; callers
// gate invocation on DevMode() (SearchPaths does).
func WorkspaceSearchPaths() []string {
	root := findWorkspaceRoot()
	if root == "" {
		return nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate := filepath.Join(root, e.Name(), "plugins")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			paths = append(paths, candidate)
		}
	}
	return paths
}

// findWorkspaceRoot walks upward from the current directory looking for
// a go.work file, returning the directory that contains it or "" if none
// is found before reaching the filesystem root.
func findWorkspaceRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.work")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
