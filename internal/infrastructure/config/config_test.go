package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_UsesCargoAsWrappedTool(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "cargo", cfg.WrappedTool)
}

func TestLoad_MissingConfigFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultWrappedTool, cfg.WrappedTool)
}

func TestLoad_ReadsYAMLConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wrapped_tool: npm\npassthrough_name: npm\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "npm", cfg.WrappedTool)
	assert.Equal(t, "npm", cfg.PassthroughName)
}

func TestSearchPaths_EnvOverrideComesFirst(t *testing.T) {
	a := filepath.Join(t.TempDir(), "a")
	b := filepath.Join(t.TempDir(), "b")
	t.Setenv(EnvPluginPath, a+string(os.PathListSeparator)+b)
	t.Setenv(EnvDevMode, "")

	paths := SearchPaths(DefaultConfig())
	require.GreaterOrEqual(t, len(paths), 2)
	assert.Equal(t, a, paths[0])
	assert.Equal(t, b, paths[1])
}

func TestSearchPaths_IncludesUserAndProjectLocalDefaults(t *testing.T) {
	t.Setenv(EnvPluginPath, "")
	t.Setenv(EnvDevMode, "")

	paths := SearchPaths(DefaultConfig())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Contains(t, paths, filepath.Join(home, ".kargo", "plugins"))
	assert.Contains(t, paths, filepath.Join(".", ".kargo", "plugins"))
}

func TestDevMode_OnlyExactValueOneEnables(t *testing.T) {
	t.Setenv(EnvDevMode, "1")
	assert.True(t, DevMode())

	t.Setenv(EnvDevMode, "true")
	assert.False(t, DevMode())

	t.Setenv(EnvDevMode, "")
	assert.False(t, DevMode())
}

func TestWorkspaceSearchPaths_FindsSiblingPluginDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.work"), []byte("go 1.25\n"), 0o644))

	pluginsA := filepath.Join(root, "service-a", "plugins")
	require.NoError(t, os.MkdirAll(pluginsA, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "service-b"), 0o755)) // no plugins dir

	wd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	nested := filepath.Join(root, "service-a")
	require.NoError(t, os.Chdir(nested))

	paths := WorkspaceSearchPaths()
	assert.Contains(t, paths, pluginsA)
}

func TestWorkspaceSearchPaths_NoGoWorkReturnsNil(t *testing.T) {
	root := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { require.NoError(t, os.Chdir(wd)) }()
	require.NoError(t, os.Chdir(root))

	assert.Nil(t, WorkspaceSearchPaths())
}
