package native

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsLoadFailure(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.so"))
	assert.Error(t, err)
}

func TestLoad_NonPluginFileReturnsLoadFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-a-plugin.so")
	// A file that exists but isn't a valid ELF/Mach-O shared object: Open
	// must fail with LoadFailure rather than panicking.
	require.NoError(t, os.WriteFile(path, []byte("not a real shared object"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
