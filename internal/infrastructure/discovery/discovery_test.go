package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestClassify_RecognizesSharedObjectAndWasmByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "libmddoc"+sharedObjectSuffix()), "")
	writeFile(t, filepath.Join(dir, "echohost.wasm"), "")
	writeFile(t, filepath.Join(dir, "README.md"), "") // ignored: not a recognized shape

	candidates := classify(dir)

	var kinds []Kind
	for _, c := range candidates {
		kinds = append(kinds, c.Kind)
	}
	assert.Contains(t, kinds, KindSharedObject)
	assert.Contains(t, kinds, KindWasmModule)
	assert.Len(t, candidates, 2)
}

func TestClassify_DirectoryWithManifestIsOneSourceProjectCandidate(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "my-plugin")
	require.NoError(t, os.MkdirAll(proj, 0o755))
	writeFile(t, filepath.Join(proj, "main.go"), "//kargo:plugin\n//kargo:target native\npackage main\n")

	candidates := classify(dir)

	require.Len(t, candidates, 1)
	assert.Equal(t, KindSourceProject, candidates[0].Kind)
	assert.Equal(t, proj, candidates[0].Path)
}

func TestClassify_DirectoryItselfIsSourceProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "//kargo:plugin\npackage main\n")

	candidates := classify(dir)

	require.Len(t, candidates, 1)
	assert.Equal(t, KindSourceProject, candidates[0].Kind)
	assert.Equal(t, dir, candidates[0].Path)
}

func TestClassify_NonexistentDirectoryReturnsNil(t *testing.T) {
	assert.Nil(t, classify(filepath.Join(t.TempDir(), "does-not-exist")))
}

func TestTargetName_UsesDirectoryBasenameRegardlessOfDirective(t *testing.T) {
	dir := t.TempDir()
	proj := filepath.Join(dir, "hello-wasm")
	require.NoError(t, os.MkdirAll(proj, 0o755))
	writeFile(t, filepath.Join(proj, "main.go"), "//kargo:plugin\n//kargo:target wasm\npackage main\n")

	assert.Equal(t, "hello-wasm", targetName(proj))
}

func TestCheckRequires_NoDirectiveIsAlwaysSatisfied(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "//kargo:plugin\npackage main\n")
	assert.NoError(t, checkRequires(dir))
}

func TestCheckRequires_UnsatisfiedConstraintFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "//kargo:plugin\n//kargo:requires >=999.0.0\npackage main\n")
	assert.Error(t, checkRequires(dir))
}

func TestCheckRequires_SatisfiedConstraintPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "//kargo:plugin\n//kargo:requires >=0.0.1\npackage main\n")
	assert.NoError(t, checkRequires(dir))
}
