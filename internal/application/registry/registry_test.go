package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/kargo/internal/domain/extension"
)

type stubExtension struct {
	spec    extension.CommandSpec
	specErr error
	kind    extension.Kind
}

func (s *stubExtension) Spec(context.Context) (extension.CommandSpec, error) {
	return s.spec, s.specErr
}
func (s *stubExtension) Run(context.Context, extension.ExecutionContext) error { return nil }
func (s *stubExtension) Close(context.Context) error                          { return nil }
func (s *stubExtension) Kind() extension.Kind                                  { return s.kind }

func TestRegistry_InsertAndLookup(t *testing.T) {
	r := New()
	ctx := context.Background()

	ext := &stubExtension{spec: extension.CommandSpec{Name: "mddoc"}, kind: extension.KindNative}
	require.NoError(t, r.Insert(ctx, ext))

	got, ok := r.Lookup("mddoc")
	require.True(t, ok)
	assert.Same(t, ext, got)

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

// P1: for any set of candidates producing distinct names, |Registry| == |candidates|.
func TestRegistry_DistinctNamesAllInserted(t *testing.T) {
	r := New()
	ctx := context.Background()

	names := []string{"mddoc", "echohost", "sleep-runner"}
	for _, n := range names {
		require.NoError(t, r.Insert(ctx, &stubExtension{spec: extension.CommandSpec{Name: n}}))
	}
	assert.Equal(t, len(names), r.Len())
}

// P2: for any two candidates producing the same name, the Registry
// contains exactly one (first-loaded wins); the second is rejected.
func TestRegistry_DuplicateNameRejectsSecond(t *testing.T) {
	r := New()
	ctx := context.Background()

	first := &stubExtension{spec: extension.CommandSpec{Name: "mddoc"}, kind: extension.KindNative}
	second := &stubExtension{spec: extension.CommandSpec{Name: "mddoc"}, kind: extension.KindSandbox}

	require.NoError(t, r.Insert(ctx, first))
	err := r.Insert(ctx, second)

	require.Error(t, err)
	var dup *extension.DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "mddoc", dup.Name)

	got, ok := r.Lookup("mddoc")
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, r.Len())
}

// P3: the name returned by spec().name equals the key the Dispatcher
// finds it under.
func TestRegistry_LookupKeyMatchesSpecName(t *testing.T) {
	r := New()
	ctx := context.Background()
	ext := &stubExtension{spec: extension.CommandSpec{Name: "tokio-doc"}}
	require.NoError(t, r.Insert(ctx, ext))

	spec, err := ext.Spec(ctx)
	require.NoError(t, err)

	got, ok := r.Lookup(spec.Name)
	require.True(t, ok)
	assert.Same(t, ext, got)
}

func TestRegistry_InsertRejectsBadSpec(t *testing.T) {
	r := New()
	ctx := context.Background()

	err := r.Insert(ctx, &stubExtension{spec: extension.CommandSpec{Name: ""}})
	require.Error(t, err)
	var bad *extension.BadSpecError
	assert.True(t, errors.As(err, &bad))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_IterIsInsertionOrder(t *testing.T) {
	r := New()
	ctx := context.Background()

	names := []string{"zeta", "alpha", "middle"}
	for _, n := range names {
		require.NoError(t, r.Insert(ctx, &stubExtension{spec: extension.CommandSpec{Name: n}}))
	}

	iter := r.Iter()
	require.Len(t, iter, len(names))
	for i, n := range names {
		assert.Equal(t, n, iter[i].Name)
	}
}

func TestRegistry_CloseAllClosesEveryExtension(t *testing.T) {
	r := New()
	ctx := context.Background()

	a := &closeTrackingExtension{stubExtension: stubExtension{spec: extension.CommandSpec{Name: "a"}}}
	b := &closeTrackingExtension{stubExtension: stubExtension{spec: extension.CommandSpec{Name: "b"}}}
	require.NoError(t, r.Insert(ctx, a))
	require.NoError(t, r.Insert(ctx, b))

	r.CloseAll(ctx)

	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

type closeTrackingExtension struct {
	stubExtension
	closed bool
}

func (c *closeTrackingExtension) Close(context.Context) error {
	c.closed = true
	return nil
}
