//go:build wasip1

package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocDealloc(t *testing.T) {
	Reset()

	ptr := alloc(64)
	require.NotZero(t, ptr)

	n, total := Stats()
	assert.Equal(t, 1, n)
	assert.Equal(t, 64, total)

	dealloc(ptr, 64)
	n, total = Stats()
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, total)
}

func TestAllocZeroSize(t *testing.T) {
	assert.Zero(t, alloc(0))
}

func TestDeallocUnknownPointerIsNoop(t *testing.T) {
	Reset()
	assert.NotPanics(t, func() { dealloc(0xDEADBEEF, 16) })
}

func TestSetLimitEnforced(t *testing.T) {
	Reset()
	SetLimit(128)
	defer SetLimit(DefaultMaxTotalAllocations)

	assert.Panics(t, func() { alloc(256) })
}

func TestPutJSONAndReadJSONRoundtrip(t *testing.T) {
	Reset()

	type payload struct {
		Name string `json:"name"`
	}
	packed, err := PutJSON(payload{Name: "kargo"}, func(v interface{}) ([]byte, error) {
		return []byte(`{"name":"kargo"}`), nil
	})
	require.NoError(t, err)
	require.NotZero(t, packed)

	data := ReadJSON(packed)
	assert.JSONEq(t, `{"name":"kargo"}`, string(data))
}
