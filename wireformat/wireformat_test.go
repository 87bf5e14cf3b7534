package wireformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackPtrLen_RoundTrips(t *testing.T) {
	cases := []struct {
		ptr, length uint32
	}{
		{0, 0},
		{1, 1},
		{0xdeadbeef, 0x1000},
		{0xffffffff, 0xffffffff},
	}
	for _, c := range cases {
		packed := PackPtrLen(c.ptr, c.length)
		ptr, length := UnpackPtrLen(packed)
		assert.Equal(t, c.ptr, ptr)
		assert.Equal(t, c.length, length)
	}
}

func TestPackPtrLen_PtrInHighWord(t *testing.T) {
	packed := PackPtrLen(1, 0)
	assert.Equal(t, uint64(1)<<32, packed)
}
