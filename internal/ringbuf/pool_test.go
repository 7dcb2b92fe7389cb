package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsZeroedBlockSizeBuffer(t *testing.T) {
	buf := Get()
	assert.Len(t, buf, BlockSize)
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestPutThenGetReusesCapacity(t *testing.T) {
	buf := Get()
	buf[0] = 0xFF
	Put(buf)

	reused := Get()
	assert.Len(t, reused, BlockSize)
	assert.Equal(t, byte(0), reused[0], "Get must hand back a zeroed buffer even after reuse")
}

func TestPutIgnoresUndersizedBuffer(t *testing.T) {
	Put(make([]byte, 4)) // must not panic
}
