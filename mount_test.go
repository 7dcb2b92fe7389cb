package hashfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/hashfs/blockdev"
)

func TestMountFormatsBlankDevice(t *testing.T) {
	dev := blockdev.NewMemory(256)
	fs, err := Mount(dev)
	require.NoError(t, err)
	assert.True(t, fs.Valid())
	assert.Equal(t, uint32(256), fs.BucketCount())
	assert.Equal(t, uint8(1), fs.Version())

	var info FileInfo
	require.NoError(t, fs.StatFile(logFileHandle, &info, nil))
	assert.Equal(t, uint16(1), info.SegmentCount)
}

func TestMountReattachesToFormattedDevice(t *testing.T) {
	dev := blockdev.NewMemory(128)
	_, err := Mount(dev)
	require.NoError(t, err)

	fs2, err := Mount(dev)
	require.NoError(t, err)
	assert.Equal(t, uint32(128), fs2.BucketCount())
	assert.True(t, fs2.Valid())
}

func TestMountRejectsBucketCountExceedingDeviceSize(t *testing.T) {
	dev := blockdev.NewMemory(128)
	_, err := Mount(dev)
	require.NoError(t, err)

	// Corrupt the superblock's bucket_count to exceed the device's
	// actual size.
	sb := make([]byte, 10)
	require.True(t, dev.ReadData(0, 0, 10, sb))
	sb[6] = 0xFF
	sb[7] = 0xFF
	require.True(t, dev.WriteBlock(0, sb, 10))

	_, err = Mount(dev)
	require.Error(t, err)
	assert.True(t, Is(err, CardError))
}

func TestMountRejectsZeroBlockDevice(t *testing.T) {
	dev := blockdev.NewMemory(0)
	_, err := Mount(dev)
	require.Error(t, err)
	assert.True(t, Is(err, CardError))
}

func TestZeroMagicInvalidatesFormat(t *testing.T) {
	dev := blockdev.NewMemory(64)
	fs, err := Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fs.ZeroMagic())
	assert.False(t, fs.Valid())

	fs2, err := Mount(dev)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), fs2.BucketCount())
}

func TestZeroFreesBlocks(t *testing.T) {
	dev := blockdev.NewMemory(64)
	fs, err := Mount(dev)
	require.NoError(t, err)

	require.NoError(t, fs.CreateFile(NameHandle("x"), "x", []byte("hello")))
	var addr uint32
	require.NoError(t, fs.StatFile(NameHandle("x"), nil, &addr))

	require.NoError(t, fs.Zero(addr, 1))

	dest := make([]byte, 1)
	require.True(t, dev.ReadData(addr, 0, 1, dest))
	assert.Equal(t, byte(0), dest[0])
}
