package hashfs

import (
	"github.com/scigolib/hashfs/blockdev"
	"github.com/scigolib/hashfs/internal/codec"
	"github.com/scigolib/hashfs/internal/ringbuf"
)

// FS is a mounted hash filesystem over a block device. It caches only
// the superblock's version and bucket count — every other lookup
// re-derives its probe path from a handle rather than consulting an
// in-memory index.
type FS struct {
	dev         blockdev.Device
	version     uint8
	bucketCount uint32
	mounted     bool
}

// Mount resets dev, reads block 0, and either attaches to an existing
// formatted device or formats a fresh one.
//
// An existing device must carry the magic at block 0; its bucket_count
// is asserted against the device's actual size, and the hidden journal
// file is created if somehow missing. A blank device is formatted with
// bucket_count set to the device's full size, and any stale journal
// file is dropped and recreated — generalizing the original bring-up
// routine's guard against a leftover log from a previous format.
func Mount(dev blockdev.Device) (*FS, error) {
	if err := dev.Init(); err != nil {
		return nil, wrapIoError("device init", dev.ErrorCode())
	}
	dev.WriteStop()
	dev.ReadEnd()

	if dev.CardSize() < 2 {
		return nil, newStatus(CardError)
	}

	fs := &FS{dev: dev}

	buf := ringbuf.Get()
	defer ringbuf.Put(buf)
	if !dev.ReadData(0, 0, 10, buf[:10]) {
		return nil, wrapIoError("read superblock", dev.ErrorCode())
	}

	if sb, ok := codec.DecodeSuperblock(buf[:10]); ok {
		if sb.BucketCount > dev.CardSize() || sb.BucketCount < 2 {
			return nil, newStatus(CardError)
		}
		fs.version = sb.Version
		fs.bucketCount = sb.BucketCount
		fs.mounted = true
		if err := fs.ensureLogFile(); err != nil {
			return nil, err
		}
		return fs, nil
	}

	bucketCount := dev.CardSize()

	sbBuf := codec.EncodeSuperblock(codec.Superblock{Version: 1, BucketCount: bucketCount})
	if !dev.WriteBlock(0, sbBuf, len(sbBuf)) {
		return nil, wrapIoError("write superblock", dev.ErrorCode())
	}
	fs.version = 1
	fs.bucketCount = bucketCount
	fs.mounted = true

	if err := fs.DeleteFile(logFileHandle); err != nil && !Is(err, FileNotFound) {
		return nil, err
	}
	if err := fs.CreateFile(logFileHandle, logFileName, nil); err != nil {
		return nil, err
	}
	return fs, nil
}

// ensureLogFile creates the hidden journal file if stat_file can't
// find it, and propagates any other error unchanged.
func (fs *FS) ensureLogFile() error {
	err := fs.StatFile(logFileHandle, nil, nil)
	if err == nil {
		return nil
	}
	if Is(err, FileNotFound) {
		return fs.CreateFile(logFileHandle, logFileName, nil)
	}
	return err
}

// Valid reports whether the filesystem is currently mounted against a
// recognized superblock.
func (fs *FS) Valid() bool {
	return fs.mounted
}

// ErrorCode returns the underlying device's most recent error code.
func (fs *FS) ErrorCode() uint8 {
	return fs.dev.ErrorCode()
}

// BucketCount returns the cached bucket_count from the superblock.
func (fs *FS) BucketCount() uint32 {
	return fs.bucketCount
}

// Version returns the cached format version from the superblock.
func (fs *FS) Version() uint8 {
	return fs.version
}

// ZeroMagic invalidates the superblock by clearing block 0's first
// byte, without touching the rest of the device.
func (fs *FS) ZeroMagic() error {
	if !fs.dev.WriteBlock(0, codec.FreeBlockMarker[:], 1) {
		return wrapIoError("zero magic", fs.dev.ErrorCode())
	}
	fs.mounted = false
	return nil
}

// Zero frees count consecutive blocks starting at start, each through
// its own bracketed streamed write.
func (fs *FS) Zero(start uint32, count uint16) error {
	for i := uint16(0); i < count; i++ {
		if err := fs.writeBlock(start+uint32(i), codec.FreeBlockMarker[:]); err != nil {
			return err
		}
	}
	return nil
}

// writeBlock streams buf (at most BlockSize bytes) to addr as a single
// bracketed write: the one path every block write in the core goes
// through, whether it's a full segment-0 or data segment block or a
// lone type-tag byte freeing one.
func (fs *FS) writeBlock(addr uint32, buf []byte) error {
	if !fs.dev.WriteStart(addr, 1) {
		return wrapIoError("write start", fs.dev.ErrorCode())
	}
	if !fs.dev.WriteData(buf, len(buf), 0) {
		return wrapIoError("write data", fs.dev.ErrorCode())
	}
	if pad := blockdev.BlockSize - len(buf); pad > 0 {
		if !fs.dev.WriteDataPadding(pad) {
			return wrapIoError("write padding", fs.dev.ErrorCode())
		}
	}
	if !fs.dev.WriteStop() {
		return wrapIoError("write stop", fs.dev.ErrorCode())
	}
	return nil
}

// freeBlock reclaims the block at addr by writing a single free type
// tag, padding out the rest of the block.
func (fs *FS) freeBlock(addr uint32) error {
	return fs.writeBlock(addr, codec.FreeBlockMarker[:])
}
