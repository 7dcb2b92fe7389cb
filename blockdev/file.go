package blockdev

import (
	"fmt"
	"os"

	"github.com/scigolib/hashfs/internal/ringbuf"
)

// File is an os.File-backed Device, for running the filesystem against
// a regular host file (or a block special file opened through the same
// path) instead of an in-memory buffer. It is grounded directly on the
// teacher library's internal/writer.FileWriter: a thin os.File wrapper
// offering WriteAt/ReadAt with explicit short-write detection, extended
// here with the streamed-write staging buffer the BlockDevice interface
// requires.
type File struct {
	f          *os.File
	blockCount uint32

	streaming bool
	streamAt  uint32
	streamBuf []byte
	lastErr   uint8
}

// CreateMode mirrors the teacher's writer.CreateMode: whether opening a
// new backing file truncates or requires exclusivity.
type CreateMode int

const (
	// ModeTruncate creates the file, truncating it if it already exists.
	ModeTruncate CreateMode = iota
	// ModeExclusive creates the file, failing if it already exists.
	ModeExclusive
	// ModeOpenExisting opens a file that must already exist and already
	// hold blockCount blocks.
	ModeOpenExisting
)

// NewFile opens or creates path as a Device of blockCount blocks.
func NewFile(path string, blockCount uint32, mode CreateMode) (*File, error) {
	var osFile *os.File
	var err error

	switch mode {
	case ModeTruncate:
		osFile, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	case ModeExclusive:
		osFile, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	case ModeOpenExisting:
		osFile, err = os.OpenFile(path, os.O_RDWR, 0o666)
	default:
		return nil, fmt.Errorf("blockdev: invalid create mode: %d", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("blockdev: open %q failed: %w", path, err)
	}

	size := int64(blockCount) * BlockSize
	if mode != ModeOpenExisting {
		if err := osFile.Truncate(size); err != nil {
			_ = osFile.Close()
			return nil, fmt.Errorf("blockdev: truncate %q to %d bytes failed: %w", path, size, err)
		}
	}

	return &File{f: osFile, blockCount: blockCount}, nil
}

// Close releases the backing os.File.
func (d *File) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// Init resets the device's error state.
func (d *File) Init() error {
	d.lastErr = 0
	d.streaming = false
	return nil
}

// CardSize returns the block count this device was opened with.
func (d *File) CardSize() uint32 {
	return d.blockCount
}

// ErrorCode returns the code of the most recent failure, 0 on success.
func (d *File) ErrorCode() uint8 {
	return d.lastErr
}

func (d *File) fail(code uint8) bool {
	d.lastErr = code
	return false
}

func (d *File) checkAddr(blockAddr uint32) bool {
	return blockAddr < d.blockCount
}

func (d *File) blockOffset(blockAddr uint32) int64 {
	return int64(blockAddr) * BlockSize
}

// ReadData reads length bytes at byteOffset within block blockAddr.
func (d *File) ReadData(blockAddr uint32, byteOffset int, length int, dest []byte) bool {
	if !d.checkAddr(blockAddr) {
		return d.fail(1)
	}
	if byteOffset < 0 || length < 0 || byteOffset+length > BlockSize || length > len(dest) {
		return d.fail(2)
	}
	n, err := d.f.ReadAt(dest[:length], d.blockOffset(blockAddr)+int64(byteOffset))
	if err != nil || n != length {
		return d.fail(3)
	}
	d.lastErr = 0
	return true
}

// WriteBlock writes src (length bytes) to the start of block blockAddr
// in a single, non-streamed operation. Bytes beyond length within the
// block are zeroed.
func (d *File) WriteBlock(blockAddr uint32, src []byte, length int) bool {
	if !d.checkAddr(blockAddr) {
		return d.fail(1)
	}
	if length < 0 || length > len(src) || length > BlockSize {
		return d.fail(2)
	}
	buf := ringbuf.Get()
	defer ringbuf.Put(buf)
	copy(buf, src[:length])

	n, err := d.f.WriteAt(buf, d.blockOffset(blockAddr))
	if err != nil || n != BlockSize {
		return d.fail(3)
	}
	d.lastErr = 0
	return true
}

// WriteStart begins a streamed write spanning count blocks starting at
// blockAddr. Like Memory, only count == 1 is supported: every caller in
// this module writes exactly one segment per streamed write.
func (d *File) WriteStart(blockAddr uint32, count uint16) bool {
	if d.streaming {
		return d.fail(4)
	}
	if !d.checkAddr(blockAddr) || count != 1 {
		return d.fail(1)
	}
	d.streaming = true
	d.streamAt = blockAddr
	d.streamBuf = ringbuf.Get()
	d.lastErr = 0
	return true
}

// WriteData writes length bytes of src at byteOffset within the
// current streamed write's staging buffer.
func (d *File) WriteData(src []byte, length int, byteOffset int) bool {
	if !d.streaming {
		return d.fail(5)
	}
	if byteOffset < 0 || length < 0 || length > len(src) || byteOffset+length > BlockSize {
		return d.fail(2)
	}
	copy(d.streamBuf[byteOffset:byteOffset+length], src[:length])
	d.lastErr = 0
	return true
}

// WriteDataPadding advances the streamed write by length zero bytes.
// The staging buffer starts zeroed, so this only validates bounds.
func (d *File) WriteDataPadding(length int) bool {
	if !d.streaming {
		return d.fail(5)
	}
	if length < 0 {
		return d.fail(2)
	}
	d.lastErr = 0
	return true
}

// WriteStop flushes the staging buffer to the backing file and ends the
// streamed write.
func (d *File) WriteStop() bool {
	if !d.streaming {
		return true
	}
	n, err := d.f.WriteAt(d.streamBuf, d.blockOffset(d.streamAt))
	ringbuf.Put(d.streamBuf)
	d.streamBuf = nil
	d.streaming = false
	if err != nil || n != BlockSize {
		return d.fail(3)
	}
	d.lastErr = 0
	return true
}

// ReadEnd is a no-op for File: reads are never streamed.
func (d *File) ReadEnd() {}

var _ Device = (*File)(nil)
