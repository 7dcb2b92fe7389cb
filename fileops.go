package hashfs

import (
	"encoding/binary"
	"strings"

	"github.com/scigolib/hashfs/internal/codec"
	"github.com/scigolib/hashfs/internal/probe"
	"github.com/scigolib/hashfs/internal/ringbuf"
)

// FileInfo summarizes a live file's head block.
type FileInfo struct {
	Handle       Handle
	SegmentCount uint16
}

// statFile probes from fold(handle) for a segment-0 block whose own
// handle matches. It always returns the address where the probe
// stopped, even on failure: on FileNotFound that address is the first
// free block seen, ready for a caller like CreateFile to reuse.
func (fs *FS) statFile(handle Handle) (FileInfo, uint32, error) {
	a0 := handle.fold(fs.bucketCount)
	step := probe.Step(a0)
	addr := a0

	for {
		buf := ringbuf.Get()
		ok := fs.dev.ReadData(addr, 0, codec.Segment0HeaderSize, buf[:codec.Segment0HeaderSize])
		if !ok {
			code := fs.dev.ErrorCode()
			ringbuf.Put(buf)
			return FileInfo{}, addr, wrapIoError("read segment0 header", code)
		}
		hdr, kind := codec.DecodeSegment0Header(buf[:codec.Segment0HeaderSize])
		ringbuf.Put(buf)

		switch kind {
		case codec.ErrFree:
			return FileInfo{}, addr, newStatus(FileNotFound)
		case codec.ErrNone:
			if hdr.Handle == uint32(handle) {
				return FileInfo{Handle: handle, SegmentCount: hdr.SegmentCount}, addr, nil
			}
		}
		// A data segment sharing this address ring is transparently
		// skipped, same as find_segment skips a segment-0 block.

		addr = probe.Advance(addr, step, fs.bucketCount)
		if addr == a0 {
			return FileInfo{}, addr, newStatus(NoSpace)
		}
	}
}

// findSegment probes from startAddr for a data segment whose back-
// pointer equals seg0Addr. It returns the address the probe stopped
// at regardless of outcome: a free block ends the search and is
// reported as FileNotFound, a segment-0 block sharing the ring is
// transparently skipped, and a data segment owned by a different file
// is skipped too.
func (fs *FS) findSegment(seg0Addr uint32, startAddr uint32) (uint32, error) {
	step := probe.Step(startAddr)
	addr := startAddr

	for {
		buf := ringbuf.Get()
		ok := fs.dev.ReadData(addr, 0, codec.SegmentHeaderSize, buf[:codec.SegmentHeaderSize])
		if !ok {
			code := fs.dev.ErrorCode()
			ringbuf.Put(buf)
			return addr, wrapIoError("read segment header", code)
		}
		d, kind := codec.DecodeDataSegmentHeader(buf[:codec.SegmentHeaderSize])
		ringbuf.Put(buf)

		switch kind {
		case codec.ErrFree:
			return addr, newStatus(FileNotFound)
		case codec.ErrNone:
			if d.Segment0Address == seg0Addr {
				return addr, nil
			}
		}

		addr = probe.Advance(addr, step, fs.bucketCount)
		if addr == startAddr {
			return addr, newStatus(NoSpace)
		}
	}
}

// findFreeSegment is find_segment(0, startAddr) by convention: address
// 0 is the superblock and never a live segment's back-pointer, so this
// only ever stops at the first free block.
func (fs *FS) findFreeSegment(startAddr uint32) (uint32, error) {
	return fs.findSegment(0, startAddr)
}

// StatFile resolves handle to its segment-0 block. info and addr are
// optional out-parameters — pass nil for whichever the caller doesn't
// need. On FileNotFound, addr (if non-nil) still receives the first
// free address the probe saw.
func (fs *FS) StatFile(handle Handle, info *FileInfo, addr *uint32) error {
	fi, a, err := fs.statFile(handle)
	if addr != nil {
		*addr = a
	}
	if err != nil {
		return err
	}
	if info != nil {
		*info = fi
	}
	return nil
}

// StatSegment0 decodes the full segment-0 block at addr, including its
// filename.
func (fs *FS) StatSegment0(addr uint32) (codec.Segment0, error) {
	buf := ringbuf.Get()
	defer ringbuf.Put(buf)
	if !fs.dev.ReadData(addr, 0, codec.Segment0Size, buf) {
		return codec.Segment0{}, wrapIoError("read segment0", fs.dev.ErrorCode())
	}
	s, kind := codec.DecodeSegment0(buf)
	switch kind {
	case codec.ErrNone:
		return s, nil
	case codec.ErrFree:
		return codec.Segment0{}, newStatus(FileNotFound)
	default:
		return codec.Segment0{}, newStatus(WrongSegmentType)
	}
}

// StatSegment decodes the full data segment block at addr.
func (fs *FS) StatSegment(addr uint32) (codec.DataSegment, error) {
	buf := ringbuf.Get()
	defer ringbuf.Put(buf)
	if !fs.dev.ReadData(addr, 0, codec.BlockSize, buf) {
		return codec.DataSegment{}, wrapIoError("read segment", fs.dev.ErrorCode())
	}
	d, kind := codec.DecodeDataSegment(buf)
	switch kind {
	case codec.ErrNone:
		return d, nil
	case codec.ErrFree:
		return codec.DataSegment{}, newStatus(FileNotFound)
	default:
		return codec.DataSegment{}, newStatus(WrongSegmentType)
	}
}

// FindSegment probes for a data segment owned by seg0Addr, starting at
// *addr, and reports back in *addr the address where the probe
// stopped — the segment's own address on success, or a free block's
// address on FileNotFound.
func (fs *FS) FindSegment(seg0Addr uint32, addr *uint32) error {
	found, err := fs.findSegment(seg0Addr, *addr)
	*addr = found
	return err
}

// FindSegmentByNumber resolves segment number seg of handle's file to
// its on-disk address. seg == 0 is the head itself, resolved directly
// by stat_file without a second probe; seg >= 1 rehashes handle
// forward seg times and probes from its fold for a matching data
// segment.
func (fs *FS) FindSegmentByNumber(handle Handle, seg int, addr *uint32) error {
	_, seg0Addr, err := fs.statFile(handle)
	if err != nil {
		if addr != nil {
			*addr = seg0Addr
		}
		return err
	}
	if seg == 0 {
		if addr != nil {
			*addr = seg0Addr
		}
		return nil
	}

	h := handle.rehashN(seg)
	target := h.fold(fs.bucketCount)
	found, ferr := fs.findSegment(seg0Addr, target)
	if addr != nil {
		*addr = found
	}
	return ferr
}

// CreateFile creates a new file named name with handle, optionally
// seeding it with data. The name must not already exist.
func (fs *FS) CreateFile(handle Handle, name string, data []byte) error {
	if len(name) < 1 || len(name) > codec.MaxFilenameLength {
		return newStatus(BadFilename)
	}

	_, freeAddr, err := fs.statFile(handle)
	if err == nil {
		return newStatus(Exists)
	}
	if !Is(err, FileNotFound) {
		return err
	}

	s0 := codec.Segment0{Handle: uint32(handle), SegmentCount: 1, Filename: name}
	if err := fs.writeBlock(freeAddr, codec.EncodeSegment0(s0)); err != nil {
		return err
	}

	if !strings.HasPrefix(name, hiddenFilenamePrefix) {
		if err := fs.appendJournalRecord(journalOpCreate, freeAddr); err != nil {
			return err
		}
	}

	if len(data) > 0 {
		return fs.AppendFile(handle, data)
	}
	return nil
}

// AppendFile appends data to handle's file, allocating as many data
// segments as needed and persisting the updated segment_count.
func (fs *FS) AppendFile(handle Handle, data []byte) error {
	finfo, seg0Addr, err := fs.statFile(handle)
	if err != nil {
		return err
	}

	h := handle.rehashN(int(finfo.SegmentCount))
	segCount := finfo.SegmentCount

	for len(data) > 0 {
		writeLen := len(data)
		if writeLen > codec.SegmentDataSize {
			writeLen = codec.SegmentDataSize
		}

		target := h.fold(fs.bucketCount)
		freeAddr, ferr := fs.findFreeSegment(target)
		if ferr != nil && !Is(ferr, FileNotFound) {
			return ferr
		}

		block := codec.EncodeDataSegment(seg0Addr, data[:writeLen])
		if err := fs.writeBlock(freeAddr, block); err != nil {
			return err
		}

		data = data[writeLen:]
		h = h.rehash()
		segCount++
	}

	return fs.updateSegmentCount(seg0Addr, segCount)
}

// ReadFile reads up to len(dest) bytes of handle's content starting at
// offset, returning the number of bytes copied. A short read (n <
// len(dest)) means end of file, not an error.
func (fs *FS) ReadFile(handle Handle, offset uint32, dest []byte) (int, error) {
	finfo, seg0Addr, err := fs.statFile(handle)
	if err != nil {
		return 0, err
	}

	h := handle
	remaining := dest

	for seg := uint16(1); seg < finfo.SegmentCount && len(remaining) > 0; seg++ {
		h = h.rehash()
		target := h.fold(fs.bucketCount)

		addr, ferr := fs.findSegment(seg0Addr, target)
		if ferr != nil {
			if Is(ferr, FileNotFound) {
				return len(dest) - len(remaining), newStatus(MissingSegment)
			}
			return len(dest) - len(remaining), ferr
		}

		d, derr := fs.StatSegment(addr)
		if derr != nil {
			return len(dest) - len(remaining), derr
		}

		if offset > uint32(d.Length) {
			offset -= uint32(d.Length)
			continue
		}

		avail := uint32(d.Length) - offset
		n := uint32(len(remaining))
		if n > avail {
			n = avail
		}
		copy(remaining, d.Payload[offset:offset+n])
		remaining = remaining[n:]
		offset = 0
	}

	return len(dest) - len(remaining), nil
}

// ReplaceSegment rewrites data segment n of handle's file with data,
// preserving its back-pointer. n == 0 is rejected: the head is not a
// data segment.
func (fs *FS) ReplaceSegment(handle Handle, n int, data []byte) error {
	if n == 0 {
		return newStatus(InvalidArgument)
	}
	if len(data) > codec.SegmentDataSize {
		return newStatus(InvalidArgument)
	}

	_, seg0Addr, err := fs.statFile(handle)
	if err != nil {
		return err
	}

	h := handle.rehashN(n)
	target := h.fold(fs.bucketCount)
	addr, ferr := fs.findSegment(seg0Addr, target)
	if ferr != nil {
		return ferr
	}

	return fs.writeBlock(addr, codec.EncodeDataSegment(seg0Addr, data))
}

// TruncateSegment empties data segment n in place, equivalent to
// ReplaceSegment(handle, n, nil).
func (fs *FS) TruncateSegment(handle Handle, n int) error {
	return fs.ReplaceSegment(handle, n, nil)
}

// TruncateFile drops the last count segments of handle's file,
// zeroing each one's type tag and decrementing segment_count by
// count. count > segment_count is rejected.
func (fs *FS) TruncateFile(handle Handle, count uint16) error {
	finfo, seg0Addr, err := fs.statFile(handle)
	if err != nil {
		return err
	}
	if count > finfo.SegmentCount {
		return newStatus(InvalidArgument)
	}

	lowest := int(finfo.SegmentCount) - int(count)
	for i := int(finfo.SegmentCount) - 1; i >= lowest; i-- {
		h := handle.rehashN(i)
		target := h.fold(fs.bucketCount)
		addr, ferr := fs.findSegment(seg0Addr, target)
		if ferr != nil {
			return ferr
		}
		if err := fs.freeBlock(addr); err != nil {
			return err
		}
	}

	return fs.updateSegmentCount(seg0Addr, finfo.SegmentCount-count)
}

// DeleteFile removes handle's file: journals the deletion unless the
// name is hidden, frees the head block, then frees each data segment
// in turn. A missing data segment is tolerated — the sweep keeps
// going, since a single hole would otherwise strand every later
// segment as unreachable garbage. Any other error aborts.
func (fs *FS) DeleteFile(handle Handle) error {
	finfo, seg0Addr, err := fs.statFile(handle)
	if err != nil {
		return err
	}

	s0, err := fs.StatSegment0(seg0Addr)
	if err != nil {
		return err
	}

	if !strings.HasPrefix(s0.Filename, hiddenFilenamePrefix) {
		if err := fs.appendJournalRecord(journalOpDelete, seg0Addr); err != nil {
			return err
		}
	}

	if err := fs.freeBlock(seg0Addr); err != nil {
		return err
	}

	h := handle
	for i := uint16(1); i < finfo.SegmentCount; i++ {
		h = h.rehash()
		target := h.fold(fs.bucketCount)

		addr, ferr := fs.findSegment(seg0Addr, target)
		if ferr != nil {
			if Is(ferr, FileNotFound) {
				continue
			}
			return ferr
		}
		if err := fs.freeBlock(addr); err != nil {
			return err
		}
	}

	return nil
}

// updateSegmentCount patches the segment_count field of the segment-0
// block at addr in place, without needing to decode or re-encode its
// filename.
func (fs *FS) updateSegmentCount(addr uint32, count uint16) error {
	buf := ringbuf.Get()
	defer ringbuf.Put(buf)
	if !fs.dev.ReadData(addr, 0, codec.Segment0Size, buf) {
		return wrapIoError("read segment0", fs.dev.ErrorCode())
	}
	binary.LittleEndian.PutUint16(buf[5:7], count)
	return fs.writeBlock(addr, buf)
}
