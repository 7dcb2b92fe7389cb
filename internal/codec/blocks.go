// Package codec encodes and decodes the three on-disk block formats —
// the superblock, segment-0 (file head) blocks, and data segment blocks
// — and the journal's record format. All multi-byte fields are
// little-endian; nothing in this package performs device I/O, it only
// marshals to and from 512-byte (or smaller) buffers handed to it by
// the caller.
package codec

import "encoding/binary"

// Block type tags, stored at byte 0 of every segment-pool block.
const (
	TagFree     byte = 0x00
	TagSegment0 byte = 0x01
	TagSegment  byte = 0x02
)

// Sizes fixed by the wire format.
const (
	BlockSize = 512

	SuperblockMagicSize = 5
	SuperblockSize      = BlockSize

	// Segment-0 header: tag + handle + segment_count.
	Segment0HeaderSize = 1 + 4 + 2
	MaxFilenameLength  = 23
	Segment0Size       = BlockSize

	// Data segment header: tag + segment0_address + length.
	SegmentHeaderSize = 1 + 4 + 2
	SegmentDataSize   = BlockSize - SegmentHeaderSize // 505

	JournalRecordSize = 1 + 4
)

// SuperblockMagic is the 5-byte signature that marks a formatted device.
var SuperblockMagic = [SuperblockMagicSize]byte{0xAE, 'h', 'a', 's', 'h'}

// ErrKind classifies a codec-level decode failure. It intentionally
// mirrors the subset of hashfs.Kind that a decode can produce on its
// own, without needing to import the root package (which would create
// an import cycle, since hashfs imports codec).
type ErrKind int

const (
	// ErrNone indicates a successful decode.
	ErrNone ErrKind = iota
	// ErrFree indicates the block's type tag was TagFree.
	ErrFree
	// ErrWrongType indicates the block's type tag didn't match what
	// was requested.
	ErrWrongType
)

// Superblock is the decoded contents of block 0.
type Superblock struct {
	Version     uint8
	BucketCount uint32
}

// EncodeSuperblock writes sb into a fresh 512-byte block.
func EncodeSuperblock(sb Superblock) []byte {
	buf := make([]byte, SuperblockSize)
	copy(buf[0:SuperblockMagicSize], SuperblockMagic[:])
	buf[5] = sb.Version
	binary.LittleEndian.PutUint32(buf[6:10], sb.BucketCount)
	return buf
}

// DecodeSuperblock parses a superblock from a buffer of at least 10
// bytes. It returns ok=false if the magic doesn't match.
func DecodeSuperblock(buf []byte) (sb Superblock, ok bool) {
	if len(buf) < 10 {
		return Superblock{}, false
	}
	if [5]byte(buf[0:5]) != SuperblockMagic {
		return Superblock{}, false
	}
	sb.Version = buf[5]
	sb.BucketCount = binary.LittleEndian.Uint32(buf[6:10])
	return sb, true
}

// Segment0 is the decoded contents of a file-head block.
type Segment0 struct {
	Handle       uint32
	SegmentCount uint16
	Filename     string
}

// EncodeSegment0 writes a fresh segment-0 block. namelen must already
// have been validated to be in 1..MaxFilenameLength by the caller.
func EncodeSegment0(s Segment0) []byte {
	buf := make([]byte, Segment0Size)
	buf[0] = TagSegment0
	binary.LittleEndian.PutUint32(buf[1:5], s.Handle)
	binary.LittleEndian.PutUint16(buf[5:7], s.SegmentCount)

	name := []byte(s.Filename)
	offset := Segment0HeaderSize
	copy(buf[offset:offset+len(name)], name)
	offset += len(name)

	padding := byte(MaxFilenameLength + 1 - len(name))
	for offset < Segment0HeaderSize+MaxFilenameLength+1 {
		buf[offset] = padding
		offset++
	}
	return buf
}

// DecodeSegment0Header decodes only the fixed-size header (tag, handle,
// segment count) of a segment-0 block, without recovering the filename.
// Use DecodeSegment0 when the filename is needed too.
func DecodeSegment0Header(buf []byte) (s Segment0, kind ErrKind) {
	if len(buf) < Segment0HeaderSize {
		return Segment0{}, ErrWrongType
	}
	switch buf[0] {
	case TagFree:
		return Segment0{}, ErrFree
	case TagSegment0:
	default:
		return Segment0{}, ErrWrongType
	}
	s.Handle = binary.LittleEndian.Uint32(buf[1:5])
	s.SegmentCount = binary.LittleEndian.Uint16(buf[5:7])
	return s, ErrNone
}

// DecodeSegment0 decodes the full segment-0 block, including the
// filename, recovered from the padding-byte convention: the first
// padding byte's value is (24 - namelen).
func DecodeSegment0(buf []byte) (s Segment0, kind ErrKind) {
	if len(buf) < Segment0Size {
		return Segment0{}, ErrWrongType
	}
	s, kind = DecodeSegment0Header(buf)
	if kind != ErrNone {
		return s, kind
	}

	nameField := buf[Segment0HeaderSize : Segment0HeaderSize+MaxFilenameLength+1]
	namelen := MaxFilenameLength
	for i := len(nameField) - 1; i >= 0; i-- {
		if int(nameField[i]) == MaxFilenameLength+1-i {
			namelen = i
			break
		}
	}
	s.Filename = string(nameField[:namelen])
	return s, ErrNone
}

// DataSegment is the decoded contents of a data block.
type DataSegment struct {
	Segment0Address uint32
	Length          uint16
	Payload         [SegmentDataSize]byte
}

// EncodeDataSegment writes a fresh data segment block. data must be at
// most SegmentDataSize bytes; the caller is responsible for chunking
// longer payloads across multiple segments.
func EncodeDataSegment(segment0Addr uint32, data []byte) []byte {
	buf := make([]byte, BlockSize)
	buf[0] = TagSegment
	binary.LittleEndian.PutUint32(buf[1:5], segment0Addr)
	binary.LittleEndian.PutUint16(buf[5:7], uint16(len(data)))
	copy(buf[SegmentHeaderSize:], data)
	return buf
}

// DecodeDataSegmentHeader decodes the fixed-size header of a data
// segment block (tag, back-pointer, length) without copying the payload.
func DecodeDataSegmentHeader(buf []byte) (d DataSegment, kind ErrKind) {
	if len(buf) < SegmentHeaderSize {
		return DataSegment{}, ErrWrongType
	}
	switch buf[0] {
	case TagFree:
		return DataSegment{}, ErrFree
	case TagSegment:
	default:
		return DataSegment{}, ErrWrongType
	}
	d.Segment0Address = binary.LittleEndian.Uint32(buf[1:5])
	d.Length = binary.LittleEndian.Uint16(buf[5:7])
	return d, ErrNone
}

// DecodeDataSegment decodes the full data segment block, including the
// payload bytes within Length.
func DecodeDataSegment(buf []byte) (d DataSegment, kind ErrKind) {
	if len(buf) < BlockSize {
		return DataSegment{}, ErrWrongType
	}
	d, kind = DecodeDataSegmentHeader(buf)
	if kind != ErrNone {
		return d, kind
	}
	copy(d.Payload[:], buf[SegmentHeaderSize:])
	return d, ErrNone
}

// FreeBlockMarker is the single byte written to reclaim a block: a
// zero type tag.
var FreeBlockMarker = [1]byte{TagFree}

// JournalRecord is one 5-byte entry appended to the "__LOG" file.
type JournalRecord struct {
	Op              byte // 'c' (create) or 'd' (delete)
	Segment0Address uint32
}

// EncodeJournalRecord writes r's wire representation.
func EncodeJournalRecord(r JournalRecord) []byte {
	buf := make([]byte, JournalRecordSize)
	buf[0] = r.Op
	binary.LittleEndian.PutUint32(buf[1:5], r.Segment0Address)
	return buf
}

// DecodeJournalRecord parses a 5-byte journal record. It is exported so
// that an out-of-process log reader (out of scope for this module to
// provide, but not for it to support) has a stable decoder to import
// rather than re-deriving the wire format.
func DecodeJournalRecord(buf []byte) (JournalRecord, bool) {
	if len(buf) < JournalRecordSize {
		return JournalRecord{}, false
	}
	return JournalRecord{
		Op:              buf[0],
		Segment0Address: binary.LittleEndian.Uint32(buf[1:5]),
	}, true
}
