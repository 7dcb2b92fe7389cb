package hashfs

import "github.com/scigolib/hashfs/internal/probe"

// Handle identifies a file. The name handle h0 is FNV1a32(name); each
// subsequent segment's handle is derived by rehashing the previous one.
type Handle uint32

// NameHandle derives the name handle for a user-visible filename.
func NameHandle(name string) Handle {
	return NameHandleBytes([]byte(name))
}

// NameHandleBytes derives the name handle for an arbitrary byte slice,
// for callers that already have the name outside a string (e.g. read
// directly off the wire).
func NameHandleBytes(buf []byte) Handle {
	return Handle(probe.FNV1a32(buf, 0))
}

// rehash derives the handle for the next segment in the chain.
func (h Handle) rehash() Handle {
	return Handle(probe.Rehash(uint32(h)))
}

// rehashN derives the handle for segment n of the file whose name
// handle is h (rehashN(0) == h).
func (h Handle) rehashN(n int) Handle {
	return Handle(probe.RehashN(uint32(h), n))
}

// fold reduces h to its initial probe address for a device with the
// given bucket count.
func (h Handle) fold(bucketCount uint32) uint32 {
	return probe.Fold(uint32(h), bucketCount)
}

const (
	logFileName          = "__LOG"
	hiddenFilenamePrefix = "__"
)

// logFileHandle is the reserved handle of the hidden journal file.
//
// The spec's reference constant for this handle is 0x00428ef4, which it
// asserts equals FNV1a32("__LOG") — but that constant only falls out of
// the *original* SDHash update order (multiply-then-XOR per byte), not
// the XOR-then-multiply order this package's FNV1a32 is written to
// (the spec's prose is explicit, twice, that XOR-then-multiply is the
// ordering implementers must reproduce). Per the spec's own open
// question on this constant ("verify on bring-up and regenerate if the
// FNV variant is tightened"), the handle is derived at package init
// from this module's own NameHandle rather than hardcoded, so the two
// never drift apart silently. See DESIGN.md.
var logFileHandle = NameHandle(logFileName)
