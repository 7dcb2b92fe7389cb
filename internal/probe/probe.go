// Package probe implements the pure, device-free half of the hash
// filesystem: FNV1a32 hashing, handle rehashing, and the deterministic
// open-addressing probe sequence used to resolve a handle to a block
// address.
//
// Nothing in this package touches a block device. Every function here
// is a pure transform of its inputs, so the probe sequence for a given
// bucket count and starting address is fully reproducible — lookups
// retrace the exact path insertions took.
package probe

// fnvOffsetBasis is the seed FNV1a32 uses when the caller passes 0.
const fnvOffsetBasis uint32 = 2166136261

// FNV1a32 hashes buf starting from seed. Passing seed 0 starts from the
// standard FNV-1a 32-bit offset basis.
//
// The update order matches the filesystem's on-disk format exactly:
// for each byte b, H is XORed with b first, then multiplied by the
// FNV prime (expressed here as the equivalent shift-add sequence
// H + H<<1 + H<<4 + H<<7 + H<<8 + H<<24, i.e. H*16777619 mod 2^32).
// This is the same per-byte order as the standard library's hash/fnv
// New32a, but hash/fnv offers no way to seed a computation with an
// arbitrary 32-bit value mid-stream, which rehashing requires
// (the seed for segment i+1's hash is segment i's hash value itself,
// not the FNV offset basis) — see DESIGN.md.
func FNV1a32(buf []byte, seed uint32) uint32 {
	h := fnvOffsetBasis
	if seed != 0 {
		h = seed
	}
	for _, b := range buf {
		h ^= uint32(b)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}

// Rehash derives the handle for the next segment in a file's chain.
// It feeds the handle's own 4 little-endian bytes through FNV1a32,
// seeded with the handle itself.
func Rehash(handle uint32) uint32 {
	buf := [4]byte{
		byte(handle),
		byte(handle >> 8),
		byte(handle >> 16),
		byte(handle >> 24),
	}
	return FNV1a32(buf[:], handle)
}

// RehashN applies Rehash n times, deriving the handle for segment n of
// the file whose name handle is h0 (so RehashN(h0, 0) == h0).
func RehashN(h0 uint32, n int) uint32 {
	h := h0
	for i := 0; i < n; i++ {
		h = Rehash(h)
	}
	return h
}

// Fold reduces a handle to its initial probe address, in [1, bucketCount-1]
// (the last block, bucketCount-1, is a possible result).
// bucketCount must be at least 2 (block 0 is the superblock and at least
// one other block must exist to hold data).
func Fold(handle, bucketCount uint32) uint32 {
	return 1 + handle%(bucketCount-1)
}

// Step returns the deterministic probe direction for a probe sequence
// starting at initialAddr: +1 when initialAddr is odd, -1 when even.
func Step(initialAddr uint32) int32 {
	if initialAddr%2 != 0 {
		return 1
	}
	return -1
}

// Advance moves addr one probe step in direction step, wrapping inside
// the ring [1, bucketCount-1] (both ends inclusive).
func Advance(addr uint32, step int32, bucketCount uint32) uint32 {
	ringSize := bucketCount - 1
	// Shift into a zero-based ring, apply the step, wrap, then shift back.
	pos := int64(addr-1) + int64(step)
	pos %= int64(ringSize)
	if pos < 0 {
		pos += int64(ringSize)
	}
	return uint32(pos) + 1
}
