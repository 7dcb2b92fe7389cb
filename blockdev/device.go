// Package blockdev defines the BlockDevice collaborator the hash
// filesystem core relies on, and two concrete implementations: an
// in-memory device for tests and card-less embedded use, and an
// os.File-backed device for running the filesystem against a regular
// host file.
//
// Device is the only pluggable capability the core core depends on —
// per the design notes, a narrow interface is sufficient, and tests
// substitute Memory for a physical card.
package blockdev

// BlockSize is the fixed size of every addressable block.
const BlockSize = 512

// Device is the external collaborator the filesystem core performs all
// I/O through. Every read and write method reports success with a
// boolean (Init returns an error instead); on failure the caller should
// consult ErrorCode for a device-specific code.
//
// Streamed writes (WriteStart/WriteData/WriteDataPadding/WriteStop) must
// be bracketed strictly within a single logical write: no other Device
// method may be called between WriteStart and WriteStop.
type Device interface {
	// Init (re)initializes the device. It is safe to call more than once.
	Init() error

	// CardSize returns the total number of addressable blocks.
	CardSize() uint32

	// ErrorCode returns the device-specific code of the most recent
	// failure, or 0 if the last operation succeeded.
	ErrorCode() uint8

	// ReadData reads length bytes starting at byteOffset within block
	// blockAddr into dest.
	ReadData(blockAddr uint32, byteOffset int, length int, dest []byte) bool

	// WriteBlock writes src (length bytes) to the start of block
	// blockAddr in a single, non-streamed operation.
	WriteBlock(blockAddr uint32, src []byte, length int) bool

	// WriteStart begins a streamed write spanning count consecutive
	// blocks starting at blockAddr.
	WriteStart(blockAddr uint32, count uint16) bool
	// WriteData writes length bytes of src at byteOffset within the
	// current streamed write.
	WriteData(src []byte, length int, byteOffset int) bool
	// WriteDataPadding advances the streamed write by length zero bytes
	// without requiring the caller to materialize them.
	WriteDataPadding(length int) bool
	// WriteStop ends the streamed write begun by WriteStart.
	WriteStop() bool

	// ReadEnd terminates any in-flight streamed read. It is safe to call
	// when no read is in flight.
	ReadEnd()
}
