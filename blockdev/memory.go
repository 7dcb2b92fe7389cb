package blockdev

import "fmt"

// Memory is an in-memory Device backed by a flat byte slice. It is the
// workhorse for tests and for embedded use before a physical card is
// attached — generalizing the teacher's practice of driving its format
// tests against disposable in-memory buffers rather than a mock
// framework (internal/core's superblock tests build byte slices by
// hand; Memory simply extends that to a whole addressable device).
type Memory struct {
	blocks    [][]byte
	streaming bool
	streamAt  uint32
	streamOff int
	lastErr   uint8
}

// NewMemory allocates an in-memory device of blockCount blocks, all
// initially free (zeroed).
func NewMemory(blockCount uint32) *Memory {
	blocks := make([][]byte, blockCount)
	for i := range blocks {
		blocks[i] = make([]byte, BlockSize)
	}
	return &Memory{blocks: blocks}
}

// Init resets the device's error state. It never fails.
func (m *Memory) Init() error {
	m.lastErr = 0
	m.streaming = false
	return nil
}

// CardSize returns the number of blocks this device was created with.
func (m *Memory) CardSize() uint32 {
	return uint32(len(m.blocks))
}

// ErrorCode returns the code of the most recent failure, 0 on success.
func (m *Memory) ErrorCode() uint8 {
	return m.lastErr
}

func (m *Memory) fail(code uint8) bool {
	m.lastErr = code
	return false
}

func (m *Memory) checkAddr(blockAddr uint32) bool {
	return blockAddr < uint32(len(m.blocks))
}

// ReadData reads length bytes at byteOffset within block blockAddr.
func (m *Memory) ReadData(blockAddr uint32, byteOffset int, length int, dest []byte) bool {
	if !m.checkAddr(blockAddr) {
		return m.fail(1)
	}
	block := m.blocks[blockAddr]
	if byteOffset < 0 || length < 0 || byteOffset+length > len(block) || length > len(dest) {
		return m.fail(2)
	}
	copy(dest[:length], block[byteOffset:byteOffset+length])
	m.lastErr = 0
	return true
}

// WriteBlock writes src (length bytes) to the start of block blockAddr.
func (m *Memory) WriteBlock(blockAddr uint32, src []byte, length int) bool {
	if !m.checkAddr(blockAddr) {
		return m.fail(1)
	}
	if length < 0 || length > len(src) || length > BlockSize {
		return m.fail(2)
	}
	block := m.blocks[blockAddr]
	for i := range block {
		block[i] = 0
	}
	copy(block, src[:length])
	m.lastErr = 0
	return true
}

// WriteStart begins a streamed write spanning count blocks starting at
// blockAddr. Memory only ever supports count == 1 (the filesystem core
// never streams across multiple blocks), matching the spec's one
// segment per _write_segment call.
func (m *Memory) WriteStart(blockAddr uint32, count uint16) bool {
	if m.streaming {
		return m.fail(3)
	}
	if !m.checkAddr(blockAddr) || count != 1 {
		return m.fail(1)
	}
	m.streaming = true
	m.streamAt = blockAddr
	m.streamOff = 0
	for i := range m.blocks[blockAddr] {
		m.blocks[blockAddr][i] = 0
	}
	m.lastErr = 0
	return true
}

// WriteData writes length bytes of src at byteOffset within the
// current streamed write.
func (m *Memory) WriteData(src []byte, length int, byteOffset int) bool {
	if !m.streaming {
		return m.fail(4)
	}
	if byteOffset < 0 || length < 0 || length > len(src) || byteOffset+length > BlockSize {
		return m.fail(2)
	}
	block := m.blocks[m.streamAt]
	copy(block[byteOffset:byteOffset+length], src[:length])
	if byteOffset+length > m.streamOff {
		m.streamOff = byteOffset + length
	}
	m.lastErr = 0
	return true
}

// WriteDataPadding advances the streamed write by length zero bytes.
// The block was already zeroed by WriteStart, so this is a no-op
// besides bounds tracking.
func (m *Memory) WriteDataPadding(length int) bool {
	if !m.streaming {
		return m.fail(4)
	}
	if length < 0 || m.streamOff+length > BlockSize {
		return m.fail(2)
	}
	m.streamOff += length
	m.lastErr = 0
	return true
}

// WriteStop ends the streamed write begun by WriteStart.
func (m *Memory) WriteStop() bool {
	if !m.streaming {
		// Mirrors the original begin()-time behavior: stopping a
		// stream that isn't in flight is always safe.
		return true
	}
	m.streaming = false
	m.lastErr = 0
	return true
}

// ReadEnd is a no-op for Memory: reads are never streamed.
func (m *Memory) ReadEnd() {}

var _ Device = (*Memory)(nil)

// String renders a short diagnostic summary, handy when a test fails
// mid-probe.
func (m *Memory) String() string {
	return fmt.Sprintf("blockdev.Memory{blocks=%d}", len(m.blocks))
}
