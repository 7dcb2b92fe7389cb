package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperblockRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sb   Superblock
	}{
		{name: "zero bucket count", sb: Superblock{Version: 1, BucketCount: 0}},
		{name: "typical device", sb: Superblock{Version: 1, BucketCount: 256}},
		{name: "max bucket count", sb: Superblock{Version: 1, BucketCount: 0xFFFFFFFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := EncodeSuperblock(tt.sb)
			require.Len(t, buf, SuperblockSize)
			assert.Equal(t, SuperblockMagic[:], buf[0:5])

			got, ok := DecodeSuperblock(buf)
			require.True(t, ok)
			assert.Equal(t, tt.sb, got)
		})
	}
}

func TestDecodeSuperblockRejectsBadMagic(t *testing.T) {
	buf := make([]byte, SuperblockSize)
	buf[0] = 0xFF
	_, ok := DecodeSuperblock(buf)
	assert.False(t, ok)
}

func TestDecodeSuperblockRejectsShortBuffer(t *testing.T) {
	_, ok := DecodeSuperblock(make([]byte, 4))
	assert.False(t, ok)
}

func TestSegment0RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "single char", filename: "a"},
		{name: "log file", filename: "__LOG"},
		{name: "max length", filename: "abcdefghijklmnopqrstuvw"}, // 23 chars
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Segment0{Handle: 0xCAFEBABE, SegmentCount: 3, Filename: tt.filename}
			buf := EncodeSegment0(s)
			require.Len(t, buf, Segment0Size)
			assert.Equal(t, TagSegment0, buf[0])

			got, kind := DecodeSegment0(buf)
			require.Equal(t, ErrNone, kind)
			assert.Equal(t, s, got)
		})
	}
}

func TestSegment0PaddingByteValue(t *testing.T) {
	s := Segment0{Handle: 1, SegmentCount: 1, Filename: "hello"}
	buf := EncodeSegment0(s)

	wantPadding := byte(MaxFilenameLength + 1 - len("hello"))
	firstPaddingOffset := Segment0HeaderSize + len("hello")
	for i := firstPaddingOffset; i < Segment0HeaderSize+MaxFilenameLength+1; i++ {
		assert.Equal(t, wantPadding, buf[i], "padding byte at offset %d", i)
	}
}

func TestDecodeSegment0HeaderReportsFreeAndWrongType(t *testing.T) {
	free := make([]byte, Segment0Size)
	_, kind := DecodeSegment0Header(free)
	assert.Equal(t, ErrFree, kind)

	wrongType := make([]byte, Segment0Size)
	wrongType[0] = TagSegment
	_, kind = DecodeSegment0Header(wrongType)
	assert.Equal(t, ErrWrongType, kind)
}

func TestDataSegmentRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")
	buf := EncodeDataSegment(0x1000, payload)
	require.Len(t, buf, BlockSize)

	got, kind := DecodeDataSegment(buf)
	require.Equal(t, ErrNone, kind)
	assert.Equal(t, uint32(0x1000), got.Segment0Address)
	assert.Equal(t, uint16(len(payload)), got.Length)
	assert.Equal(t, payload, got.Payload[:len(payload)])
}

func TestDataSegmentMaxPayload(t *testing.T) {
	payload := make([]byte, SegmentDataSize)
	for i := range payload {
		payload[i] = byte(i)
	}
	buf := EncodeDataSegment(7, payload)
	got, kind := DecodeDataSegment(buf)
	require.Equal(t, ErrNone, kind)
	assert.Equal(t, payload, got.Payload[:])
}

func TestDecodeDataSegmentHeaderReportsFreeAndWrongType(t *testing.T) {
	free := make([]byte, BlockSize)
	_, kind := DecodeDataSegmentHeader(free)
	assert.Equal(t, ErrFree, kind)

	wrongType := make([]byte, BlockSize)
	wrongType[0] = TagSegment0
	_, kind = DecodeDataSegmentHeader(wrongType)
	assert.Equal(t, ErrWrongType, kind)
}

func TestJournalRecordRoundTrip(t *testing.T) {
	tests := []JournalRecord{
		{Op: 'c', Segment0Address: 1},
		{Op: 'd', Segment0Address: 0xFFFFFFFF},
	}
	for _, r := range tests {
		buf := EncodeJournalRecord(r)
		require.Len(t, buf, JournalRecordSize)
		got, ok := DecodeJournalRecord(buf)
		require.True(t, ok)
		assert.Equal(t, r, got)
	}
}

func TestDecodeJournalRecordRejectsShortBuffer(t *testing.T) {
	_, ok := DecodeJournalRecord(make([]byte, 2))
	assert.False(t, ok)
}
