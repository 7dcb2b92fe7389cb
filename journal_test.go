package hashfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/hashfs/internal/codec"
)

// readLogRecords reads the whole "__LOG" file back and decodes every
// 5-byte record in it.
func readLogRecords(t *testing.T, fs *FS) []codec.JournalRecord {
	t.Helper()
	var info FileInfo
	require.NoError(t, fs.StatFile(logFileHandle, &info, nil))

	buf := make([]byte, int(info.SegmentCount-1)*codec.SegmentDataSize)
	n, err := fs.ReadFile(logFileHandle, 0, buf)
	require.NoError(t, err)
	buf = buf[:n]

	var records []codec.JournalRecord
	for len(buf) >= codec.JournalRecordSize {
		rec, ok := codec.DecodeJournalRecord(buf)
		require.True(t, ok)
		records = append(records, rec)
		buf = buf[codec.JournalRecordSize:]
	}
	return records
}

func TestJournalRecordsCreateAndDelete(t *testing.T) {
	fs := mustMount(t, 256)
	h := NameHandle("alpha")

	before := readLogRecords(t, fs)

	require.NoError(t, fs.CreateFile(h, "alpha", nil))
	var head uint32
	require.NoError(t, fs.StatFile(h, nil, &head))

	after := readLogRecords(t, fs)
	require.Len(t, after, len(before)+1)
	last := after[len(after)-1]
	assert.Equal(t, byte(journalOpCreate), last.Op)
	assert.Equal(t, head, last.Segment0Address)

	require.NoError(t, fs.DeleteFile(h))
	final := readLogRecords(t, fs)
	require.Len(t, final, len(after)+1)
	lastDelete := final[len(final)-1]
	assert.Equal(t, byte(journalOpDelete), lastDelete.Op)
	assert.Equal(t, head, lastDelete.Segment0Address)
}

func TestJournalSkipsHiddenFiles(t *testing.T) {
	fs := mustMount(t, 256)
	before := readLogRecords(t, fs)

	h := NameHandle("__scratch")
	require.NoError(t, fs.CreateFile(h, "__scratch", nil))
	require.NoError(t, fs.DeleteFile(h))

	after := readLogRecords(t, fs)
	assert.Equal(t, len(before), len(after))
}
