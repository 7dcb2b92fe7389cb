package hashfs

import "github.com/scigolib/hashfs/internal/codec"

// Journal record operation bytes, per the wire format in internal/codec.
const (
	journalOpCreate = 'c'
	journalOpDelete = 'd'
)

// appendJournalRecord appends a 5-byte create/delete record to the
// hidden journal file through the ordinary append path. CreateFile and
// DeleteFile already guard against journaling hidden-prefixed names
// before calling this, so the journal never records itself.
func (fs *FS) appendJournalRecord(op byte, seg0Addr uint32) error {
	rec := codec.JournalRecord{Op: op, Segment0Address: seg0Addr}
	return fs.AppendFile(logFileHandle, codec.EncodeJournalRecord(rec))
}
