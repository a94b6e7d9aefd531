package ptrtext

import (
	"fmt"
	"log/slog"
)

// Outcome is what happened to one export entry.
type Outcome int

const (
	Replaced  Outcome = iota // written over the original slot
	Relocated                // appended, pointers moved
	Skipped                  // offset has no record in the original text
	Kept                     // decode-error placeholder, original bytes kept
)

func (o Outcome) String() string {
	switch o {
	case Replaced:
		return "replaced"
	case Relocated:
		return "relocated"
	case Skipped:
		return "skipped"
	case Kept:
		return "kept"
	default:
		return "unknown"
	}
}

// EntryResult records the fate of one entry.
type EntryResult struct {
	Seq       int
	Offset    uint32
	NewOffset uint32 // equals Offset unless Relocated
	Outcome   Outcome
	Size      int // encoded size including the delimiter
	Slot      int // original slot size including the delimiter
	Dropped   int // characters the codec could not encode
	Pointers  int // slots rewritten
}

// RepackResult is the output of Repack.
type RepackResult struct {
	Text     []byte
	Pointers []byte
	Entries  []EntryResult

	Replaced  int
	Relocated int
	Skipped   int
	Kept      int
	Dropped   int
	Appended  int // bytes added to the text blob
}

// Repack writes entries back into text in the order given. An entry that
// fits its original slot (delimiter included) is written in place and any
// leftover bytes of the slot are left as they were. One that does not fit is
// appended to the end of the text and every pointer slot that held its old
// offset when the table was parsed is pointed at the new one.
//
// Slot sizes always come from the text as it was before this run. If the
// same offset appears twice the last entry wins.
func Repack(entries []ExportEntry, text []byte, table *PointerTable, codec Codec, log *slog.Logger) (*RepackResult, error) {
	if log == nil {
		log = discardLogger()
	}

	orig := text
	blob := NewTextBlob(text)
	res := &RepackResult{Entries: make([]EntryResult, 0, len(entries))}

	for _, e := range entries {
		er := EntryResult{Seq: e.Seq, Offset: e.Offset, NewOffset: e.Offset}

		if e.Text == DecodeErrorText {
			er.Outcome = Kept
			res.Kept++
			res.Entries = append(res.Entries, er)
			log.Info("kept undecodable string", "seq", e.Seq, "offset", hexOff(e.Offset))
			continue
		}

		enc, dropped := codec.Encode(EscapeNewlines(e.Text))
		enc = append(enc, Delimiter...)
		er.Size = len(enc)
		er.Dropped = dropped
		res.Dropped += dropped
		if dropped > 0 {
			log.Warn("characters not encodable, dropped", "seq", e.Seq, "offset", hexOff(e.Offset), "count", dropped, "codec", codec.Name())
		}

		end := FindDelimiter(orig, int(e.Offset))
		if end == -1 {
			er.Outcome = Skipped
			res.Skipped++
			res.Entries = append(res.Entries, er)
			log.Warn("delimiter 00 00 not found, skipping", "seq", e.Seq, "offset", hexOff(e.Offset))
			continue
		}
		er.Slot = end + len(Delimiter) - int(e.Offset)

		if er.Size <= er.Slot {
			if err := blob.Overwrite(int(e.Offset), enc); err != nil {
				return nil, fmt.Errorf("string %d: %w", e.Seq, err)
			}
			er.Outcome = Replaced
			res.Replaced++
			res.Entries = append(res.Entries, er)
			log.Info("replaced", "seq", e.Seq, "offset", hexOff(e.Offset), "size", er.Size, "slot", er.Slot)
			continue
		}

		newOff := blob.Append(enc)
		if uint64(newOff) > uint64(^uint32(0)) {
			return nil, fmt.Errorf("string %d: relocated offset 0x%X does not fit a 32-bit pointer", e.Seq, newOff)
		}
		er.NewOffset = uint32(newOff)
		for _, pos := range table.Positions(e.Offset) {
			if err := table.Rewrite(pos, er.NewOffset); err != nil {
				return nil, fmt.Errorf("string %d: %w", e.Seq, err)
			}
			er.Pointers++
		}
		er.Outcome = Relocated
		res.Relocated++
		res.Appended += er.Size
		res.Entries = append(res.Entries, er)
		log.Info("relocated", "seq", e.Seq, "from", hexOff(e.Offset), "to", hexOff(er.NewOffset), "pointers", er.Pointers)
	}

	res.Text = blob.Bytes()
	res.Pointers = table.Bytes()
	return res, nil
}
