package ptrtext

import (
	"log/slog"
	"sort"
	"strings"
)

// ValidTargets returns the distinct pointer values that land on a record
// start, ascending. Values that hit the middle of a record or miss the blob
// are taken to be non-pointer data that happens to be four bytes wide.
func ValidTargets(table *PointerTable, index StringIndex) []uint32 {
	seen := make(map[uint32]struct{})
	var out []uint32
	for _, s := range table.Slots() {
		if !index.Contains(s.Value) {
			continue
		}
		if _, dup := seen[s.Value]; dup {
			continue
		}
		seen[s.Value] = struct{}{}
		out = append(out, s.Value)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extract decodes every record referenced by the pointer table. Records that
// fail to decode are exported as DecodeErrorText; records that are only
// whitespace are left out. Seq numbers the kept entries from 1.
func Extract(table *PointerTable, index StringIndex, text []byte, codec Codec, log *slog.Logger) []ExportEntry {
	if log == nil {
		log = discardLogger()
	}

	var entries []ExportEntry
	for _, off := range ValidTargets(table, index) {
		raw, _, ok := recordAt(text, int(off))
		if !ok {
			continue
		}

		s, err := codec.Decode(raw)
		if err != nil {
			log.Warn("decode failed", "offset", hexOff(off), "err", err)
			s = DecodeErrorText
		} else {
			s = UnescapeNewlines(s)
		}
		if strings.TrimSpace(s) == "" {
			continue
		}

		entries = append(entries, ExportEntry{
			Seq:    len(entries) + 1,
			Offset: off,
			Text:   s,
		})
	}
	return entries
}
