package ptrtext

// StringIndex is the set of offsets where a non-empty record begins.
type StringIndex map[uint32]struct{}

// ScanRecords walks blob record by record. A record starts at the blob start
// or right after a delimiter and runs to the next delimiter; empty segments
// are not recorded and bytes after the last delimiter are never indexed.
func ScanRecords(blob []byte) StringIndex {
	idx := make(StringIndex)
	cur := 0
	for cur < len(blob) {
		end := FindDelimiter(blob, cur)
		if end == -1 {
			break
		}
		if end > cur {
			idx[uint32(cur)] = struct{}{}
		}
		cur = end + len(Delimiter)
	}
	return idx
}

func (s StringIndex) Contains(off uint32) bool {
	_, ok := s[off]
	return ok
}

func (s StringIndex) Len() int { return len(s) }
