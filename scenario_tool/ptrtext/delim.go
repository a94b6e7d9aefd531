package ptrtext

import "bytes"

// Delimiter terminates every record in the text blob.
var Delimiter = []byte{0x00, 0x00}

// FindDelimiter returns the position of the first 00 00 at or after from,
// or -1 if there is none. Extraction and repacking both resolve record ends
// through here so they always agree on slot boundaries.
func FindDelimiter(buf []byte, from int) int {
	if from < 0 || from >= len(buf) {
		return -1
	}
	i := bytes.Index(buf[from:], Delimiter)
	if i < 0 {
		return -1
	}
	return from + i
}

// recordAt returns the bytes of the record starting at off (delimiter
// excluded) and the delimiter position.
func recordAt(buf []byte, off int) ([]byte, int, bool) {
	end := FindDelimiter(buf, off)
	if end < 0 {
		return nil, -1, false
	}
	return buf[off:end], end, true
}
