package ptrtext

import "fmt"

// TextBlob is the working copy of textdata.dat. Existing bytes may only be
// overwritten in place; the blob grows by appending relocated records.
type TextBlob struct {
	buf []byte
}

// NewTextBlob copies data into a new blob.
func NewTextBlob(data []byte) *TextBlob {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &TextBlob{buf: buf}
}

func (b *TextBlob) Len() int { return len(b.buf) }

func (b *TextBlob) Bytes() []byte { return b.buf }

// Overwrite copies p over the blob at off. It never grows the blob.
func (b *TextBlob) Overwrite(off int, p []byte) error {
	if off < 0 || off+len(p) > len(b.buf) {
		return fmt.Errorf("overwrite 0x%X+%d past end of text (%d bytes)", off, len(p), len(b.buf))
	}
	copy(b.buf[off:], p)
	return nil
}

// Append adds p at the end and returns the offset it was written at.
func (b *TextBlob) Append(p []byte) int {
	off := len(b.buf)
	b.buf = append(b.buf, p...)
	return off
}
