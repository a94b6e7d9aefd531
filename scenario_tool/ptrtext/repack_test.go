package ptrtext

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extractEntries runs the extract side and reads the export back, the way a
// user without edits would.
func extractEntries(tb testing.TB, text, ptr []byte, c Codec) []ExportEntry {
	tb.Helper()

	entries := Extract(ParsePointerTable(ptr), ScanRecords(text), text, c, nil)
	var buf bytes.Buffer
	_, err := WriteExport(&buf, entries)
	require.NoError(tb, err)
	got, anomalies, err := ParseExport(buf.String())
	require.NoError(tb, err)
	require.Empty(tb, anomalies)
	return got
}

func TestRepackRoundTrip(t *testing.T) {
	c := sjis(t)
	text, offs := buildText(t,
		"Hello",
		`World\nLine2`,
		"\x83\x5Cn",        // ソn
		"\x82\xA0\x82\xA2", // あい
		"   ",
		"tail line",
		"\x87\x90",    // NEC ≒, encodes as 81 E0
		"A\x87\x95B", // NEC √, encodes as 81 E3
	)
	text = append(text, "UNTERMINATED"...)
	ptr := buildPointers(offs[0], offs[1], offs[1], offs[0]+2, offs[2], offs[3], offs[4], 0xFFFF0000, offs[5], offs[6], offs[7])
	ptr = append(ptr, 0x01, 0x02)

	entries := extractEntries(t, text, ptr, c)
	require.Len(t, entries, 7)
	assert.Equal(t, DecodeErrorText, entries[5].Text)
	assert.Equal(t, DecodeErrorText, entries[6].Text)

	res, err := Repack(entries, text, ParsePointerTable(ptr), c, nil)
	require.NoError(t, err)

	assert.Equal(t, text, res.Text)
	assert.Equal(t, ptr, res.Pointers)
	assert.Equal(t, 5, res.Replaced)
	assert.Equal(t, 2, res.Kept)
	assert.Zero(t, res.Relocated)
	assert.Zero(t, res.Appended)
}

func TestRepackRoundTripTableDuplicates(t *testing.T) {
	tbl, err := ParseTable(strings.NewReader("41=A\n42=B\n61=A\n"), "dup.tbl")
	require.NoError(t, err)

	text, offs := buildText(t, "AB", "aB")
	ptr := buildPointers(offs[0], offs[1])

	entries := extractEntries(t, text, ptr, tbl)
	require.Len(t, entries, 2)
	assert.Equal(t, "AB", entries[0].Text)
	assert.Equal(t, DecodeErrorText, entries[1].Text)

	res, err := Repack(entries, text, ParsePointerTable(ptr), tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, text, res.Text)
	assert.Equal(t, ptr, res.Pointers)
	assert.Equal(t, 1, res.Replaced)
	assert.Equal(t, 1, res.Kept)
}

func TestRepackInPlace(t *testing.T) {
	c := sjis(t)
	text, offs := buildText(t, "Hello", "World")
	ptr := buildPointers(offs[0], offs[1])

	res, err := Repack([]ExportEntry{{Seq: 1, Offset: offs[0], Text: "Hi"}}, text, ParsePointerTable(ptr), c, nil)
	require.NoError(t, err)

	assert.Len(t, res.Text, len(text))
	assert.Equal(t, ptr, res.Pointers)
	assert.Equal(t, []byte("Hi\x00\x00o\x00\x00World\x00\x00"), res.Text, "old slot bytes after the new delimiter stay")
	require.Len(t, res.Entries, 1)
	assert.Equal(t, Replaced, res.Entries[0].Outcome)
	assert.Equal(t, 4, res.Entries[0].Size)
	assert.Equal(t, 7, res.Entries[0].Slot)

	// the record still reads back as the new text
	s, err := c.Decode(mustRecord(t, res.Text, offs[0]))
	require.NoError(t, err)
	assert.Equal(t, "Hi", s)
}

func TestRepackExactFit(t *testing.T) {
	text, offs := buildText(t, "Hello")
	res, err := Repack([]ExportEntry{{Seq: 1, Offset: offs[0], Text: "Howdy"}}, text, ParsePointerTable(buildPointers(offs[0])), sjis(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []byte("Howdy\x00\x00"), res.Text)
	assert.Equal(t, 1, res.Replaced)
}

func TestRepackRelocation(t *testing.T) {
	c := sjis(t)
	text, offs := buildText(t, "Hi", "Other")
	// positions 0 and 8 alias the first string; 4 points elsewhere
	ptr := buildPointers(offs[0], offs[1], offs[0], 0xABCD)

	newText := "Hello there"
	res, err := Repack([]ExportEntry{{Seq: 1, Offset: offs[0], Text: newText}}, text, ParsePointerTable(ptr), c, nil)
	require.NoError(t, err)

	encoded := len(newText) + 2
	assert.Len(t, res.Text, len(text)+encoded)
	assert.Equal(t, text, res.Text[:len(text)], "original bytes are left as dead space")
	assert.Equal(t, []byte(newText+"\x00\x00"), res.Text[len(text):])

	newOff := uint32(len(text))
	assert.Equal(t, newOff, readPointer(t, res.Pointers, 0))
	assert.Equal(t, newOff, readPointer(t, res.Pointers, 8))
	assert.Equal(t, offs[1], readPointer(t, res.Pointers, 4))
	assert.Equal(t, uint32(0xABCD), readPointer(t, res.Pointers, 12))

	require.Len(t, res.Entries, 1)
	er := res.Entries[0]
	assert.Equal(t, Relocated, er.Outcome)
	assert.Equal(t, newOff, er.NewOffset)
	assert.Equal(t, 2, er.Pointers)
	assert.Equal(t, encoded, res.Appended)
}

func TestRepackRelocationsAppendInOrder(t *testing.T) {
	c := sjis(t)
	text, offs := buildText(t, "a", "b")
	ptr := buildPointers(offs[1], offs[0])

	res, err := Repack([]ExportEntry{
		{Seq: 2, Offset: offs[1], Text: "second grows"},
		{Seq: 1, Offset: offs[0], Text: "first grows"},
	}, text, ParsePointerTable(ptr), c, nil)
	require.NoError(t, err)

	first := uint32(len(text))
	second := first + uint32(len("second grows")+2)
	assert.Equal(t, first, readPointer(t, res.Pointers, 0))
	assert.Equal(t, second, readPointer(t, res.Pointers, 4))
	assert.Equal(t, 2, res.Relocated)
}

func TestRepackMissingDelimiter(t *testing.T) {
	c := sjis(t)
	text, offs := buildText(t, "Hello", "World")
	text = append(text, "NO END"...)
	ptr := buildPointers(offs[0], offs[1])

	res, err := Repack([]ExportEntry{
		{Seq: 1, Offset: uint32(len(text) - 3), Text: "lost"},
		{Seq: 2, Offset: 0x100000, Text: "far away"},
		{Seq: 3, Offset: offs[1], Text: "Earth"},
		{Seq: 4, Offset: offs[0], Text: "Greetings"},
	}, text, ParsePointerTable(ptr), c, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Replaced)
	assert.Equal(t, 1, res.Relocated)
	assert.Equal(t, Skipped, res.Entries[0].Outcome)
	assert.Equal(t, Skipped, res.Entries[1].Outcome)
	assert.Equal(t, []byte("Earth"), mustRecord(t, res.Text, offs[1]))
	assert.Equal(t, uint32(len(text)), readPointer(t, res.Pointers, 0))
}

func TestRepackKeepsDecodeErrors(t *testing.T) {
	text, offs := buildText(t, "\xFF\xFE", "ok")
	ptr := buildPointers(offs[0], offs[1])

	res, err := Repack([]ExportEntry{
		{Seq: 1, Offset: offs[0], Text: DecodeErrorText},
		{Seq: 2, Offset: offs[1], Text: "ok"},
	}, text, ParsePointerTable(ptr), sjis(t), nil)
	require.NoError(t, err)

	assert.Equal(t, text, res.Text)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, Kept, res.Entries[0].Outcome)
}

func TestRepackDropsUnencodable(t *testing.T) {
	text, offs := buildText(t, "Hello")
	res, err := Repack([]ExportEntry{{Seq: 1, Offset: offs[0], Text: "H😀i"}}, text, ParsePointerTable(buildPointers(offs[0])), sjis(t), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, []byte("Hi"), mustRecord(t, res.Text, offs[0]))
}

func TestRepackNewlines(t *testing.T) {
	text, offs := buildText(t, "0123456789")
	res, err := Repack([]ExportEntry{{Seq: 1, Offset: offs[0], Text: "a\nb"}}, text, ParsePointerTable(buildPointers(offs[0])), sjis(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []byte(`a\nb`), mustRecord(t, res.Text, offs[0]))
}

// Duplicate offsets are not expected from Extract. Both entries are applied
// in order and the last one decides where the pointers end up.
func TestRepackDuplicateOffsetLastWins(t *testing.T) {
	c := sjis(t)
	text, offs := buildText(t, "ab")
	ptr := buildPointers(offs[0], offs[0])

	res, err := Repack([]ExportEntry{
		{Seq: 1, Offset: offs[0], Text: "first long"},
		{Seq: 1, Offset: offs[0], Text: "second long"},
	}, text, ParsePointerTable(ptr), c, nil)
	require.NoError(t, err)

	second := uint32(len(text) + len("first long") + 2)
	assert.Equal(t, second, readPointer(t, res.Pointers, 0))
	assert.Equal(t, second, readPointer(t, res.Pointers, 4))
	assert.Equal(t, []byte("second long"), mustRecord(t, res.Text, second))

	t.Run("in place", func(t *testing.T) {
		text, offs := buildText(t, "abcdef")
		res, err := Repack([]ExportEntry{
			{Seq: 1, Offset: offs[0], Text: "xyz"},
			{Seq: 1, Offset: offs[0], Text: "q"},
		}, text, ParsePointerTable(buildPointers(offs[0])), c, nil)
		require.NoError(t, err)

		assert.Equal(t, []byte("q"), mustRecord(t, res.Text, offs[0]))
		assert.Len(t, res.Text, len(text))
	})
}

func TestRepackDoesNotMutateInputs(t *testing.T) {
	text, offs := buildText(t, "Hi")
	ptr := buildPointers(offs[0])
	textCopy := append([]byte(nil), text...)
	ptrCopy := append([]byte(nil), ptr...)

	_, err := Repack([]ExportEntry{{Seq: 1, Offset: offs[0], Text: "Hello!"}}, text, ParsePointerTable(ptr), sjis(t), nil)
	require.NoError(t, err)

	assert.Equal(t, textCopy, text)
	assert.Equal(t, ptrCopy, ptr)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "replaced", Replaced.String())
	assert.Equal(t, "relocated", Relocated.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "kept", Kept.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func mustRecord(tb testing.TB, text []byte, off uint32) []byte {
	tb.Helper()
	raw, _, ok := recordAt(text, int(off))
	require.True(tb, ok, "no record at 0x%X", off)
	return raw
}
