package ptrtext

import (
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildText joins raw records with 00 00 and returns the blob and the offset
// of every record.
func buildText(tb testing.TB, records ...string) ([]byte, []uint32) {
	tb.Helper()

	var blob []byte
	offs := make([]uint32, 0, len(records))
	for _, r := range records {
		offs = append(offs, uint32(len(blob)))
		blob = append(blob, r...)
		blob = append(blob, 0, 0)
	}
	return blob, offs
}

func buildPointers(vals ...uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func readPointer(tb testing.TB, blob []byte, pos int) uint32 {
	tb.Helper()
	require.LessOrEqual(tb, pos+4, len(blob))
	return binary.LittleEndian.Uint32(blob[pos : pos+4])
}

func sjis(tb testing.TB) Codec {
	tb.Helper()
	c, err := CodecByName("shift_jis")
	require.NoError(tb, err)
	return c
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
