package ptrtext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// DecodeErrorText stands in for a record that could not be decoded. The
// repacker leaves records carrying it untouched.
const DecodeErrorText = "<DECODE ERROR>"

// Codec converts between record bytes and editable text.
type Codec interface {
	Name() string
	// Decode fails on any byte sequence the encoding cannot map.
	Decode(raw []byte) (string, error)
	// Encode never fails: characters that cannot be represented are dropped
	// and counted.
	Encode(s string) ([]byte, int)
}

// CodecByName returns one of the built-in legacy encodings.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "shift_jis", "shift-jis", "sjis", "cp932", "windows-31j":
		return &legacyCodec{name: "shift_jis", enc: japanese.ShiftJIS}, nil
	case "euc-jp", "euc_jp", "eucjp":
		return &legacyCodec{name: "euc-jp", enc: japanese.EUCJP}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

type legacyCodec struct {
	name string
	enc  encoding.Encoding
}

func (c *legacyCodec) Name() string { return c.name }

func (c *legacyCodec) Decode(raw []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// x/text substitutes U+FFFD for invalid input instead of failing, and
	// neither encoding can produce it from valid bytes.
	if !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", fmt.Errorf("%w: invalid %s sequence", ErrDecode, c.name)
	}
	// NEC and IBM duplicate codes decode fine but encode to their JIS
	// equivalent, which would rewrite unedited records on repack.
	if back, err := c.enc.NewEncoder().Bytes(out); err != nil || !bytes.Equal(back, raw) {
		return "", fmt.Errorf("%w: %s sequence does not encode back to the same bytes", ErrDecode, c.name)
	}
	return string(out), nil
}

func (c *legacyCodec) Encode(s string) ([]byte, int) {
	e := c.enc.NewEncoder()
	if out, err := e.Bytes([]byte(s)); err == nil {
		return out, 0
	}

	// slow path: keep what maps, drop the rest
	var out []byte
	dropped := 0
	for _, r := range s {
		b, err := e.Bytes([]byte(string(r)))
		if err != nil || r == utf8.RuneError {
			dropped++
			continue
		}
		out = append(out, b...)
	}
	return out, dropped
}

// UnescapeNewlines turns the two-character \n escape stored in the game text
// into real line breaks.
func UnescapeNewlines(s string) string { return strings.ReplaceAll(s, `\n`, "\n") }

// EscapeNewlines is the inverse of UnescapeNewlines.
func EscapeNewlines(s string) string { return strings.ReplaceAll(s, "\n", `\n`) }
