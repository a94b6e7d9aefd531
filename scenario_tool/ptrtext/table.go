package ptrtext

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TableCodec maps byte codes to characters through a HEX=char table, the
// format fan translations use once the game font has been redrawn.
//
//	82A0=あ
//	8393=ン
//	41=A
type TableCodec struct {
	name     string
	decode   map[string]string // raw code -> text
	encode   map[string][]byte // text -> raw code
	maxCode  int
	maxRunes int
}

// LoadTable reads a .tbl file.
func LoadTable(path string) (*TableCodec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open table file: %w", err)
	}
	defer f.Close()
	return ParseTable(f, filepath.Base(path))
}

// ParseTable reads table lines from r. Lines without '=' and lines starting
// with # or // are ignored; a key
// that is not hex is an error. When two codes map to the same text the first
// one is used for encoding.
func ParseTable(r io.Reader, name string) (*TableCodec, error) {
	t := &TableCodec{
		name:   name,
		decode: make(map[string]string),
		encode: make(map[string][]byte),
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok || v == "" {
			continue
		}
		code, err := hex.DecodeString(strings.TrimSpace(k))
		if err != nil || len(code) == 0 || len(code) > 4 {
			return nil, fmt.Errorf("%w: %s line %d: bad code %q", ErrBadTable, name, lineNo, k)
		}

		t.decode[string(code)] = v
		if _, dup := t.encode[v]; !dup {
			t.encode[v] = code
		}
		if len(code) > t.maxCode {
			t.maxCode = len(code)
		}
		if n := len([]rune(v)); n > t.maxRunes {
			t.maxRunes = n
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadTable, name, err)
	}
	if len(t.decode) == 0 {
		return nil, fmt.Errorf("%w: %s has no entries", ErrBadTable, name)
	}
	return t, nil
}

func (t *TableCodec) Name() string { return "table:" + t.name }

// Len is the number of codes in the table.
func (t *TableCodec) Len() int { return len(t.decode) }

// Decode matches the longest known code at each position. A record the
// table cannot encode back to the same bytes fails with ErrDecode.
func (t *TableCodec) Decode(raw []byte) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(raw); {
		n := t.maxCode
		if rest := len(raw) - i; rest < n {
			n = rest
		}
		matched := false
		for ; n > 0; n-- {
			if s, ok := t.decode[string(raw[i:i+n])]; ok {
				sb.WriteString(s)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			return "", fmt.Errorf("%w: no table entry for %02X at +%d", ErrDecode, raw[i], i)
		}
	}
	// duplicate characters encode to their first code only
	if back, dropped := t.Encode(sb.String()); dropped > 0 || !bytes.Equal(back, raw) {
		return "", fmt.Errorf("%w: %s cannot encode the record back to the same bytes", ErrDecode, t.Name())
	}
	return sb.String(), nil
}

// Encode matches the longest known text at each position; characters with
// no code are dropped.
func (t *TableCodec) Encode(s string) ([]byte, int) {
	runes := []rune(s)
	out := make([]byte, 0, len(runes)*2)
	dropped := 0
	for i := 0; i < len(runes); {
		n := t.maxRunes
		if rest := len(runes) - i; rest < n {
			n = rest
		}
		matched := false
		for ; n > 0; n-- {
			if code, ok := t.encode[string(runes[i:i+n])]; ok {
				out = append(out, code...)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			dropped++
			i++
		}
	}
	return out, dropped
}
