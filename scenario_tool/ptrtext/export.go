package ptrtext

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ExportEntry is one block of the export file. Seq is for humans only;
// Offset is the key used when the file comes back.
type ExportEntry struct {
	Seq    int
	Offset uint32
	Text   string
}

// Anomaly describes a block the parser had to skip.
type Anomaly struct {
	Line   int
	Reason string
}

func (a Anomaly) String() string { return fmt.Sprintf("line %d: %s", a.Line, a.Reason) }

var (
	// any line that was meant to be a block header, well formed or not
	blockLineRe = regexp.MustCompile(`(?m)^//=+ *STRING\b[^\n]*$`)
	headerRe    = regexp.MustCompile(`^//=========== STRING (\d+) @0x([0-9A-Fa-f]+) ===========//$`)
)

func header(seq int, off uint32) string {
	return fmt.Sprintf("//=========== STRING %d @0x%X ===========//", seq, off)
}

// WriteExport writes entries as header, text, blank line.
func WriteExport(w io.Writer, entries []ExportEntry) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, e := range entries {
		c, err := fmt.Fprintf(bw, "%s\n%s\n\n", header(e.Seq, e.Offset), e.Text)
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// ParseExport reads blocks back in file order. A block's text is everything
// between its header and the next header line, minus the blank-line
// separator, so edited text may contain blank lines of its own. Header lines
// that do not parse are returned as anomalies and their blocks skipped.
func ParseExport(content string) ([]ExportEntry, []Anomaly, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	locs := blockLineRe.FindAllStringIndex(content, -1)
	var (
		entries   []ExportEntry
		anomalies []Anomaly
		line      = 1
		last      = 0
	)
	for i, loc := range locs {
		line += strings.Count(content[last:loc[0]], "\n")
		last = loc[0]

		bodyStart := loc[1] + 1
		if bodyStart > len(content) {
			bodyStart = len(content)
		}
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}

		m := headerRe.FindStringSubmatch(content[loc[0]:loc[1]])
		if m == nil {
			anomalies = append(anomalies, Anomaly{Line: line, Reason: "malformed block header"})
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			anomalies = append(anomalies, Anomaly{Line: line, Reason: "bad sequence number " + m[1]})
			continue
		}
		off, err := strconv.ParseUint(m[2], 16, 32)
		if err != nil {
			anomalies = append(anomalies, Anomaly{Line: line, Reason: "offset 0x" + m[2] + " out of range"})
			continue
		}

		entries = append(entries, ExportEntry{
			Seq:    seq,
			Offset: uint32(off),
			Text:   trimSeparator(content[bodyStart:bodyEnd]),
		})
	}

	if len(entries) == 0 {
		return nil, anomalies, ErrNoBlocks
	}
	return entries, anomalies, nil
}

func trimSeparator(body string) string {
	if strings.HasSuffix(body, "\n\n") {
		return body[:len(body)-2]
	}
	return strings.TrimSuffix(body, "\n")
}
