package ptrtext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/opencontainers/go-digest"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for per-string status events. Without it the
// pipeline is silent.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithCodec overrides the codec named in the config.
func WithCodec(c Codec) Option {
	return func(p *Pipeline) { p.codec = c }
}

// Pipeline runs the file-level steps for one project. Output directories
// must exist before Extract or Repack is called.
type Pipeline struct {
	cfg   Config
	codec Codec
	log   *slog.Logger
}

// NewPipeline validates cfg and resolves its codec.
func NewPipeline(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, log: discardLogger()}
	for _, o := range opts {
		o(p)
	}
	if p.codec == nil {
		c, err := cfg.Codec()
		if err != nil {
			return nil, err
		}
		p.codec = c
	}
	return p, nil
}

func (p *Pipeline) Config() Config { return p.cfg }

func (p *Pipeline) Codec() Codec { return p.codec }

// ExtractResult describes a finished extraction.
type ExtractResult struct {
	Records int // record starts in the text blob
	Slots   int // pointers read
	Strings int // blocks written
	Path    string
	Size    int64
	Digest  digest.Digest
}

// Extract reads both input blobs and writes the export file.
func (p *Pipeline) Extract(ctx context.Context) (*ExtractResult, error) {
	ptrPath, textPath := p.cfg.PointerPath(), p.cfg.TextPath()
	p.log.Info("reading pointers", "path", ptrPath)
	ptr, err := readInput(ptrPath)
	if err != nil {
		return nil, err
	}
	p.log.Info("reading text", "path", textPath)
	text, err := readInput(textPath)
	if err != nil {
		return nil, err
	}

	index := ScanRecords(text)
	table := ParsePointerTable(ptr)
	p.log.Info("indexed", "records", index.Len(), "pointers", len(table.Slots()), "valid", len(ValidTargets(table, index)))

	entries := Extract(table, index, text, p.codec, p.log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	n, err := WriteExport(&buf, entries)
	if err != nil {
		return nil, err
	}
	out := p.cfg.ExportPath()
	if err := writeFileAtomic(out, buf.Bytes()); err != nil {
		return nil, err
	}
	p.log.Info("export written", "strings", len(entries), "path", out)

	return &ExtractResult{
		Records: index.Len(),
		Slots:   len(table.Slots()),
		Strings: len(entries),
		Path:    out,
		Size:    n,
		Digest:  digest.FromBytes(buf.Bytes()),
	}, nil
}

// RepackOutput is a RepackResult plus where it went.
type RepackOutput struct {
	*RepackResult

	Blocks          int
	Anomalies       []Anomaly
	TextPath        string
	PointerPath     string
	TextDigest      digest.Digest
	PointerDigest   digest.Digest
	TextChanged     bool
	PointersChanged bool
}

// Repack applies the export file to the input blobs and writes the results to
// the modified directory. Nothing is written unless every block has been
// processed.
func (p *Pipeline) Repack(ctx context.Context) (*RepackOutput, error) {
	exportPath := p.cfg.ExportPath()
	raw, err := readInput(exportPath)
	if err != nil {
		return nil, err
	}
	entries, anomalies, err := ParseExport(string(raw))
	for _, a := range anomalies {
		p.log.Warn("skipping block", "file", exportPath, "line", a.Line, "reason", a.Reason)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", exportPath, err)
	}
	p.log.Info("blocks found", "count", len(entries), "path", exportPath)

	text, err := readInput(p.cfg.TextPath())
	if err != nil {
		return nil, err
	}
	ptr, err := readInput(p.cfg.PointerPath())
	if err != nil {
		return nil, err
	}

	res, err := Repack(entries, text, ParsePointerTable(ptr), p.codec, p.log)
	if err != nil {
		return nil, err
	}
	if res.Replaced+res.Relocated == 0 {
		p.log.Warn("no string was written back", "blocks", len(entries), "skipped", res.Skipped)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &RepackOutput{
		RepackResult:  res,
		Blocks:        len(entries),
		Anomalies:     anomalies,
		TextPath:      p.cfg.RepackedTextPath(),
		PointerPath:   p.cfg.RepackedPointerPath(),
		TextDigest:    digest.FromBytes(res.Text),
		PointerDigest: digest.FromBytes(res.Pointers),
	}
	out.TextChanged = !bytes.Equal(res.Text, text)
	out.PointersChanged = !bytes.Equal(res.Pointers, ptr)

	if err := writeFileAtomic(out.TextPath, res.Text); err != nil {
		return nil, err
	}
	if err := writeFileAtomic(out.PointerPath, res.Pointers); err != nil {
		return nil, err
	}
	p.log.Info("repack written", "text", out.TextPath, "pointers", out.PointerPath)
	return out, nil
}

// Scan reports how the pointer blob lines up with the text blob.
func (p *Pipeline) Scan(ctx context.Context) (Report, error) {
	ptr, err := readInput(p.cfg.PointerPath())
	if err != nil {
		return Report{}, err
	}
	text, err := readInput(p.cfg.TextPath())
	if err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	return Inspect(text, ptr), nil
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func hexOff(v uint32) string { return fmt.Sprintf("0x%X", v) }
