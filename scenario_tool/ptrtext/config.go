package ptrtext

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Config names the folders and files of one project. Paths are relative to
// the working directory unless absolute.
type Config struct {
	InputDir    string `ini:"input_dir"`
	OutputDir   string `ini:"output_dir"`
	ModifiedDir string `ini:"modified_dir"`
	PointerFile string `ini:"pointer_file"`
	TextFile    string `ini:"text_file"`
	ExportFile  string `ini:"export_file"`
	Encoding    string `ini:"encoding"`
	Table       string `ini:"table"` // .tbl file; overrides Encoding when set
}

// DefaultConfig matches the layout the tool has always used:
// input/ -> output/text_with_pointers.txt -> modified/.
func DefaultConfig() Config {
	return Config{
		InputDir:    "input",
		OutputDir:   "output",
		ModifiedDir: "modified",
		PointerFile: "scenario.dat",
		TextFile:    "textdata.dat",
		ExportFile:  "text_with_pointers.txt",
		Encoding:    "shift_jis",
	}
}

// LoadConfig overlays the keys of an ini file on DefaultConfig. Empty values
// keep the default and a missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := f.Section("").MapTo(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configs that leave a file name empty.
func (c Config) Validate() error {
	for _, kv := range [][2]string{
		{"pointer_file", c.PointerFile},
		{"text_file", c.TextFile},
		{"export_file", c.ExportFile},
	} {
		if strings.TrimSpace(kv[1]) == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, kv[0])
		}
	}
	return nil
}

func (c Config) PointerPath() string { return filepath.Join(c.InputDir, c.PointerFile) }

func (c Config) TextPath() string { return filepath.Join(c.InputDir, c.TextFile) }

func (c Config) ExportPath() string { return filepath.Join(c.OutputDir, c.ExportFile) }

func (c Config) RepackedTextPath() string { return filepath.Join(c.ModifiedDir, c.TextFile) }

func (c Config) RepackedPointerPath() string { return filepath.Join(c.ModifiedDir, c.PointerFile) }

// Codec resolves the text codec, loading the table file when one is set.
func (c Config) Codec() (Codec, error) {
	if c.Table != "" {
		t, err := LoadTable(c.Table)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return CodecByName(c.Encoding)
}
