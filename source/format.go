package source

import (
	"fmt"
	"path"
	"strings"

	"github.com/hupe1980/lshdedup/internal/compress"
)

// Format identifies an input layout.
type Format uint8

const (
	// FormatAuto detects the format from the file name.
	FormatAuto Format = iota
	FormatCSV
	FormatLines
	FormatJSONL
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatCSV:
		return "csv"
	case FormatLines:
		return "lines"
	case FormatJSONL:
		return "jsonl"
	case FormatSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("source.Format(%d)", uint8(f))
	}
}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "lines", "txt", "text":
		return FormatLines, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	default:
		return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DetectFormat infers the format from a file name, ignoring a compression
// extension. Unknown extensions are read as CSV.
func DetectFormat(name string) Format {
	switch strings.ToLower(path.Ext(compress.TrimExt(name))) {
	case ".txt", ".lines":
		return FormatLines
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}
