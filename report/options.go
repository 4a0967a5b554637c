package report

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/hupe1980/lshdedup/codec"
	"github.com/hupe1980/lshdedup/internal/compress"
)

// Format identifies an output layout.
type Format uint8

const (
	// FormatAuto detects the format from the file name.
	FormatAuto Format = iota
	FormatCSV
	FormatJSON
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatSQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("report.Format(%d)", uint8(f))
	}
}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	default:
		return FormatAuto, fmt.Errorf("report: unknown format %q", name)
	}
}

// DetectFormat infers the format from a file name, ignoring a compression
// extension. Unknown extensions are written as CSV.
func DetectFormat(name string) Format {
	switch strings.ToLower(path.Ext(compress.TrimExt(name))) {
	case ".json":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// DefaultTable is the SQLite table written when none is configured.
const DefaultTable = "dedup"

type options struct {
	format   Format
	noHeader bool
	codec    codec.Codec
	table    string
	logger   *slog.Logger
}

// Option configures a writer.
type Option func(*options)

func defaultOptions() options {
	return options{
		codec:  codec.Default,
		table:  DefaultTable,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithFormat overrides format detection in Save.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// WithoutHeader omits the CSV header row.
func WithoutHeader() Option {
	return func(o *options) { o.noHeader = true }
}

// WithCodec sets the JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithTable sets the SQLite table name.
func WithTable(table string) Option {
	return func(o *options) {
		if table != "" {
			o.table = table
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
