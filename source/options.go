package source

import (
	"log/slog"

	"github.com/hupe1980/lshdedup/codec"
)

// DefaultColumn selects the second CSV column, the layout of the
// "id,text" exports the batch job was built for.
const DefaultColumn = "1"

// DefaultField is the JSONL field read when none is configured.
const DefaultField = "text"

// DefaultQuery is the SQLite query used when none is configured.
const DefaultQuery = "SELECT text FROM records ORDER BY rowid"

type options struct {
	format   Format
	column   string
	field    string
	noHeader bool
	query    string
	codec    codec.Codec
	logger   *slog.Logger
}

// Option configures a source.
type Option func(*options)

func defaultOptions() options {
	return options{
		column: DefaultColumn,
		field:  DefaultField,
		query:  DefaultQuery,
		codec:  codec.Default,
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithFormat overrides format detection.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// WithColumn selects the CSV column by header name or zero-based index.
func WithColumn(column string) Option {
	return func(o *options) {
		if column != "" {
			o.column = column
		}
	}
}

// WithField selects the JSONL field holding the text.
func WithField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.field = field
		}
	}
}

// WithoutHeader treats the first CSV row as data.
func WithoutHeader() Option {
	return func(o *options) { o.noHeader = true }
}

// WithQuery sets the SQLite query. The first result column is the text.
func WithQuery(query string) Option {
	return func(o *options) {
		if query != "" {
			o.query = query
		}
	}
}

// WithCodec sets the JSON codec for JSONL input.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
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
