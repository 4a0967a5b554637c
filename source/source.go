package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/lshdedup/blobstore"
	"github.com/hupe1980/lshdedup/internal/compress"
)

// checkEvery is how many records are read between context checks.
const checkEvery = 4096

// Open reads all texts of the named blob. The format is detected from the
// name unless WithFormat is given; ".zst" and ".lz4" blobs are decompressed.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) ([]string, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	f := o.format
	if f == FormatAuto {
		f = DetectFormat(name)
	}

	start := time.Now()

	var (
		texts []string
		err   error
	)
	if f == FormatSQLite {
		texts, err = openSQLite(ctx, store, name, &o)
	} else {
		texts, err = openStream(ctx, store, name, f, &o)
	}
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	o.logger.InfoContext(ctx, "source read",
		"name", name,
		"format", f.String(),
		"records", len(texts),
		"elapsed", time.Since(start),
	)
	return texts, nil
}

func openStream(ctx context.Context, store blobstore.BlobStore, name string, f Format, o *options) (texts []string, err error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, rc.Close()) }()

	dr, err := compress.NewReader(rc, compress.FromExt(name))
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, dr.Close()) }()

	return read(ctx, dr, f, o)
}

// Read reads all texts from r. SQLite input must go through Open or ReadSQLite.
func Read(ctx context.Context, r io.Reader, f Format, optFns ...Option) ([]string, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return read(ctx, r, f, &o)
}

func read(ctx context.Context, r io.Reader, f Format, o *options) ([]string, error) {
	switch f {
	case FormatCSV:
		return readCSV(ctx, r, o)
	case FormatLines:
		return readLines(ctx, r)
	case FormatJSONL:
		return readJSONL(ctx, r, o)
	default:
		return nil, fmt.Errorf("%w: %v cannot be streamed", ErrUnknownFormat, f)
	}
}

func checkContext(ctx context.Context, n int) error {
	if n%checkEvery != 0 {
		return nil
	}
	return ctx.Err()
}
