package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/lshdedup/blobstore"
	"github.com/hupe1980/lshdedup/internal/compress"
)

// Save writes the report to the named blob. The format is detected from the
// name unless WithFormat is given; ".zst" and ".lz4" names are compressed.
// A failed write leaves no blob behind on stores with atomic Create.
func Save(ctx context.Context, store blobstore.BlobStore, name string, texts []string, groups [][]uint32, optFns ...Option) error {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	f := o.format
	if f == FormatAuto {
		f = DetectFormat(name)
	}

	start := time.Now()

	var err error
	if f == FormatSQLite {
		err = saveSQLite(ctx, store, name, texts, groups, &o)
	} else {
		err = saveStream(ctx, store, name, texts, groups, f, &o)
	}
	if err != nil {
		return fmt.Errorf("report %s: %w", name, err)
	}

	o.logger.InfoContext(ctx, "report written",
		"name", name,
		"format", f.String(),
		"records", len(texts),
		"groups", len(groups),
		"elapsed", time.Since(start),
	)
	return nil
}

func saveStream(ctx context.Context, store blobstore.BlobStore, name string, texts []string, groups [][]uint32, f Format, o *options) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	cw, err := compress.NewWriter(blob, compress.FromExt(name))
	if err != nil {
		return errors.Join(err, blob.Abort())
	}

	switch f {
	case FormatCSV:
		err = writeCSV(cw, texts, groups, o)
	case FormatJSON:
		err = writeJSON(cw, texts, groups, o)
	default:
		err = fmt.Errorf("report: %v cannot be streamed", f)
	}
	if err == nil {
		err = cw.Close()
	}
	if err != nil {
		return errors.Join(err, blob.Abort())
	}
	return blob.Close()
}

// saveSQLite writes a local database in place, or builds it in a temporary
// file and uploads it.
func saveSQLite(ctx context.Context, store blobstore.BlobStore, name string, texts []string, groups [][]uint32, o *options) error {
	ct := compress.FromExt(name)
	if ls, ok := store.(interface{ Path(string) string }); ok && ct == compress.None {
		return writeSQLite(ctx, ls.Path(name), texts, groups, o)
	}

	tmp, err := os.CreateTemp("", "lshdedup-report-*.db")
	if err != nil {
		return err
	}
	path := tmp.Name()
	defer os.Remove(path)
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := writeSQLite(ctx, path, texts, groups, o); err != nil {
		return err
	}
	return upload(ctx, store, name, path, ct)
}

func upload(ctx context.Context, store blobstore.BlobStore, name, path string, ct compress.Type) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	cw, err := compress.NewWriter(blob, ct)
	if err != nil {
		return errors.Join(err, blob.Abort())
	}
	if _, err := io.Copy(cw, f); err != nil {
		return errors.Join(err, blob.Abort())
	}
	if err := cw.Close(); err != nil {
		return errors.Join(err, blob.Abort())
	}
	return blob.Close()
}
