package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/lshdedup/blobstore"
	"github.com/hupe1980/lshdedup/internal/compress"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// ReadSQLite reads the first column of the configured query (DefaultQuery
// unless WithQuery is given) from the database at dsn. NULL is an empty text.
func ReadSQLite(ctx context.Context, dsn string, optFns ...Option) ([]string, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return readSQLite(ctx, dsn, &o)
}

func readSQLite(ctx context.Context, dsn string, o *options) (texts []string, err error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	rows, err := db.QueryContext(ctx, o.query)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, rows.Close()) }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: query returns no columns", ErrColumnNotFound)
	}

	var text sql.NullString
	dest := make([]any, len(cols))
	dest[0] = &text
	for i := 1; i < len(dest); i++ {
		dest[i] = new(any)
	}

	for rows.Next() {
		if err := checkContext(ctx, len(texts)); err != nil {
			return nil, err
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &RecordError{Record: len(texts), Err: err}
		}
		texts = append(texts, text.String)
	}
	return texts, rows.Err()
}

// openSQLite reads a database blob. Local uncompressed files are opened in
// place; anything else is copied to a temporary file first.
func openSQLite(ctx context.Context, store blobstore.BlobStore, name string, o *options) ([]string, error) {
	ct := compress.FromExt(name)
	if ls, ok := store.(interface{ Path(string) string }); ok && ct == compress.None {
		return readSQLite(ctx, ls.Path(name), o)
	}

	tmp, err := os.CreateTemp("", "lshdedup-*.db")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if err := copyBlob(ctx, tmp, store, name, ct); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	o.logger.DebugContext(ctx, "sqlite source staged", "name", name, "path", tmp.Name())
	return readSQLite(ctx, tmp.Name(), o)
}

func copyBlob(ctx context.Context, dst io.Writer, store blobstore.BlobStore, name string, ct compress.Type) (err error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rc.Close()) }()

	dr, err := compress.NewReader(rc, ct)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, dr.Close()) }()

	_, err = io.Copy(dst, dr)
	return err
}
