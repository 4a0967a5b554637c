package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// WriteSQLite writes the rows into a table of the database at dsn,
// replacing any previous table of the same name.
func WriteSQLite(ctx context.Context, dsn string, texts []string, groups [][]uint32, optFns ...Option) error {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return writeSQLite(ctx, dsn, texts, groups, &o)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func writeSQLite(ctx context.Context, dsn string, texts []string, groups [][]uint32, o *options) (err error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	table := quoteIdent(o.table)
	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table),
		fmt.Sprintf(`CREATE TABLE %s (
			doc_id     INTEGER PRIMARY KEY,
			text       TEXT NOT NULL,
			dupe_id    INTEGER NOT NULL,
			group_size INTEGER NOT NULL
		)`, table),
		fmt.Sprintf(`CREATE INDEX %s ON %s (dupe_id)`, quoteIdent(o.table+"_dupe_id"), table),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	ins, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (doc_id, text, dupe_id, group_size) VALUES (?, ?, ?, ?)`, table))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ins.Close()) }()

	for row, err := range Rows(texts, groups) {
		if err != nil {
			return err
		}
		if _, err := ins.ExecContext(ctx, row.DocID, row.Text, row.DupeID, row.GroupSize); err != nil {
			return err
		}
	}

	return tx.Commit()
}
