package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

func readCSV(ctx context.Context, r io.Reader, o *options) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	col, err := strconv.Atoi(o.column)
	byName := err != nil || col < 0

	if o.noHeader {
		if byName {
			return nil, fmt.Errorf("%w: %q needs a header row", ErrColumnNotFound, o.column)
		}
	} else {
		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if byName {
			header[0] = strings.TrimPrefix(header[0], "\ufeff")
			if col = slices.Index(header, o.column); col < 0 {
				return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, o.column)
			}
		}
	}

	var texts []string
	for {
		if err := checkContext(ctx, len(texts)); err != nil {
			return nil, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return texts, nil
		}
		if err != nil {
			return nil, &RecordError{Record: len(texts), Err: err}
		}
		if col >= len(rec) {
			return nil, &RecordError{
				Record: len(texts),
				Err:    fmt.Errorf("%w: index %d of %d fields", ErrColumnNotFound, col, len(rec)),
			}
		}
		texts = append(texts, strings.Clone(rec[col]))
	}
}
