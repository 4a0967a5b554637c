package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// readJSONL reads one object per line. Blank lines are skipped; a null
// field is an empty text.
func readJSONL(ctx context.Context, r io.Reader, o *options) ([]string, error) {
	sc := newScanner(r)

	var texts []string
	for sc.Scan() {
		if err := checkContext(ctx, len(texts)); err != nil {
			return nil, err
		}

		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var obj map[string]any
		if err := o.codec.Unmarshal(line, &obj); err != nil {
			return nil, &RecordError{Record: len(texts), Err: err}
		}

		v, ok := obj[o.field]
		if !ok {
			return nil, &RecordError{Record: len(texts), Err: fmt.Errorf("%w: %q", ErrColumnNotFound, o.field)}
		}
		switch v := v.(type) {
		case string:
			texts = append(texts, v)
		case nil:
			texts = append(texts, "")
		default:
			return nil, &RecordError{Record: len(texts), Err: fmt.Errorf("field %q is %T, not a string", o.field, v)}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &RecordError{Record: len(texts), Err: err}
	}
	return texts, nil
}
