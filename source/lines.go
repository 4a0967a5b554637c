package source

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// maxLine bounds a single record of line-oriented input.
const maxLine = 64 << 20

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	return sc
}

// readLines returns one record per line. Empty lines are records too.
func readLines(ctx context.Context, r io.Reader) ([]string, error) {
	sc := newScanner(r)

	var texts []string
	for sc.Scan() {
		if err := checkContext(ctx, len(texts)); err != nil {
			return nil, err
		}
		texts = append(texts, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, &RecordError{Record: len(texts), Err: err}
	}
	return texts, nil
}
