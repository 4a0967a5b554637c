package report

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/bits-and-blooms/bitset"
)

var (
	// ErrDuplicateRecord is returned when a record appears in two groups.
	ErrDuplicateRecord = errors.New("report: duplicate record")
	// ErrUnknownRecord is returned for a record id outside the input.
	ErrUnknownRecord = errors.New("report: unknown record")
	// ErrMissingRecord is returned when groups do not cover every record.
	ErrMissingRecord = errors.New("report: missing record")
)

// Row is one output record.
type Row struct {
	DocID     uint32 `json:"doc_id"`
	Text      string `json:"text"`
	DupeID    int    `json:"dupe_id"`
	GroupSize int    `json:"group_size"`
}

// Header is the CSV header row.
var Header = []string{"doc_id", "text", "dupe_id", "group_size"}

// Rows yields the rows group by group. Iteration stops with an error on
// the first record that is unknown or already emitted, and after the last
// row if some record was never emitted.
func Rows(texts []string, groups [][]uint32) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		g := newGuard(len(texts))
		for dupeID, members := range groups {
			for _, id := range members {
				if err := g.visit(id); err != nil {
					yield(Row{}, err)
					return
				}
				row := Row{
					DocID:     id,
					Text:      texts[id],
					DupeID:    dupeID,
					GroupSize: len(members),
				}
				if !yield(row, nil) {
					return
				}
			}
		}
		if err := g.done(); err != nil {
			yield(Row{}, err)
		}
	}
}

// Collect returns all rows, or the first guard violation.
func Collect(texts []string, groups [][]uint32) ([]Row, error) {
	rows := make([]Row, 0, len(texts))
	for row, err := range Rows(texts, groups) {
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type guard struct {
	seen  *bitset.BitSet
	n     int
	count int
}

func newGuard(n int) *guard {
	return &guard{seen: bitset.New(uint(n)), n: n}
}

func (g *guard) visit(id uint32) error {
	if int64(id) >= int64(g.n) {
		return fmt.Errorf("%w: %d of %d", ErrUnknownRecord, id, g.n)
	}
	if g.seen.Test(uint(id)) {
		return fmt.Errorf("%w: %d", ErrDuplicateRecord, id)
	}
	g.seen.Set(uint(id))
	g.count++
	return nil
}

func (g *guard) done() error {
	if g.count == g.n {
		return nil
	}
	missing, _ := g.seen.Complement().NextSet(0)
	return fmt.Errorf("%w: %d (%d of %d written)", ErrMissingRecord, missing, g.count, g.n)
}

// Summary counts records and groups.
type Summary struct {
	Total  int `json:"total"`
	Unique int `json:"unique"`
	Diff   int `json:"diff"`
}

// Summarize derives the summary of a grouping.
func Summarize(total int, groups [][]uint32) Summary {
	return Summary{Total: total, Unique: len(groups), Diff: total - len(groups)}
}

func (s Summary) String() string {
	return fmt.Sprintf("Total: %d, Unique: %d, Diff: %d", s.Total, s.Unique, s.Diff)
}

// WriteTo prints the summary as tab-separated lines.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Total:\t%d\nUnique:\t%d\nDiff:\t%d\n", s.Total, s.Unique, s.Diff)
	return int64(n), err
}
