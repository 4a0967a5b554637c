package lshdedup

import (
	"cmp"
	"context"
	"iter"
	"slices"

	"github.com/hupe1980/lshdedup/lsh"
	"github.com/hupe1980/lshdedup/minhash"
)

// Match is a record similar to a searched text.
type Match struct {
	ID         uint32
	Similarity float64
	// Group is the position of the record's group in Result.Groups.
	Group int
}

// Search creates a fluent search for records similar to text. The text is
// signed with the run's configuration; it does not need to be part of the corpus.
//
// Example:
//
//	matches, err := res.Search("the cat sat on a mat").
//	    Threshold(0.5).
//	    Limit(10).
//	    Execute(ctx)
func (r *Result) Search(text string) *SearchBuilder {
	return &SearchBuilder{r: r, text: text}
}

// SearchBuilder is a fluent builder for similarity searches.
type SearchBuilder struct {
	r         *Result
	text      string
	threshold *float64
	limit     int
	filter    func(id uint32) bool
}

// Threshold keeps only records with estimated similarity >= t.
func (sb *SearchBuilder) Threshold(t float64) *SearchBuilder {
	sb.threshold = &t
	return sb
}

// Limit caps the number of matches. 0 means no limit.
func (sb *SearchBuilder) Limit(n int) *SearchBuilder {
	sb.limit = n
	return sb
}

// Filter keeps only records where fn returns true.
func (sb *SearchBuilder) Filter(fn func(id uint32) bool) *SearchBuilder {
	sb.filter = fn
	return sb
}

// Execute runs the search. Matches are ordered by descending similarity,
// then ascending id.
func (sb *SearchBuilder) Execute(ctx context.Context) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := sb.r.index
	sig := idx.Sign(sb.text)
	cands, err := idx.Query(sig, lsh.WithOptionalThreshold(sb.threshold))
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, cands.GetCardinality())
	it := cands.Iterator()
	for it.HasNext() {
		id := it.Next()
		if sb.filter != nil && !sb.filter(id) {
			continue
		}
		other, err := idx.Signature(id)
		if err != nil {
			return nil, err
		}
		group, _ := sb.r.GroupOf(id)
		matches = append(matches, Match{
			ID:         id,
			Similarity: minhash.Similarity(sig, other),
			Group:      group,
		})
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if sb.limit > 0 && len(matches) > sb.limit {
		matches = matches[:sb.limit]
	}
	return matches, nil
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) []Match {
	matches, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return matches
}

// Stream returns an iterator over the matches in Execute order.
// The iterator supports early termination by breaking from the loop.
func (sb *SearchBuilder) Stream(ctx context.Context) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		matches, err := sb.Execute(ctx)
		if err != nil {
			yield(Match{}, err)
			return
		}
		for _, m := range matches {
			if !yield(m, nil) {
				return
			}
		}
	}
}

// single returns a copy of sb limited to one match.
func (sb *SearchBuilder) single() *SearchBuilder {
	c := *sb
	c.limit = 1
	return &c
}

// First returns the most similar record, or ErrNotFound.
func (sb *SearchBuilder) First(ctx context.Context) (Match, error) {
	matches, err := sb.single().Execute(ctx)
	if err != nil {
		return Match{}, err
	}
	if len(matches) == 0 {
		return Match{}, ErrNotFound
	}
	return matches[0], nil
}

// Count returns the number of matches.
func (sb *SearchBuilder) Count(ctx context.Context) (int, error) {
	matches, err := sb.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Exists reports whether at least one record matches.
func (sb *SearchBuilder) Exists(ctx context.Context) (bool, error) {
	matches, err := sb.single().Execute(ctx)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}
