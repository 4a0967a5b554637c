package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a, b := NewRNG(4711), NewRNG(4711)
	assert.Equal(t, a.Uint64(), b.Uint64())

	first := a.IntN(1000)
	a.Reset()
	_ = a.Uint64()
	assert.Equal(t, first, a.IntN(1000))
	assert.Equal(t, uint64(4711), a.Seed())
}

func TestVocabulary(t *testing.T) {
	words := NewRNG(1).Vocabulary(500)
	require.Len(t, words, 500)

	seen := map[string]bool{}
	for _, w := range words {
		assert.False(t, seen[w], w)
		seen[w] = true
		assert.GreaterOrEqual(t, len(w), 4)
		assert.LessOrEqual(t, len(w), 9)
	}
}

func TestMutate(t *testing.T) {
	rng := NewRNG(2)
	vocab := rng.Vocabulary(100)
	text := rng.Text(vocab, 30)

	mutated := rng.Mutate(text, vocab, 1)
	a, b := strings.Fields(text), strings.Fields(mutated)
	require.Len(t, b, 30)

	diff := 0
	for i := range a {
		if a[i] != b[i] {
			diff++
		}
	}
	assert.LessOrEqual(t, diff, 1)
	assert.Equal(t, "", rng.Mutate("", vocab, 3))
}

func TestCorpus(t *testing.T) {
	cfg := DefaultCorpusConfig()
	c := NewRNG(4711).Corpus(cfg)

	assert.Len(t, c.Families, cfg.Families)

	total := 0
	for i, fam := range c.Families {
		require.NotEmpty(t, fam)
		assert.LessOrEqual(t, len(fam), cfg.MaxSize)
		assert.IsIncreasing(t, fam)
		if i > 0 {
			assert.Less(t, c.Families[i-1][0], fam[0])
		}
		for _, id := range fam[1:] {
			sim := Jaccard(strings.Fields(c.Texts[fam[0]]), strings.Fields(c.Texts[id]))
			assert.Greater(t, sim, 0.8)
		}
		total += len(fam)
	}
	assert.Len(t, c.Texts, total)

	assert.Equal(t, c, NewRNG(4711).Corpus(cfg))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard(nil, nil))
	assert.Equal(t, 0.0, Jaccard([]string{"a"}, nil))
	assert.Equal(t, 0.5, Jaccard([]string{"a", "b", "b"}, []string{"b", "c", "a", "d"}))
}
