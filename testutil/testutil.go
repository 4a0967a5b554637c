package testutil

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
)

// RNG wraps a seeded generator. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Vocabulary returns n distinct lowercase words of 4 to 9 letters.
func (r *RNG) Vocabulary(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, n)
	words := make([]string, 0, n)
	var b strings.Builder
	for len(words) < n {
		b.Reset()
		for range 4 + r.rand.IntN(6) {
			b.WriteByte(byte('a' + r.rand.IntN(26)))
		}
		w := b.String()
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}

// Text joins n words drawn from vocab.
func (r *RNG) Text(vocab []string, n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := make([]string, n)
	for i := range words {
		words[i] = vocab[r.rand.IntN(len(vocab))]
	}
	return strings.Join(words, " ")
}

// Mutate replaces edits randomly chosen word positions of text with words
// from vocab.
func (r *RNG) Mutate(text string, vocab []string, edits int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	for range edits {
		words[r.rand.IntN(len(words))] = vocab[r.rand.IntN(len(vocab))]
	}
	return strings.Join(words, " ")
}

// CorpusConfig shapes a generated corpus.
type CorpusConfig struct {
	// Families is the number of planted groups.
	Families int
	// MinSize and MaxSize bound the members per family. A family of one is a
	// unique record.
	MinSize, MaxSize int
	// Words is the length of each text.
	Words int
	// Edits is the number of word edits per family member.
	Edits int
	// Vocabulary is the number of distinct words.
	Vocabulary int
}

// DefaultCorpusConfig returns a small corpus with clear-cut families.
func DefaultCorpusConfig() CorpusConfig {
	return CorpusConfig{
		Families:   50,
		MinSize:    1,
		MaxSize:    4,
		Words:      60,
		Edits:      1,
		Vocabulary: 5000,
	}
}

// Corpus is a generated record set with its planted groups.
type Corpus struct {
	Texts []string
	// Families holds record ids per planted group, members ascending and
	// groups ordered by their smallest member.
	Families [][]uint32
}

// Corpus generates records and shuffles them so family members are not
// adjacent.
func (r *RNG) Corpus(cfg CorpusConfig) Corpus {
	vocab := r.Vocabulary(cfg.Vocabulary)

	type member struct {
		family int
		text   string
	}
	var members []member
	for f := range cfg.Families {
		size := cfg.MinSize
		if cfg.MaxSize > cfg.MinSize {
			size += r.IntN(cfg.MaxSize - cfg.MinSize + 1)
		}
		base := r.Text(vocab, cfg.Words)
		for range size {
			members = append(members, member{family: f, text: r.Mutate(base, vocab, cfg.Edits)})
		}
	}

	r.mu.Lock()
	r.rand.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })
	r.mu.Unlock()

	c := Corpus{Texts: make([]string, len(members))}
	byFamily := make([][]uint32, cfg.Families)
	for id, m := range members {
		c.Texts[id] = m.text
		byFamily[m.family] = append(byFamily[m.family], uint32(id))
	}
	for _, ids := range byFamily {
		if len(ids) > 0 {
			c.Families = append(c.Families, ids)
		}
	}
	slices.SortFunc(c.Families, func(a, b []uint32) int { return cmp.Compare(a[0], b[0]) })
	return c
}

// Jaccard returns the exact Jaccard similarity of two token sets.
// Two empty sets are identical.
func Jaccard(a, b []string) float64 {
	sa := make(map[string]struct{}, len(a))
	for _, t := range a {
		sa[t] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, t := range b {
		sb[t] = struct{}{}
	}
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}

	inter := 0
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}
