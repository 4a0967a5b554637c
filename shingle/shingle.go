package shingle

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Shingler converts text into a set of shingles.
type Shingler interface {
	// Shingles returns the distinct shingles of text. Order is unspecified.
	// Empty or whitespace-only text yields an empty set.
	Shingles(text string) []string
}

// Func adapts a plain function to the Shingler interface.
type Func func(text string) []string

// Shingles implements Shingler.
func (f Func) Shingles(text string) []string { return f(text) }

type words struct{}

// Words returns a Shingler that lowercases text and splits it on Unicode whitespace.
func Words() Shingler { return words{} }

func (words) Shingles(text string) []string {
	return distinct(strings.Fields(strings.ToLower(text)))
}

func (words) String() string { return "words" }

type wordNGrams struct {
	k int
}

// WordNGrams returns a Shingler emitting contiguous k-word windows joined by a
// single space. Texts with fewer than k words yield a single shingle of all words.
func WordNGrams(k int) (Shingler, error) {
	if k < 1 {
		return nil, fmt.Errorf("shingle: word n-gram size must be positive, got %d", k)
	}
	return wordNGrams{k: k}, nil
}

func (s wordNGrams) Shingles(text string) []string {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) <= s.k {
		return []string{strings.Join(tokens, " ")}
	}

	grams := make([]string, 0, len(tokens)-s.k+1)
	for i := 0; i+s.k <= len(tokens); i++ {
		grams = append(grams, strings.Join(tokens[i:i+s.k], " "))
	}
	return distinct(grams)
}

func (s wordNGrams) String() string { return fmt.Sprintf("word-%d-grams", s.k) }

type charNGrams struct {
	k int
}

// CharNGrams returns a Shingler emitting rune k-grams over the lowercased text
// with whitespace runs collapsed to a single space.
func CharNGrams(k int) (Shingler, error) {
	if k < 1 {
		return nil, fmt.Errorf("shingle: char n-gram size must be positive, got %d", k)
	}
	return charNGrams{k: k}, nil
}

func (s charNGrams) Shingles(text string) []string {
	collapsed := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if collapsed == "" {
		return nil
	}
	rs := []rune(collapsed)
	if len(rs) <= s.k {
		return []string{collapsed}
	}

	grams := make([]string, 0, len(rs)-s.k+1)
	for i := 0; i+s.k <= len(rs); i++ {
		grams = append(grams, string(rs[i:i+s.k]))
	}
	return distinct(grams)
}

func (s charNGrams) String() string { return fmt.Sprintf("char-%d-grams", s.k) }

type normalized struct {
	inner Shingler
}

// Normalize wraps inner so text is NFKD-decomposed, stripped of combining
// marks and case-folded before inner sees it.
func Normalize(inner Shingler) Shingler {
	if inner == nil {
		inner = Words()
	}
	return normalized{inner: inner}
}

func (n normalized) Shingles(text string) []string {
	return n.inner.Shingles(NormalizeText(text))
}

func (n normalized) String() string { return fmt.Sprintf("normalized(%v)", n.inner) }

// NormalizeText applies the same folding as Normalize. Invalid UTF-8 is
// returned unchanged.
func NormalizeText(text string) string {
	if !utf8.ValidString(text) {
		return text
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// ByName resolves the shingler names accepted on the command line:
// "words", "word-ngrams", "char-ngrams". k is ignored for "words".
func ByName(name string, k int, normalize bool) (Shingler, error) {
	var (
		s   Shingler
		err error
	)
	switch name {
	case "", "words":
		s = Words()
	case "word-ngrams":
		s, err = WordNGrams(k)
	case "char-ngrams":
		s, err = CharNGrams(k)
	default:
		return nil, fmt.Errorf("shingle: unknown shingler %q", name)
	}
	if err != nil {
		return nil, err
	}
	if normalize {
		s = Normalize(s)
	}
	return s, nil
}

func distinct(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
