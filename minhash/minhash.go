package minhash

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/hupe1980/lshdedup/internal/hash"
	"github.com/hupe1980/lshdedup/shingle"
)

const (
	// Prime is the Mersenne prime 2^61−1 used as the permutation modulus.
	Prime uint64 = (1 << 61) - 1

	// Sentinel is the value of every entry of an empty signature. Permuted
	// values are always below Prime, so Sentinel never collides with them.
	Sentinel uint64 = math.MaxUint64
)

// ErrInvalidNumPerm is returned when the permutation count is not positive.
var ErrInvalidNumPerm = errors.New("minhash: number of permutations must be positive")

// Signature is an ordered sequence of permutation minima.
type Signature []uint64

// Len returns the number of permutations.
func (s Signature) Len() int { return len(s) }

// Equal reports whether both signatures have identical entries.
func (s Signature) Equal(other Signature) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether s is the signature of an empty shingle set.
func (s Signature) IsEmpty() bool {
	for _, v := range s {
		if v != Sentinel {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s Signature) Clone() Signature {
	out := make(Signature, len(s))
	copy(out, s)
	return out
}

type permutation struct {
	a uint64 // 1 <= a < Prime
	b uint64 // 0 <= b < Prime
}

func (p permutation) apply(x uint64) uint64 {
	hi, lo := bits.Mul64(p.a, x)
	lo, carry := bits.Add64(lo, p.b, 0)
	hi += carry
	return bits.Rem64(hi, lo, Prime)
}

// Hasher computes signatures with a fixed set of permutations.
// It is immutable and safe for concurrent use.
type Hasher struct {
	seed  uint64
	perms []permutation
}

// New creates a Hasher with numPerm permutations derived from seed.
func New(numPerm int, seed uint64) (*Hasher, error) {
	if numPerm <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumPerm, numPerm)
	}

	perms := make([]permutation, numPerm)
	for i := range perms {
		perms[i] = permutation{
			a: hash.Seeded(seed, i, 0)%(Prime-1) + 1,
			b: hash.Seeded(seed, i, 1) % Prime,
		}
	}
	return &Hasher{seed: seed, perms: perms}, nil
}

// NumPerm returns the signature length.
func (h *Hasher) NumPerm() int { return len(h.perms) }

// Seed returns the seed the permutations were derived from.
func (h *Hasher) Seed() uint64 { return h.seed }

// Sum computes the signature of a shingle set. Duplicate shingles do not
// change the result.
func (h *Hasher) Sum(shingles []string) Signature {
	sig := make(Signature, len(h.perms))
	for i := range sig {
		sig[i] = Sentinel
	}

	for _, s := range shingles {
		x := hash.String(s)
		for i, p := range h.perms {
			if v := p.apply(x); v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}

// Signature shingles text with s and returns its signature.
// A nil shingler uses shingle.Words.
func (h *Hasher) Signature(text string, s shingle.Shingler) Signature {
	if s == nil {
		s = shingle.Words()
	}
	return h.Sum(s.Shingles(text))
}

// Matches counts the positions at which a and b agree.
// Signatures of different lengths have no matches.
func Matches(a, b Signature) int {
	if len(a) != len(b) {
		return 0
	}
	n := 0
	for i := range a {
		if a[i] == b[i] {
			n++
		}
	}
	return n
}

// Similarity estimates the Jaccard similarity of the shingle sets behind a
// and b as the fraction of agreeing positions.
func Similarity(a, b Signature) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	return float64(Matches(a, b)) / float64(len(a))
}

// Jaccard computes the exact Jaccard similarity of two shingle sets.
// Two empty sets are considered identical.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	inter := 0
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			inter++
		}
	}
	union := len(set) + len(seen) - inter
	return float64(inter) / float64(union)
}
