package types

import (
	"fmt"
	"math"
	"slices"
)

/*
PairKey stores a directed pair of ids (i, j) in a uint64 so that pairs can be
used as map keys and compared numerically. Unlike an edge key the direction is
kept: i occupies the high 32 bits, so numeric order of PairKeys is the
lexicographic order of (i, j).
*/
type PairKey uint64

func NewPairKey(i, j int) (packed PairKey) {
	var (
		limit = math.MaxUint32
	)
	if i < 0 || i > limit || j < 0 || j > limit {
		panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
			i, j))
	}
	packed = PairKey(i<<32 + j)
	return
}

func (pk PairKey) GetNodes() (i, j int) {
	i = int(pk >> 32)
	j = int(pk & math.MaxUint32)
	return
}

// Pair is an unpacked directed node pair.
type Pair struct {
	I, J int
}

func (p Pair) Key() PairKey { return NewPairKey(p.I, p.J) }

func ComparePairs(a, b Pair) int {
	switch {
	case a.I != b.I:
		return a.I - b.I
	default:
		return a.J - b.J
	}
}

// Triple identifies one derivative entry: the coefficient between I and J
// differentiated with respect to a variable living at node K.
type Triple struct {
	I, J, K int
}

func CompareTriples(a, b Triple) int {
	switch {
	case a.I != b.I:
		return a.I - b.I
	case a.J != b.J:
		return a.J - b.J
	default:
		return a.K - b.K
	}
}

// SortUniquePairs sorts in place and removes duplicates
func SortUniquePairs(pairs []Pair) []Pair {
	slices.SortFunc(pairs, ComparePairs)
	return slices.Compact(pairs)
}

func SortUniqueTriples(triples []Triple) []Triple {
	slices.SortFunc(triples, CompareTriples)
	return slices.Compact(triples)
}

func SortUniqueInts(ids []int) []int {
	slices.Sort(ids)
	return slices.Compact(ids)
}
