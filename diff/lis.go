package diff

import (
	"cmp"
	"slices"
)

// LongestIncreasing returns a longest strictly increasing subsequence of v,
// preserving the original relative order of the elements. When several
// subsequences share the maximal length, which one is returned is determined
// by the patience sort below. Inputs with fewer than two elements are
// returned as is.
func LongestIncreasing[T cmp.Ordered](v []T) []T {
	return LongestIncreasingFunc(v, cmp.Compare[T])
}

// LongestIncreasingFunc is like [LongestIncreasing] but orders elements with
// cmp, which must return a negative number when a < b, zero when a == b and a
// positive number when a > b.
//
// It runs in O(n log n) time using patience sorting: every element is placed
// on the leftmost pile whose top is not smaller than it, and remembers where
// the pile to its left stood at that moment.
func LongestIncreasingFunc[T any](v []T, cmp func(a, b T) int) []T {
	if len(v) < 2 {
		return v
	}

	piles := [][]T{{v[0]}}
	// back[i-1][j] is the index into piles[i-1] of the predecessor of
	// piles[i][j]. Piles only ever grow on the right, so the top of pile i-1
	// at insertion time is fully described by its length.
	var back [][]int

	for _, x := range v[1:] {
		i, _ := slices.BinarySearchFunc(piles, x, func(pile []T, target T) int {
			return cmp(pile[len(pile)-1], target)
		})
		if i == len(piles) {
			piles = append(piles, []T{x})
			back = append(back, []int{len(piles[i-1]) - 1})
			continue
		}
		piles[i] = append(piles[i], x)
		if i > 0 {
			back[i-1] = append(back[i-1], len(piles[i-1])-1)
		}
	}

	out := make([]T, 0, len(piles))
	i, j := len(piles)-1, 0
	for i > 0 {
		out = append(out, piles[i][j])
		j = back[i-1][j]
		i--
	}
	out = append(out, piles[0][j])
	slices.Reverse(out)
	return out
}
