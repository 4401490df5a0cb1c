package diff

import (
	"cmp"
	"slices"
)

// Range is the half-open interval [Start, End) of indices into a sequence.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices covered by r.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty reports whether r covers no indices.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Hunk replaces the Remove range of the old sequence with the Insert range of
// the new sequence. An empty Remove is a pure insertion, an empty Insert a
// pure deletion.
type Hunk struct {
	Remove Range
	Insert Range
}

// IsInsertion reports whether h only adds lines.
func (h Hunk) IsInsertion() bool {
	return h.Remove.Empty() && !h.Insert.Empty()
}

// IsDeletion reports whether h only removes lines.
func (h Hunk) IsDeletion() bool {
	return h.Insert.Empty() && !h.Remove.Empty()
}

// IsReplacement reports whether h removes lines and adds others in their place.
func (h Hunk) IsReplacement() bool {
	return !h.Remove.Empty() && !h.Insert.Empty()
}

// duplicated marks a token seen more than once in a uniqueness map.
const duplicated = -1

// span is a pending sub-problem: diff a[a0:a1] against b[b0:b1].
type span struct {
	a0, b0, a1, b1 int
}

// anchor is a position pair of a token unique on both sides. b comes first so
// that ordering anchors by (b, a) makes an increasing run a consistent match.
type anchor struct {
	b, a int
}

func compareAnchors(x, y anchor) int {
	if c := cmp.Compare(x.b, y.b); c != 0 {
		return c
	}
	return cmp.Compare(x.a, y.a)
}

// Patience computes the hunks turning a into b using the patience diff
// heuristic: common prefixes and suffixes are trimmed, tokens occurring
// exactly once on both sides are matched, and the longest chain of matches
// appearing in the same order on both sides splits the problem into smaller
// ones. A sub-problem without such tokens becomes a single hunk.
//
// The result is sorted by position and hunks never overlap. Identical inputs
// yield no hunks. Patience does not modify a or b.
func Patience[T comparable](a, b []T) []Hunk {
	var hunks []Hunk
	queue := []span{{0, 0, len(a), len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		for s.a0 < s.a1 && s.b0 < s.b1 && a[s.a0] == b[s.b0] {
			s.a0++
			s.b0++
		}
		for s.a1 > s.a0 && s.b1 > s.b0 && a[s.a1-1] == b[s.b1-1] {
			s.a1--
			s.b1--
		}
		if s.a0 == s.a1 && s.b0 == s.b1 {
			continue
		}

		chain := LongestIncreasingFunc(uniqueAnchors(a, b, s), compareAnchors)
		if len(chain) == 0 {
			hunks = append(hunks, Hunk{
				Remove: Range{s.a0, s.a1},
				Insert: Range{s.b0, s.b1},
			})
			continue
		}

		prev := anchor{s.b0, s.a0}
		for _, next := range append(chain, anchor{s.b1, s.a1}) {
			queue = append(queue, span{prev.a, prev.b, next.a, next.b})
			prev = next
		}
	}

	slices.SortFunc(hunks, func(x, y Hunk) int {
		return cmp.Or(
			cmp.Compare(x.Remove.Start, y.Remove.Start),
			cmp.Compare(x.Remove.End, y.Remove.End),
			cmp.Compare(x.Insert.Start, y.Insert.Start),
			cmp.Compare(x.Insert.End, y.Insert.End),
		)
	})
	return hunks
}

// uniqueAnchors returns, in old-sequence order, the positions of tokens that
// occur exactly once in a[s.a0:s.a1] and exactly once in b[s.b0:s.b1].
func uniqueAnchors[T comparable](a, b []T, s span) []anchor {
	inA := occurrences(a, s.a0, s.a1)
	inB := occurrences(b, s.b0, s.b1)

	var anchors []anchor
	for i := s.a0; i < s.a1; i++ {
		if inA[a[i]] == duplicated {
			continue
		}
		if j, ok := inB[a[i]]; ok && j != duplicated {
			anchors = append(anchors, anchor{b: j, a: i})
		}
	}
	return anchors
}

// occurrences maps each token of seq[lo:hi] to its index, or to duplicated
// when it appears more than once.
func occurrences[T comparable](seq []T, lo, hi int) map[T]int {
	m := make(map[T]int, hi-lo)
	for i := lo; i < hi; i++ {
		if _, seen := m[seq[i]]; seen {
			m[seq[i]] = duplicated
			continue
		}
		m[seq[i]] = i
	}
	return m
}
