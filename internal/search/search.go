// Package search provides a rank/exact-match binary search over sorted
// sequences, used by the symbol store to find the range of its sorted
// name index that matches a prefix in O(log n) instead of a linear scan.
package search

// Result reports where cmp would insert the query: rank is the number
// of elements strictly less than the query under the comparator
// (equivalently, the index of the first element not-less-than it), and
// Exact reports whether element at that index compares equal.
type Result struct {
	Rank  int
	Exact bool
}

// Find runs a binary search over [0, n) using cmp, which must return
// negative if element i sorts before the query, zero if equal, and
// positive if it sorts after. The sequence accessed through cmp must
// already be sorted consistently with cmp's ordering.
func Find(n int, cmp func(i int) int) Result {
	lo, hi := 0, n
	exact := false
	for lo < hi {
		mid := lo + (hi-lo)/2
		c := cmp(mid)
		switch {
		case c < 0:
			lo = mid + 1
		case c > 0:
			hi = mid
		default:
			exact = true
			hi = mid
		}
	}
	return Result{Rank: lo, Exact: exact}
}

// Range returns the half-open index range [Find(loCmp).Rank,
// Find(hiCmp).Rank) — the slice of elements whose comparator value
// under loCmp is non-negative and under hiCmp is negative. Typical use:
// loCmp/hiCmp bracket a byte-offset span and the caller wants every
// token overlapping it.
func Range(n int, loCmp, hiCmp func(i int) int) (lo, hi int) {
	lo = Find(n, loCmp).Rank
	hi = Find(n, hiCmp).Rank
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
