package engine

import (
	"fmt"
	"reflect"
	"sort"
)

// keyedDiff is the reconciliation plan for one keyed list render.
type keyedDiff struct {
	// match maps each next index to the prev index holding the same key,
	// or -1 when the key is new and its item must be built.
	match []int

	// moved marks next indices whose items are retained but repositioned:
	// matched, yet outside the stable spine.
	moved []bool

	// razed lists prev indices whose keys are absent from next.
	razed []int

	builds, moves int
}

// diffKeys matches the previous ordered key sequence against the next
// one. Matching keys form a stable spine — the longest increasing
// subsequence of their previous positions, equivalent to the longest
// common subsequence since keys are unique — which stays in place; other
// retained keys become moves, absent keys razes, new keys builds.
//
// Complexity is O(n log n): one map pass to match keys plus patience
// sorting for the spine.
func diffKeys(prev, next []any) (keyedDiff, error) {
	prevIndex := make(map[any]int, len(prev))
	for i, k := range prev {
		if !keyUsable(k) {
			return keyedDiff{}, fmt.Errorf("list key %v (%T) is not hashable", k, k)
		}
		if _, dup := prevIndex[k]; dup {
			return keyedDiff{}, fmt.Errorf("duplicate list key %v", k)
		}
		prevIndex[k] = i
	}

	d := keyedDiff{
		match: make([]int, len(next)),
		moved: make([]bool, len(next)),
	}
	seen := make(map[any]struct{}, len(next))
	matchedPrev := make([]bool, len(prev))

	// seq collects, in next order, the prev positions of retained keys.
	type retained struct{ nextIdx, prevIdx int }
	var seq []retained

	for i, k := range next {
		if !keyUsable(k) {
			return keyedDiff{}, fmt.Errorf("list key %v (%T) is not hashable", k, k)
		}
		if _, dup := seen[k]; dup {
			return keyedDiff{}, fmt.Errorf("duplicate list key %v", k)
		}
		seen[k] = struct{}{}

		if p, ok := prevIndex[k]; ok {
			d.match[i] = p
			matchedPrev[p] = true
			seq = append(seq, retained{nextIdx: i, prevIdx: p})
		} else {
			d.match[i] = -1
			d.builds++
		}
	}

	for i := range prev {
		if !matchedPrev[i] {
			d.razed = append(d.razed, i)
		}
	}

	// Spine: longest increasing subsequence of prev positions. Retained
	// keys outside it are repositioned via span-slot reassignment.
	inSpine := longestIncreasing(seq, func(r retained) int { return r.prevIdx })
	for i, r := range seq {
		if !inSpine[i] {
			d.moved[r.nextIdx] = true
			d.moves++
		}
	}

	return d, nil
}

// keyUsable reports whether k can serve as a map key.
func keyUsable(k any) bool {
	if k == nil {
		return false
	}
	return reflect.TypeOf(k).Comparable()
}

// longestIncreasing marks the elements of seq forming a longest strictly
// increasing subsequence of val(seq[i]). Patience sorting with binary
// search, O(n log n).
func longestIncreasing[T any](seq []T, val func(T) int) []bool {
	n := len(seq)
	marked := make([]bool, n)
	if n == 0 {
		return marked
	}

	// tails[l] is the index in seq of the smallest tail of any increasing
	// subsequence of length l+1.
	tails := make([]int, 0, n)
	prev := make([]int, n)

	for i := range seq {
		v := val(seq[i])
		pos := sort.Search(len(tails), func(j int) bool {
			return val(seq[tails[j]]) >= v
		})
		if pos > 0 {
			prev[i] = tails[pos-1]
		} else {
			prev[i] = -1
		}
		if pos == len(tails) {
			tails = append(tails, i)
		} else {
			tails[pos] = i
		}
	}

	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		marked[i] = true
	}
	return marked
}
