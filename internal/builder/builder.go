// Package builder implements the three Compressed Window construction
// strategies — AllAlign, Monotonic, and SingleColumn (§4.4–§4.6) — that
// turn a tokenized document corpus plus a hash family into per-hash-function
// CW tables.
package builder

import (
	"fmt"
	"io"

	"ragalign/internal/cw"
	"ragalign/internal/wtype"
)

// Hasher is the subset of hasher.IntHasher / hasher.RealHasher a builder
// needs: scoring a (hash-function id, token, weight) triple. Builders are
// generic over the weight type so the Integer and Real precisions share one
// code path per algorithm instead of two near-duplicate ones.
type Hasher[W wtype.Weight] interface {
	Eval(hid, token int, weight W) W
}

// Result holds the built CW tables, one slice per hash function (§4.3).
type Result[W wtype.Weight] struct {
	K     int
	Table [][]cw.CW[W]
}

// Size is the total CW record count across all k hash functions.
func (r *Result[W]) Size() int64 {
	var n int64
	for _, t := range r.Table {
		n += int64(len(t))
	}
	return n
}

// DebugDump writes every CW record, grouped by hash function.
func (r *Result[W]) DebugDump(w io.Writer) {
	for hid, t := range r.Table {
		for _, rec := range t {
			fmt.Fprintf(w, "hid=%d T=%d v=%v a=%d b=%d c=%d d=%d\n",
				hid, rec.T, rec.V, rec.A, rec.B, rec.C, rec.D)
		}
	}
}

// scratch holds the per-corpus arrays every builder reuses across
// documents and hash functions. Reallocating freq/first/next tables per
// document would dwarf the sketching work itself on large corpora, so the
// arena is sized once (tokenNum) and the per-document arrays grow only
// when a longer document demands it.
type scratch struct {
	freq, first  []int
	next, rnext  []int
}

func newScratch(tokenNum int) *scratch {
	return &scratch{
		freq:  make([]int, tokenNum),
		first: make([]int, tokenNum),
	}
}

func (s *scratch) ensureDocArrays(n int) {
	if cap(s.next) < n+1 {
		s.next = make([]int, n+1)
		s.rnext = make([]int, n+1)
		return
	}
	s.next = s.next[:n+1]
	s.rnext = s.rnext[:n+1]
}

// maxFreqOf computes a document's max per-token frequency, leaving freq
// zeroed again on return (the counting pass is self-resetting).
func maxFreqOf(doc []int, freq []int) int {
	for _, t := range doc {
		freq[t] = 0
	}
	maxFreq := 0
	for _, t := range doc {
		freq[t]++
		if freq[t] > maxFreq {
			maxFreq = freq[t]
		}
	}
	for _, t := range doc {
		freq[t] = 0
	}
	return maxFreq
}

// buildLinks builds both the forward (next) and backward (rnext)
// same-token occurrence chains AllAlign needs: next[i] is the next index
// holding doc[i]'s token (or n if none), rnext[i] is the previous one (or
// -1 if none).
func (s *scratch) buildLinks(doc []int) {
	n := len(doc)
	s.ensureDocArrays(n)

	for _, t := range doc {
		s.first[t] = -1
	}
	for i, t := range doc {
		s.rnext[i] = s.first[t]
		s.first[t] = i
	}

	for _, t := range doc {
		s.first[t] = n
	}
	s.next[n] = n
	for i := n - 1; i >= 0; i-- {
		s.next[i] = s.first[doc[i]]
		s.first[doc[i]] = i
	}
}

// buildNext builds only the forward chain, leaving first[t] holding each
// token's first occurrence index — what Monotonic needs.
func (s *scratch) buildNext(doc []int) {
	n := len(doc)
	s.ensureDocArrays(n)

	for _, t := range doc {
		s.first[t] = n
	}
	s.next[n] = n
	for i := n - 1; i >= 0; i-- {
		s.next[i] = s.first[doc[i]]
		s.first[doc[i]] = i
	}
}
