// Package query answers approximate containment queries against a built
// sketch index: compute a query signature, find the CWs whose min-hash
// value matches it, then sweep two axes to find sufficiently-covered
// position ranges (§4.7).
package query

import (
	"sort"

	"ragalign/internal/cw"
	"ragalign/internal/wtype"
)

// eps absorbs floating-point slop in the threshold*K comparison, the same
// tolerance the original scan used.
const eps = 1e-5

// Hasher is the subset of hasher.IntHasher / hasher.RealHasher the query
// engine needs to score a query token.
type Hasher[W wtype.Weight] interface {
	Eval(hid, token int, weight W) W
}

// Match is a reported containment hit: a document and the position range
// within it that collides with the query signature on at least
// threshold*K hash functions.
//
// In the default (asymmetric) mode L is the outer (c/d-axis) segment's
// start and R is taken from the inner (a/b-axis) scan rather than the
// outer one it was found under — a literal behavior carried over rather
// than corrected, see Engine.Symmetric. In symmetric mode L/R report the
// outer segment, giving the full two-axis rectangle together with
// InnerLo/InnerHi. InnerLo/InnerHi hold the inner segment in both modes.
type Match struct {
	DocID            int
	L, R             int
	InnerLo, InnerHi int
}

// Engine answers queries against one loaded index.
type Engine[W wtype.Weight] struct {
	K      int
	Table  [][]cw.CW[W]
	Hasher Hasher[W]
	CalcTF func(freq, maxFreq int) W

	// Symmetric selects the corrected range-pairing behavior over the
	// original's asymmetric one (Open Question #1). Default false.
	Symmetric bool
}

// Signature computes the query's per-hash-function minimum: for each of
// the K hash functions, the smallest hash value over every token in the
// query (with its TF weight recomputed fresh per hash function, since TF
// depends only on occurrence rank within the query, not on hid).
func (e *Engine[W]) Signature(query []int) []W {
	sig := make([]W, e.K)
	freq := make(map[int]int, len(query))
	maxFreq := 0
	for _, t := range query {
		freq[t]++
		if freq[t] > maxFreq {
			maxFreq = freq[t]
		}
	}
	for t := range freq {
		freq[t] = 0
	}

	for hid := 0; hid < e.K; hid++ {
		var best W
		first := true
		for _, t := range query {
			freq[t]++
			tfv := e.CalcTF(freq[t], maxFreq)
			v := e.Hasher.Eval(hid, t, tfv)
			if first || v < best {
				best = v
				first = false
			}
		}
		sig[hid] = best
		for t := range freq {
			freq[t] = 0
		}
	}
	return sig
}

// Query runs a full containment search: compute the signature, collect
// every CW whose value matches it per hash function, group by document,
// and sweep each document's colliding CWs for threshold-satisfying ranges.
func (e *Engine[W]) Query(queryTokens []int, threshold float64) []Match {
	sig := e.Signature(queryTokens)

	collided := make(map[int][]cw.CW[W])
	for hid := 0; hid < e.K; hid++ {
		for _, rec := range e.Table[hid] {
			if rec.V == sig[hid] {
				collided[int(rec.T)] = append(collided[int(rec.T)], rec)
			}
		}
	}

	docIDs := make([]int, 0, len(collided))
	for id := range collided {
		docIDs = append(docIDs, id)
	}
	sort.Ints(docIDs)

	var results []Match
	for _, docID := range docIDs {
		for _, m := range e.outerScan(collided[docID], threshold) {
			m.DocID = docID
			results = append(results, m)
		}
	}
	return results
}

type axisUpdate struct {
	pos, idx, value int
}

// outerScan sweeps the c/d axis (the window's right-endpoint bound),
// tracking which CWs are simultaneously active. Wherever at least
// threshold*K of them overlap, it runs innerScan over the a/b axis
// (the window's left-endpoint bound) of just that active set.
func (e *Engine[W]) outerScan(cws []cw.CW[W], threshold float64) []Match {
	updates := make([]axisUpdate, 0, len(cws)*2)
	for i, rec := range cws {
		updates = append(updates, axisUpdate{pos: int(rec.C), idx: i, value: 1})
		updates = append(updates, axisUpdate{pos: int(rec.D) + 1, idx: i, value: -1})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].pos < updates[j].pos })

	need := float64(e.K)*threshold - eps
	ids := make(map[int]bool, len(cws))
	cnt := 0
	var results []Match

	for i, u := range updates {
		if i > 0 && u.pos != updates[i-1].pos {
			if float64(cnt) >= need {
				for _, rng := range e.innerScan(cws, ids, threshold) {
					if e.Symmetric {
						results = append(results, Match{L: updates[i-1].pos, R: u.pos - 1, InnerLo: rng[0], InnerHi: rng[1]})
					} else {
						results = append(results, Match{L: updates[i-1].pos, R: rng[1], InnerLo: rng[0], InnerHi: rng[1]})
					}
				}
			}
		}
		cnt += u.value
		if u.value > 0 {
			ids[u.idx] = true
		} else {
			delete(ids, u.idx)
		}
	}
	return results
}

// innerScan sweeps the a/b axis of the currently-active CW subset,
// returning every position range where at least threshold*K of them
// overlap.
func (e *Engine[W]) innerScan(cws []cw.CW[W], ids map[int]bool, threshold float64) [][2]int {
	updates := make([]axisUpdate, 0, len(ids)*2)
	for id := range ids {
		updates = append(updates, axisUpdate{pos: int(cws[id].A), value: 1})
		updates = append(updates, axisUpdate{pos: int(cws[id].B) + 1, value: -1})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].pos < updates[j].pos })

	need := float64(e.K)*threshold - eps
	cnt := 0
	var ranges [][2]int
	for i, u := range updates {
		if i > 0 && u.pos != updates[i-1].pos {
			if float64(cnt) >= need {
				ranges = append(ranges, [2]int{updates[i-1].pos, u.pos - 1})
			}
		}
		cnt += u.value
	}
	return ranges
}
