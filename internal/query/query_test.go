package query

import (
	"testing"

	"ragalign/internal/cw"
)

// constHasher gives every token the same value per hash function, so
// signature and collision behavior are easy to predict by hand.
type constHasher struct{ perHid []int }

func (h *constHasher) Eval(hid, token int, weight int) int { return h.perHid[hid] }

func calcTF(freq, maxFreq int) int { return freq }

func TestSignatureIsPerHidMinimum(t *testing.T) {
	h := &constHasher{perHid: []int{5, 9}}
	eng := &Engine[int]{K: 2, Hasher: h, CalcTF: calcTF}
	sig := eng.Signature([]int{1, 2, 3})
	if sig[0] != 5 || sig[1] != 9 {
		t.Fatalf("Signature = %v, want [5 9]", sig)
	}
}

func TestQueryFindsExactMatch(t *testing.T) {
	h := &constHasher{perHid: []int{1, 1}}
	table := [][]cw.CW[int]{
		{cw.New(0, 1, 0, 0, 0, 9)},
		{cw.New(0, 1, 0, 0, 0, 9)},
	}
	eng := &Engine[int]{K: 2, Table: table, Hasher: h, CalcTF: calcTF}
	matches := eng.Query([]int{7}, 1.0)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	// Default (asymmetric) pairing: L is the outer segment's start (c=0), R
	// is the inner segment's end (b=0).
	if matches[0].DocID != 0 || matches[0].L != 0 || matches[0].R != 0 {
		t.Fatalf("match = %+v, want doc=0 range=[0,0]", matches[0])
	}
}

func TestQueryThresholdExcludesPartialOverlap(t *testing.T) {
	h := &constHasher{perHid: []int{1, 1, 1}}
	// Only 1 of 3 hash functions has a matching CW for this doc.
	table := [][]cw.CW[int]{
		{cw.New(0, 1, 0, 0, 0, 9)},
		{cw.New(0, 2, 0, 0, 0, 9)}, // different value, won't match signature
		{cw.New(0, 2, 0, 0, 0, 9)},
	}
	eng := &Engine[int]{K: 3, Table: table, Hasher: h, CalcTF: calcTF}
	matches := eng.Query([]int{7}, 0.5) // needs >= 1.5 of 3 functions
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want 0 below threshold: %+v", len(matches), matches)
	}
}

func TestSymmetricVsAsymmetricRangePairing(t *testing.T) {
	h := &constHasher{perHid: []int{1, 1}}
	// Two CWs per hash function with staggered outer/inner ranges so the
	// symmetric and asymmetric modes disagree on what gets reported.
	table := [][]cw.CW[int]{
		{cw.New(0, 1, 0, 2, 0, 5), cw.New(0, 1, 3, 6, 3, 8)},
		{cw.New(0, 1, 0, 2, 0, 5), cw.New(0, 1, 3, 6, 3, 8)},
	}
	asym := &Engine[int]{K: 2, Table: table, Hasher: h, CalcTF: calcTF, Symmetric: false}
	sym := &Engine[int]{K: 2, Table: table, Hasher: h, CalcTF: calcTF, Symmetric: true}

	asymMatches := asym.Query([]int{1}, 1.0)
	symMatches := sym.Query([]int{1}, 1.0)
	if len(asymMatches) == 0 || len(symMatches) == 0 {
		t.Fatal("expected at least one match in both modes")
	}
	for _, m := range symMatches {
		if m.InnerLo == 0 && m.InnerHi == 0 {
			t.Errorf("symmetric match should populate InnerLo/InnerHi: %+v", m)
		}
	}
}
