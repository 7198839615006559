package builder

import (
	"sort"

	"ragalign/internal/cw"
	"ragalign/internal/wtype"
)

// SearchStrategy selects how MonotonicBuilder maintains its dominant
// interval set S.
type SearchStrategy int

const (
	// BinarySearch backs S with a splay tree (§4.8): O(log n) amortized.
	BinarySearch SearchStrategy = iota
	// LinearScan backs S with a flat sorted slice scanned linearly.
	LinearScan
)

func (s SearchStrategy) String() string {
	if s == BinarySearch {
		return "binary_search"
	}
	return "linear_scan"
}

type keyPair struct{ token, x int }

// MonotonicBuilder constructs CW tables by processing token occurrences in
// ascending hash-value order, each time discovering how far its window can
// expand against the already-built dominant intervals (§4.5).
type MonotonicBuilder[W wtype.Weight] struct {
	k, tokenNum int
	hasher      Hasher[W]
	calcTF      func(freq, maxFreq int) W
	scratch     *scratch
	mini        []W
	active      bool
	strategy    SearchStrategy
}

// NewMonotonicBuilder constructs a builder. active selects whether every
// occurrence rank becomes a key (false) or only ranks that introduce a new
// running-minimum hash value do (true, §4.5's "active" variant).
func NewMonotonicBuilder[W wtype.Weight](k, tokenNum int, hasher Hasher[W], calcTF func(freq, maxFreq int) W, active bool, strategy SearchStrategy) *MonotonicBuilder[W] {
	return &MonotonicBuilder[W]{
		k: k, tokenNum: tokenNum, hasher: hasher, calcTF: calcTF,
		scratch: newScratch(tokenNum), mini: make([]W, tokenNum),
		active: active, strategy: strategy,
	}
}

// generateKeys emits one (token, occurrenceRank) key per occurrence,
// sorted by hash value ascending. As a side effect, scratch.freq ends up
// holding each token's total per-document frequency.
func (b *MonotonicBuilder[W]) generateKeys(hid int, doc []int) ([]keyPair, int) {
	s := b.scratch
	for _, t := range doc {
		s.freq[t] = 0
	}
	maxFreq := 0
	for _, t := range doc {
		s.freq[t]++
		if s.freq[t] > maxFreq {
			maxFreq = s.freq[t]
		}
	}
	for _, t := range doc {
		s.freq[t] = 0
	}

	keys := make([]keyPair, 0, len(doc))
	for _, t := range doc {
		s.freq[t]++
		keys = append(keys, keyPair{token: t, x: s.freq[t]})
	}
	b.sortKeys(hid, keys, maxFreq)
	return keys, maxFreq
}

// generateActiveKeys is generateKeys restricted to occurrence ranks that
// strictly improve on the running minimum hash value seen so far for that
// token within the document.
func (b *MonotonicBuilder[W]) generateActiveKeys(hid int, doc []int) ([]keyPair, int) {
	s := b.scratch
	for _, t := range doc {
		s.freq[t] = 0
	}
	maxFreq := 0
	for _, t := range doc {
		s.freq[t]++
		if s.freq[t] > maxFreq {
			maxFreq = s.freq[t]
		}
	}
	for _, t := range doc {
		s.freq[t] = 0
	}

	keys := make([]keyPair, 0, len(doc))
	for _, t := range doc {
		s.freq[t]++
		x := s.freq[t]
		v := b.hasher.Eval(hid, t, b.calcTF(x, maxFreq))
		if x == 1 || v < b.mini[t] {
			b.mini[t] = v
			keys = append(keys, keyPair{token: t, x: x})
		}
	}
	b.sortKeys(hid, keys, maxFreq)
	return keys, maxFreq
}

// sortKeys evaluates each key's hash value once into a parallel slice and
// sorts by that slice, so the comparator never recomputes TF or the hash.
func (b *MonotonicBuilder[W]) sortKeys(hid int, keys []keyPair, maxFreq int) {
	vals := make([]W, len(keys))
	order := make([]int, len(keys))
	for i, k := range keys {
		vals[i] = b.hasher.Eval(hid, k.token, b.calcTF(k.x, maxFreq))
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return vals[order[i]] < vals[order[j]] })
	sorted := make([]keyPair, len(keys))
	for i, p := range order {
		sorted[i] = keys[p]
	}
	copy(keys, sorted)
}

// Build runs the Monotonic construction with whichever search strategy the
// builder was configured with.
func (b *MonotonicBuilder[W]) Build(docs [][]int) *Result[W] {
	res := &Result[W]{K: b.k, Table: make([][]cw.CW[W], b.k)}
	for hid := 0; hid < b.k; hid++ {
		for docID, doc := range docs {
			n := len(doc)
			if n == 0 {
				continue
			}
			var set domSet
			if b.strategy == BinarySearch {
				set = newSplayDomSet(n)
			} else {
				set = newLinearDomSet(n)
			}
			b.processDoc(hid, docID, doc, set, &res.Table[hid])
		}
	}
	return res
}

// processDoc runs the per-document sweep: for each key in ascending
// hash-value order, it slides an x-wide window of token occurrences and,
// wherever that window isn't already dominated by a wider existing
// interval, emits the CW rectangles needed to cover the gap and inserts
// the new interval into S.
func (b *MonotonicBuilder[W]) processDoc(hid, docID int, doc []int, set domSet, out *[]cw.CW[W]) {
	s := b.scratch
	s.buildNext(doc)

	var keys []keyPair
	var maxFreq int
	if b.active {
		keys, maxFreq = b.generateActiveKeys(hid, doc)
	} else {
		keys, maxFreq = b.generateKeys(hid, doc)
	}

	for _, key := range keys {
		t, x := key.token, key.x
		v := b.hasher.Eval(hid, t, b.calcTF(x, maxFreq))
		total := s.freq[t]

		var keysStart, keysEnd int
		for j := 0; j < total-x+1; j++ {
			if j == 0 {
				keysStart = s.first[t]
				keysEnd = s.first[t]
				for z := 1; z < x; z++ {
					keysEnd = s.next[keysEnd]
				}
			} else {
				keysStart = s.next[keysStart]
				keysEnd = s.next[keysEnd]
			}

			ceilX := set.CeilX(keysStart)
			floorY := set.FloorY(keysEnd)
			if floorY >= ceilX {
				continue
			}

			dominated := set.Range(floorY, ceilX)
			bPos, cPos := keysStart, keysEnd
			for i := 0; i < len(dominated)-1; i++ {
				cur, nxt := dominated[i], dominated[i+1]
				a := cur.X + 1
				d := nxt.Y - 1
				if cur.X <= keysStart && cur.Y >= keysEnd {
					set.Remove(cur.X)
				}
				*out = append(*out, cw.New(docID, v, a, bPos, cPos, d))
				cPos = nxt.Y
			}
			last := dominated[len(dominated)-1]
			if last.X <= keysStart && last.Y >= keysEnd {
				set.Remove(last.X)
			}
			set.Insert(keysStart, keysEnd)
		}
	}
}
