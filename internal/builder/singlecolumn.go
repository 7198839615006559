package builder

import (
	"ragalign/internal/cw"
	"ragalign/internal/wtype"
)

// SingleColumnBuilder constructs CW tables by sweeping a fixed left
// endpoint i across the document and splitting the column into
// constant-min-hash runs over the right endpoint d (§4.6). It emits more
// (narrower) rectangles than AllAlign or Monotonic but needs no auxiliary
// structure beyond a frequency table.
type SingleColumnBuilder[W wtype.Weight] struct {
	k, tokenNum int
	hasher      Hasher[W]
	calcTF      func(freq, maxFreq int) W
	scratch     *scratch
}

// NewSingleColumnBuilder constructs a builder.
func NewSingleColumnBuilder[W wtype.Weight](k, tokenNum int, hasher Hasher[W], calcTF func(freq, maxFreq int) W) *SingleColumnBuilder[W] {
	return &SingleColumnBuilder[W]{k: k, tokenNum: tokenNum, hasher: hasher, calcTF: calcTF, scratch: newScratch(tokenNum)}
}

// Build runs the single-column construction over every document and hash
// function.
func (b *SingleColumnBuilder[W]) Build(docs [][]int) *Result[W] {
	res := &Result[W]{K: b.k, Table: make([][]cw.CW[W], b.k)}
	s := b.scratch

	for hid := 0; hid < b.k; hid++ {
		for docID, doc := range docs {
			n := len(doc)
			if n == 0 {
				continue
			}
			maxFreq := maxFreqOf(doc, s.freq)
			out := &res.Table[hid]

			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					s.freq[doc[j]] = 0
				}

				c := i
				v := b.hasher.Eval(hid, doc[i], b.calcTF(1, maxFreq))
				s.freq[doc[i]]++

				for d := i; d < n-1; d++ {
					s.freq[doc[d+1]]++
					newTF := b.calcTF(s.freq[doc[d+1]], maxFreq)
					if nv := b.hasher.Eval(hid, doc[d+1], newTF); nv < v {
						*out = append(*out, cw.New(docID, v, i, i, c, d))
						c = d + 1
						v = nv
					}
				}
				*out = append(*out, cw.New(docID, v, i, i, c, n-1))
			}
		}
	}
	return res
}
