package builder

import (
	"ragalign/internal/cw"
	"ragalign/internal/wtype"

	"github.com/gammazero/deque"
)

// AllAlignBuilder constructs CW tables with the recursive "always align to
// the minimum" strategy (§4.4): at every step it finds the position with
// the smallest hash value in the current range and emits the widest
// rectangle consistent with that minimum before recursing on what the
// rectangle didn't cover.
type AllAlignBuilder[W wtype.Weight] struct {
	k, tokenNum int
	hasher      Hasher[W]
	calcTF      func(freq, maxFreq int) W
	scratch     *scratch
}

// NewAllAlignBuilder constructs a builder. calcTF computes the TF-weighted
// value for a raw occurrence rank given the document's max frequency.
func NewAllAlignBuilder[W wtype.Weight](k, tokenNum int, hasher Hasher[W], calcTF func(freq, maxFreq int) W) *AllAlignBuilder[W] {
	return &AllAlignBuilder[W]{k: k, tokenNum: tokenNum, hasher: hasher, calcTF: calcTF, scratch: newScratch(tokenNum)}
}

// Build runs the recursive construction over every document and hash
// function.
func (b *AllAlignBuilder[W]) Build(docs [][]int) *Result[W] {
	res := &Result[W]{K: b.k, Table: make([][]cw.CW[W], b.k)}
	for hid := 0; hid < b.k; hid++ {
		for docID, doc := range docs {
			n := len(doc)
			if n == 0 {
				continue
			}
			b.scratch.buildLinks(doc)
			maxFreq := maxFreqOf(doc, b.scratch.freq)
			ctx := &allAlignWork[W]{hid: hid, docID: docID, doc: doc, maxFreq: maxFreq, b: b, out: &res.Table[hid]}
			ctx.run(0, n-1, n-1)
		}
	}
	return res
}

type allAlignWork[W wtype.Weight] struct {
	hid, docID int
	doc        []int
	maxFreq    int
	b          *AllAlignBuilder[W]
	out        *[]cw.CW[W]
}

// run finds the argmin hash position in [l,r], emits the widest rectangle
// whose right edge is r and whose min-hash-defining position is that
// argmin, then recurses on what remains of the range.
func (c *allAlignWork[W]) run(l, le, r int) {
	if r < l {
		return
	}
	s := c.b.scratch
	doc := c.doc

	var mn W
	var cpos, x int
	first := true
	for i := l; i <= r; i++ {
		t := doc[i]
		s.freq[t]++
		tfv := c.b.calcTF(s.freq[t], c.maxFreq)
		v := c.b.hasher.Eval(c.hid, t, tfv)
		if first || v < mn {
			mn = v
			cpos = i
			x = s.freq[t]
			first = false
		}
	}
	for i := l; i <= r; i++ {
		s.freq[doc[i]]--
	}

	bPos := cpos
	for s.rnext[bPos] >= l {
		bPos = s.rnext[bPos]
	}

	for cpos <= r {
		a := l
		if s.rnext[bPos]+1 > a {
			a = s.rnext[bPos] + 1
		}

		if le > bPos {
			*c.out = append(*c.out, cw.New(c.docID, mn, a, bPos, cpos, r))
			if x == 1 {
				c.run(a, bPos-1, cpos-1)
			} else {
				c.run(a, bPos, cpos-1)
			}
		} else {
			*c.out = append(*c.out, cw.New(c.docID, mn, a, le, cpos, r))
			c.run(a, le, cpos-1)
			return
		}

		if s.next[cpos] > r {
			c.run(bPos+1, le, r)
			return
		}
		bPos = s.next[bPos]
		cpos = s.next[cpos]
	}
}

// allAlignFrame is one suspended activation of run(), used by BuildIterative
// to replace the native call stack with an explicit one.
type allAlignFrame[W wtype.Weight] struct {
	l, le, r   int
	b, cpos, x int
	mn         W
	resume     bool
}

// BuildIterative behaves identically to Build but replaces run()'s native
// recursion with an explicit stack backed by a deque, per the design notes:
// a pathological document (one token repeated n times collapses every
// range to a single argmin) can otherwise recurse to a depth proportional
// to document length.
func (b *AllAlignBuilder[W]) BuildIterative(docs [][]int) *Result[W] {
	res := &Result[W]{K: b.k, Table: make([][]cw.CW[W], b.k)}
	for hid := 0; hid < b.k; hid++ {
		for docID, doc := range docs {
			n := len(doc)
			if n == 0 {
				continue
			}
			b.scratch.buildLinks(doc)
			maxFreq := maxFreqOf(doc, b.scratch.freq)
			b.runIterative(hid, docID, doc, maxFreq, &res.Table[hid])
		}
	}
	return res
}

func (b *AllAlignBuilder[W]) runIterative(hid, docID int, doc []int, maxFreq int, out *[]cw.CW[W]) {
	s := b.scratch
	var stack deque.Deque[allAlignFrame[W]]
	stack.PushBack(allAlignFrame[W]{l: 0, le: len(doc) - 1, r: len(doc) - 1})

	for stack.Len() > 0 {
		fr := stack.PopBack()

		if !fr.resume {
			if fr.r < fr.l {
				continue
			}
			var mn W
			var cpos, x int
			first := true
			for i := fr.l; i <= fr.r; i++ {
				t := doc[i]
				s.freq[t]++
				tfv := b.calcTF(s.freq[t], maxFreq)
				v := b.hasher.Eval(hid, t, tfv)
				if first || v < mn {
					mn = v
					cpos = i
					x = s.freq[t]
					first = false
				}
			}
			for i := fr.l; i <= fr.r; i++ {
				s.freq[doc[i]]--
			}
			bb := cpos
			for s.rnext[bb] >= fr.l {
				bb = s.rnext[bb]
			}
			fr.b, fr.cpos, fr.x, fr.mn = bb, cpos, x, mn
		}

		if fr.cpos > fr.r {
			continue
		}

		a := fr.l
		if s.rnext[fr.b]+1 > a {
			a = s.rnext[fr.b] + 1
		}

		if fr.le > fr.b {
			*out = append(*out, cw.New(docID, fr.mn, a, fr.b, fr.cpos, fr.r))
			childLe := fr.b
			if fr.x == 1 {
				childLe = fr.b - 1
			}

			if s.next[fr.cpos] > fr.r {
				stack.PushBack(allAlignFrame[W]{l: fr.b + 1, le: fr.le, r: fr.r})
				stack.PushBack(allAlignFrame[W]{l: a, le: childLe, r: fr.cpos - 1})
				continue
			}

			next := fr
			next.b = s.next[fr.b]
			next.cpos = s.next[fr.cpos]
			next.resume = true
			stack.PushBack(next)
			stack.PushBack(allAlignFrame[W]{l: a, le: childLe, r: fr.cpos - 1})
		} else {
			*out = append(*out, cw.New(docID, fr.mn, a, fr.le, fr.cpos, fr.r))
			stack.PushBack(allAlignFrame[W]{l: a, le: fr.le, r: fr.cpos - 1})
		}
	}
}
