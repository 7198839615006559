package builder

import "ragalign/internal/splay"

// domPair is an (x,y) element of the Monotonic builder's dominant-interval
// set S: x is a window's left-boundary marker, y its right-boundary marker.
type domPair struct{ X, Y int }

// domSet is the dynamic set S both Monotonic search strategies maintain —
// backed by a splay tree for BinarySearch, a sorted slice scanned linearly
// for LinearScan. Keeping one interface lets processDoc share its
// sweep logic across both backends instead of duplicating it.
type domSet interface {
	Insert(x, y int)
	Remove(x int) bool
	// CeilX returns the x of the smallest entry with x' >= x.
	CeilX(x int) int
	// FloorY returns the x of the entry with the largest y' <= y.
	FloorY(y int) int
	// Range returns every entry with lo <= x <= hi, ascending by x.
	Range(lo, hi int) []domPair
}

type splayDomSet struct{ t *splay.Tree }

func newSplayDomSet(n int) splayDomSet {
	t := splay.New(n + 2)
	t.Insert(-1, -1)
	t.Insert(n, n)
	return splayDomSet{t: t}
}

func (s splayDomSet) Insert(x, y int) { s.t.Insert(x, y) }
func (s splayDomSet) Remove(x int) bool { return s.t.Remove(x) }

func (s splayDomSet) CeilX(x int) int {
	rx, _, _ := s.t.SearchByX(x)
	return rx
}

func (s splayDomSet) FloorY(y int) int {
	rx, _, _ := s.t.SearchByY(y)
	return rx
}

func (s splayDomSet) Range(lo, hi int) []domPair {
	ps := s.t.Range(lo, hi)
	out := make([]domPair, len(ps))
	for i, p := range ps {
		out[i] = domPair{X: p.X, Y: p.Y}
	}
	return out
}

// linearDomSet is the O(n)-per-operation alternative: a sorted slice
// scanned linearly rather than binary-searched, matching the original
// LINEAR_SCAN strategy's intent (a simple, cache-friendly set for small
// documents where a splay tree's pointer chasing loses to a flat scan).
type linearDomSet struct{ items []domPair }

func newLinearDomSet(n int) *linearDomSet {
	return &linearDomSet{items: []domPair{{X: -1, Y: -1}, {X: n, Y: n}}}
}

func (s *linearDomSet) Insert(x, y int) {
	for i, it := range s.items {
		if it.X == x {
			return
		}
		if it.X > x {
			s.items = append(s.items, domPair{})
			copy(s.items[i+1:], s.items[i:])
			s.items[i] = domPair{X: x, Y: y}
			return
		}
	}
	s.items = append(s.items, domPair{X: x, Y: y})
}

func (s *linearDomSet) Remove(x int) bool {
	for i, it := range s.items {
		if it.X == x {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func (s *linearDomSet) CeilX(x int) int {
	for _, it := range s.items {
		if it.X >= x {
			return it.X
		}
	}
	return s.items[len(s.items)-1].X
}

func (s *linearDomSet) FloorY(y int) int {
	best := s.items[0].X
	for _, it := range s.items {
		if it.Y <= y {
			best = it.X
		}
	}
	return best
}

func (s *linearDomSet) Range(lo, hi int) []domPair {
	out := make([]domPair, 0, len(s.items))
	for _, it := range s.items {
		if it.X >= lo && it.X <= hi {
			out = append(out, it)
		}
	}
	return out
}
