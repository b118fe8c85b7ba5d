package extent

import (
	"fmt"
)

// Extent is an axis aligned box in (i,j,k) index space stored as
// [loX, hiX, loY, hiY, loZ, hiZ]. Bounds are inclusive.
type Extent [6]int

// Empty is the canonical empty extent
var Empty = Extent{0, -1, 0, -1, 0, -1}

// New builds an extent from its six bounds
func New(loX, hiX, loY, hiY, loZ, hiZ int) Extent {
	return Extent{loX, hiX, loY, hiY, loZ, hiZ}
}

// Clamp intersects e with bound in place. The result may be empty (lo > hi
// on some axis), callers must check IsEmpty before sizing buffers with it.
func Clamp(e *Extent, bound Extent) {
	for i := 0; i < 3; i++ {
		lo, hi := 2*i, 2*i+1
		if e[lo] < bound[lo] {
			e[lo] = bound[lo]
		}
		if e[hi] > bound[hi] {
			e[hi] = bound[hi]
		}
	}
}

// Clamped returns a copy of e clamped to bound
func Clamped(e, bound Extent) Extent {
	Clamp(&e, bound)
	return e
}

// Intersect returns the common region of a and b and whether it is non-empty
func Intersect(a, b Extent) (Extent, bool) {
	out := Clamped(a, b)
	return out, !out.IsEmpty()
}

// Touch returns the region through which a and b are adjacent. Extents that
// share index planes intersect directly. Extents that abut without sharing
// (b starts one past the end of a) touch along the boundary layer of b.
func Touch(a, b Extent) (Extent, bool) {
	var out Extent
	for i := 0; i < 3; i++ {
		aLo, aHi := a.Axis(i)
		bLo, bHi := b.Axis(i)
		lo, hi := max(aLo, bLo), min(aHi, bHi)
		switch {
		case lo <= hi:
		case bLo == aHi+1:
			lo, hi = bLo, bLo
		case bHi == aLo-1:
			lo, hi = bHi, bHi
		default:
			return Empty, false
		}
		out.SetAxis(i, lo, hi)
	}
	return out, true
}

// IsEmpty reports whether any axis has lo > hi
func (e Extent) IsEmpty() bool {
	return e[0] > e[1] || e[2] > e[3] || e[4] > e[5]
}

// Axis returns the bounds of axis i
func (e Extent) Axis(i int) (lo, hi int) {
	return e[2*i], e[2*i+1]
}

// SetAxis sets the bounds of axis i
func (e *Extent) SetAxis(i, lo, hi int) {
	e[2*i], e[2*i+1] = lo, hi
}

// Size returns the number of index points along each axis, zero for an empty extent
func (e Extent) Size() [3]int {
	if e.IsEmpty() {
		return [3]int{}
	}
	return [3]int{e[1] - e[0] + 1, e[3] - e[2] + 1, e[5] - e[4] + 1}
}

// NumPoints returns the number of index points covered by e
func (e Extent) NumPoints() int {
	s := e.Size()
	return s[0] * s[1] * s[2]
}

// NumCells returns the number of cells covered by e when e is a node extent.
// Flat axes (a single plane of nodes) do not reduce the count.
func (e Extent) NumCells() int {
	if e.IsEmpty() {
		return 0
	}
	n := 1
	for _, s := range e.Size() {
		if s > 1 {
			n *= s - 1
		}
	}
	return n
}

// Contains reports whether other lies entirely within e. An empty extent is
// contained in everything.
func (e Extent) Contains(other Extent) bool {
	if other.IsEmpty() {
		return true
	}
	for i := 0; i < 3; i++ {
		lo, hi := e.Axis(i)
		oLo, oHi := other.Axis(i)
		if oLo < lo || oHi > hi {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether (i,j,k) lies in e
func (e Extent) ContainsPoint(i, j, k int) bool {
	return i >= e[0] && i <= e[1] && j >= e[2] && j <= e[3] && k >= e[4] && k <= e[5]
}

// Grow widens every non-flat axis of e by n on both ends. Flat axes (lo == hi)
// of a 2D or 1D grid stay flat.
func (e Extent) Grow(n int) Extent {
	for i := 0; i < 3; i++ {
		lo, hi := e.Axis(i)
		if lo == hi {
			continue
		}
		e.SetAxis(i, lo-n, hi+n)
	}
	return e
}

// Dimension returns the number of axes with more than one point
func (e Extent) Dimension() int {
	d := 0
	for _, s := range e.Size() {
		if s > 1 {
			d++
		}
	}
	return d
}

// Flat returns the flat index of point (i,j,k) in an array laid out over e
// with i varying fastest. It returns -1 for points outside e.
func (e Extent) Flat(i, j, k int) int {
	if !e.ContainsPoint(i, j, k) {
		return -1
	}
	s := e.Size()
	return (i - e[0]) + s[0]*((j-e[2])+s[1]*(k-e[4]))
}

// ForEach calls fn for every point of e in flat order
func (e Extent) ForEach(fn func(i, j, k int)) {
	if e.IsEmpty() {
		return
	}
	for k := e[4]; k <= e[5]; k++ {
		for j := e[2]; j <= e[3]; j++ {
			for i := e[0]; i <= e[1]; i++ {
				fn(i, j, k)
			}
		}
	}
}

func (e Extent) String() string {
	return fmt.Sprintf("[%d,%d %d,%d %d,%d]", e[0], e[1], e[2], e[3], e[4], e[5])
}
