package neighbor

import (
	"github.com/notargets/GridHalo/extent"
)

// Orientation describes how a neighbor's real extent relates to this grid's
// real extent along one axis
type Orientation int

const (
	Undefined  Orientation = iota // No relation, or identical span (one-to-one)
	Lo                            // Neighbor extends further low
	Hi                            // Neighbor extends further high
	SubsetLo                      // This grid is inside the neighbor, sharing the high end
	SubsetHi                      // This grid is inside the neighbor, sharing the low end
	SubsetBoth                    // This grid is strictly inside the neighbor
	Superset                      // Neighbor is inside this grid
)

func (o Orientation) String() string {
	switch o {
	case Undefined:
		return "UNDEFINED"
	case Lo:
		return "LO"
	case Hi:
		return "HI"
	case SubsetLo:
		return "SUBSET_LO"
	case SubsetHi:
		return "SUBSET_HI"
	case SubsetBoth:
		return "SUBSET_BOTH"
	case Superset:
		return "SUPERSET"
	default:
		return "UNKNOWN"
	}
}

// ClassifyAxis compares the span a of this grid with the span b of a
// neighbor along one axis.
//
// Tie breaking: identical spans are Undefined. A span contained in the other
// that shares exactly one end is a one-sided subset, named after the side
// where the neighbor extends further. A neighbor inside this grid is a
// Superset whether or not it shares an end. Partial overlaps and disjoint
// spans are Hi when the neighbor starts above this grid, otherwise Lo.
func ClassifyAxis(a, b [2]int) Orientation {
	switch {
	case a == b:
		return Undefined
	case b[0] <= a[0] && a[1] <= b[1]:
		// a inside b
		switch {
		case b[0] < a[0] && a[1] < b[1]:
			return SubsetBoth
		case a[0] == b[0]:
			return SubsetHi
		default:
			return SubsetLo
		}
	case a[0] <= b[0] && b[1] <= a[1]:
		return Superset
	case b[0] > a[0]:
		return Hi
	default:
		return Lo
	}
}

// Classify derives the orientation on all three axes
func Classify(gridReal, neighborReal extent.Extent) (orient [3]Orientation) {
	for i := 0; i < 3; i++ {
		aLo, aHi := gridReal.Axis(i)
		bLo, bHi := neighborReal.Axis(i)
		orient[i] = ClassifyAxis([2]int{aLo, aHi}, [2]int{bLo, bHi})
	}
	return
}
