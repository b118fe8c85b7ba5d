package neighbor

import (
	"fmt"

	"github.com/notargets/GridHalo/extent"
)

// Neighbor records the topological relation between a structured grid and
// one adjacent grid
type Neighbor struct {
	ID          int            // Neighbor block or rank id
	Overlap     extent.Extent  // Region where the two real extents touch
	Send        extent.Extent  // Points this grid sends to the neighbor
	Receive     extent.Extent  // Points this grid receives from the neighbor
	Orientation [3]Orientation // Per-axis relation of the neighbor to this grid
}

// New creates a neighbor with undefined orientation on all axes
func New(id int, overlap extent.Extent) *Neighbor {
	return NewWithOrientation(id, overlap, [3]Orientation{Undefined, Undefined, Undefined})
}

// NewWithOrientation creates a neighbor with a caller supplied orientation
func NewWithOrientation(id int, overlap extent.Extent, orient [3]Orientation) *Neighbor {
	return &Neighbor{
		ID:          id,
		Overlap:     overlap,
		Send:        overlap,
		Receive:     overlap,
		Orientation: orient,
	}
}

// ComputeSendAndReceiveExtent widens the overlap by n ghost layers according
// to the orientation and stores the clamped results in Send and Receive.
// Overlap and Orientation are not modified. Either result may come back
// empty, which means there is nothing to exchange with this neighbor.
func (nb *Neighbor) ComputeSendAndReceiveExtent(gridReal, neighborReal, whole extent.Extent, n int) {
	nb.Send, nb.Receive = Exchange(nb.Overlap, nb.Orientation, gridReal, neighborReal, whole, n)
}

// Exchange computes the send and receive extents for an overlap without
// touching any descriptor. A negative depth is treated as zero.
func Exchange(overlap extent.Extent, orient [3]Orientation,
	gridReal, neighborReal, whole extent.Extent, n int) (send, recv extent.Extent) {

	if n < 0 {
		n = 0
	}
	send, recv = overlap, overlap

	for i := 0; i < 3; i++ {
		lo, hi := 2*i, 2*i+1
		switch orient[i] {
		case Superset:
			send[lo] -= n
			send[hi] += n
		case SubsetHi, Hi:
			recv[hi] += n
			send[lo] -= n
		case SubsetLo, Lo:
			recv[lo] -= n
			send[hi] += n
		case SubsetBoth:
			recv[lo] -= n
			recv[hi] += n
			send[lo] -= n
			send[hi] += n
		default:
			// Undefined: nothing to widen on this axis
		}
	}

	extent.Clamp(&recv, neighborReal)
	extent.Clamp(&send, gridReal)
	extent.Clamp(&recv, whole)
	extent.Clamp(&send, whole)
	return
}

// HasExchange reports whether either direction carries data
func (nb *Neighbor) HasExchange() bool {
	return !nb.Send.IsEmpty() || !nb.Receive.IsEmpty()
}

func (nb *Neighbor) String() string {
	return fmt.Sprintf("neighbor %d overlap=%v send=%v recv=%v orient=[%v %v %v]",
		nb.ID, nb.Overlap, nb.Send, nb.Receive,
		nb.Orientation[0], nb.Orientation[1], nb.Orientation[2])
}
