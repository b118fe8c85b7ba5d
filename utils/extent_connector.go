package utils

import (
	"fmt"

	"github.com/notargets/GridHalo/extent"
	"github.com/notargets/GridHalo/partitions"
)

// ExtentConnector manages pick and place indices for the ghost exchange of a
// structured layout. Every block's array is laid out over its ghosted extent.
type ExtentConnector struct {
	NumBlocks int

	// Extent each block's array is laid out over
	Extents []extent.Extent

	// Points owned by each block, never overwritten by an exchange
	Reals []extent.Extent

	// Pick/Place indices per block
	PickIndices  [][]PickBuffer  // [sourceBlock][targetBlock]
	PlaceIndices [][]PlaceBuffer // [targetBlock][sourceBlock]
}

// PickBuffer contains indices for gathering values to send
type PickBuffer struct {
	Indices     []int // Flat indices into the source block's array
	TargetBlock int
}

// PlaceBuffer contains indices for scattering received values
type PlaceBuffer struct {
	Indices     []int // Flat indices into the target block's array
	SourceBlock int
}

// NewExtentConnector creates a connector from a layout and its exchange plan
func NewExtentConnector(layout *partitions.Layout, plan *partitions.ExchangePlan) (*ExtentConnector, error) {
	if len(layout.Blocks) == 0 {
		return nil, fmt.Errorf("layout has no blocks")
	}

	nb := len(layout.Blocks)
	ec := &ExtentConnector{
		NumBlocks: nb,
		Extents:   make([]extent.Extent, nb),
		Reals:     make([]extent.Extent, nb),
	}
	for i, b := range layout.Blocks {
		ec.Reals[i] = b.Real
		ec.Extents[i] = layout.GhostedExtent(i, plan.GhostLayers)
	}

	ec.initializeBuffers()

	if err := ec.BuildIndices(plan); err != nil {
		return nil, err
	}

	return ec, nil
}

// initializeBuffers creates empty pick and place buffer structures
func (ec *ExtentConnector) initializeBuffers() {
	ec.PickIndices = make([][]PickBuffer, ec.NumBlocks)
	ec.PlaceIndices = make([][]PlaceBuffer, ec.NumBlocks)

	for p := 0; p < ec.NumBlocks; p++ {
		ec.PickIndices[p] = make([]PickBuffer, ec.NumBlocks)
		ec.PlaceIndices[p] = make([]PlaceBuffer, ec.NumBlocks)

		for q := 0; q < ec.NumBlocks; q++ {
			ec.PickIndices[p][q] = PickBuffer{TargetBlock: q}
			ec.PlaceIndices[p][q] = PlaceBuffer{SourceBlock: q}
		}
	}
}

// BuildIndices constructs pick and place indices from the receive extents of
// the plan. Each target only places into its ghost points: the receive
// extent is cut to the target's array and the target's own real points are
// skipped.
func (ec *ExtentConnector) BuildIndices(plan *partitions.ExchangePlan) error {
	for _, e := range plan.Entries {
		p, q := e.BlockID, e.NeighborID
		if p < 0 || p >= ec.NumBlocks || q < 0 || q >= ec.NumBlocks {
			return fmt.Errorf("plan entry (%d,%d) outside %d blocks", p, q, ec.NumBlocks)
		}

		region, ok := extent.Intersect(e.Receive, ec.Extents[p])
		if !ok {
			continue
		}
		if !ec.Reals[q].Contains(region) {
			return fmt.Errorf("block %d receives %v, not owned by block %d", p, region, q)
		}

		region.ForEach(func(i, j, k int) {
			if ec.Reals[p].ContainsPoint(i, j, k) {
				return
			}
			// Source block q sends this point to block p
			ec.PickIndices[q][p].Indices = append(ec.PickIndices[q][p].Indices,
				ec.Extents[q].Flat(i, j, k))
			// Block p places the received value at the same global point
			ec.PlaceIndices[p][q].Indices = append(ec.PlaceIndices[p][q].Indices,
				ec.Extents[p].Flat(i, j, k))
		})
	}

	return nil
}

// GetPickIndices returns pick indices for sending from source to target block
func (ec *ExtentConnector) GetPickIndices(sourceBlock, targetBlock int) []int {
	if sourceBlock < 0 || sourceBlock >= ec.NumBlocks ||
		targetBlock < 0 || targetBlock >= ec.NumBlocks {
		return nil
	}
	return ec.PickIndices[sourceBlock][targetBlock].Indices
}

// GetPlaceIndices returns place indices for target block receiving from source
func (ec *ExtentConnector) GetPlaceIndices(targetBlock, sourceBlock int) []int {
	if targetBlock < 0 || targetBlock >= ec.NumBlocks ||
		sourceBlock < 0 || sourceBlock >= ec.NumBlocks {
		return nil
	}
	return ec.PlaceIndices[targetBlock][sourceBlock].Indices
}

// Verify checks index validity and that every ghost point is filled
func (ec *ExtentConnector) Verify() error {
	// Verify 1: Local validity - all indices are within bounds
	for p := 0; p < ec.NumBlocks; p++ {
		size := ec.Extents[p].NumPoints()
		for q := 0; q < ec.NumBlocks; q++ {
			for _, idx := range ec.PickIndices[p][q].Indices {
				if idx < 0 || idx >= size {
					return fmt.Errorf("invalid pick index %d for block %d (max %d)", idx, p, size-1)
				}
			}
			for _, idx := range ec.PlaceIndices[p][q].Indices {
				if idx < 0 || idx >= size {
					return fmt.Errorf("invalid place index %d for block %d (max %d)", idx, p, size-1)
				}
			}
		}
	}

	// Verify 2: Correspondence - pick and place arrays have same length
	for p := 0; p < ec.NumBlocks; p++ {
		for q := 0; q < ec.NumBlocks; q++ {
			pickLen := len(ec.PickIndices[p][q].Indices)
			placeLen := len(ec.PlaceIndices[q][p].Indices)
			if pickLen != placeLen {
				return fmt.Errorf("length mismatch: pick[%d][%d]=%d, place[%d][%d]=%d",
					p, q, pickLen, q, p, placeLen)
			}
		}
	}

	// Verify 3: Coverage - every ghost point of every block is placed
	for p := 0; p < ec.NumBlocks; p++ {
		filled := make([]bool, ec.Extents[p].NumPoints())
		for q := 0; q < ec.NumBlocks; q++ {
			for _, idx := range ec.PlaceIndices[p][q].Indices {
				filled[idx] = true
			}
		}
		var missing int
		ec.Extents[p].ForEach(func(i, j, k int) {
			if !ec.Reals[p].ContainsPoint(i, j, k) && !filled[ec.Extents[p].Flat(i, j, k)] {
				missing++
			}
		})
		if missing > 0 {
			return fmt.Errorf("coverage error: block %d has %d unfilled ghost points", p, missing)
		}
	}

	return nil
}

// Exchange copies real values from every source block into the ghost points
// of its targets
func (ec *ExtentConnector) Exchange(pa *partitions.PartitionedArray) error {
	if len(pa.Extents) != ec.NumBlocks {
		return fmt.Errorf("array has %d blocks, connector %d", len(pa.Extents), ec.NumBlocks)
	}
	for p := 0; p < ec.NumBlocks; p++ {
		if pa.Extents[p] != ec.Extents[p] {
			return fmt.Errorf("block %d: array extent %v, connector extent %v", p, pa.Extents[p], ec.Extents[p])
		}
	}

	for q := 0; q < ec.NumBlocks; q++ {
		src := pa.GetPartitionData(q)
		for p := 0; p < ec.NumBlocks; p++ {
			pick := ec.PickIndices[q][p].Indices
			if len(pick) == 0 {
				continue
			}
			dst := pa.GetPartitionData(p)
			place := ec.PlaceIndices[p][q].Indices
			for n, idx := range pick {
				dst[place[n]] = src[idx]
			}
		}
	}
	return nil
}

// GhostPointCount returns the number of points of block p outside its real
// extent
func (ec *ExtentConnector) GhostPointCount(p int) int {
	return ec.Extents[p].NumPoints() - ec.Reals[p].NumPoints()
}
