package partitions

import (
	"fmt"
	"math"

	"cogentcore.org/core/base/keylist"
	"github.com/notargets/GridHalo/dataset"
	"github.com/notargets/GridHalo/extent"
	"github.com/notargets/GridHalo/neighbor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// NeighborList holds the neighbors of a block keyed by neighbor block id, in
// discovery order
type NeighborList = keylist.List[int, *neighbor.Neighbor]

// Block is one structured sub-domain of the decomposed grid
type Block struct {
	ID   int
	Rank int // Owning process

	// Real (non-ghost) index extent owned by this block
	Real extent.Extent

	// Per-axis position of the block in the split grid
	Coords [3]int

	Neighbors *NeighborList
}

// Layout manages the complete structured decomposition
type Layout struct {
	// Global index extent before decomposition
	Whole extent.Extent

	Blocks   []Block
	NumRanks int

	// Consecutive blocks share one index plane (node centered decomposition)
	SharedBoundary bool

	// Requested ghost depth used by the exchange plan
	GhostLayers int

	// Geometry of the emitted datasets
	BlockType dataset.Type
	Origin    r3.Vec
	Spacing   r3.Vec
}

// PartitionedArray represents field data distributed across blocks, each
// block stored over its ghosted extent
type PartitionedArray struct {
	// Contiguous global storage for all blocks
	// Layout: [Block 0 Data][Block 1 Data]...[Block N-1 Data]
	GlobalData []float64

	// Block b's data starts at GlobalData[Offsets[b]]
	Offsets []int

	// Extent each block's slice is laid out over
	Extents []extent.Extent
}

// LayoutStats summarizes load balance across ranks
type LayoutStats struct {
	NumBlocks int
	NumRanks  int
	MinPoints float64
	MaxPoints float64
	AvgPoints float64
	Imbalance float64 // MaxPoints / AvgPoints
}

// GetBlock returns the block with the given id, nil when out of range
func (l *Layout) GetBlock(id int) *Block {
	if id < 0 || id >= len(l.Blocks) {
		return nil
	}
	return &l.Blocks[id]
}

// BlocksOnRank returns the ids of the blocks owned by rank
func (l *Layout) BlocksOnRank(rank int) []int {
	var ids []int
	for _, b := range l.Blocks {
		if b.Rank == rank {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// GhostedExtent is the real extent of a block grown by n layers and clamped
// to the whole extent. It is the extent arrays with ghost layers are
// allocated over.
func (l *Layout) GhostedExtent(id, n int) extent.Extent {
	b := l.GetBlock(id)
	if b == nil {
		return extent.Empty
	}
	return extent.Clamped(b.Real.Grow(n), l.Whole)
}

// ValidateLayout checks that blocks tile the whole extent
func (l *Layout) ValidateLayout() error {
	if l.Whole.IsEmpty() {
		return fmt.Errorf("empty whole extent %v", l.Whole)
	}
	covered := 0
	for i, b := range l.Blocks {
		if b.ID != i {
			return fmt.Errorf("block %d stored at index %d", b.ID, i)
		}
		if b.Rank < 0 || b.Rank >= l.NumRanks {
			return fmt.Errorf("block %d: rank %d outside [0,%d)", b.ID, b.Rank, l.NumRanks)
		}
		if b.Real.IsEmpty() {
			return fmt.Errorf("block %d: empty real extent %v", b.ID, b.Real)
		}
		if !l.Whole.Contains(b.Real) {
			return fmt.Errorf("block %d: extent %v outside whole extent %v", b.ID, b.Real, l.Whole)
		}
		if l.SharedBoundary {
			if b.Real.Dimension() != l.Whole.Dimension() {
				return fmt.Errorf("block %d: extent %v is degenerate", b.ID, b.Real)
			}
			covered += b.Real.NumCells()
		} else {
			covered += b.Real.NumPoints()
		}
	}

	// Blocks may only share lower dimensional pieces
	for i := range l.Blocks {
		for j := i + 1; j < len(l.Blocks); j++ {
			common, ok := extent.Intersect(l.Blocks[i].Real, l.Blocks[j].Real)
			if !ok {
				continue
			}
			if !l.SharedBoundary || common.Dimension() == l.Whole.Dimension() {
				return fmt.Errorf("blocks %d and %d overlap on %v", i, j, common)
			}
		}
	}

	want := l.Whole.NumPoints()
	if l.SharedBoundary {
		want = l.Whole.NumCells()
	}
	if covered != want {
		return fmt.Errorf("blocks cover %d of %d", covered, want)
	}
	return l.validateGhostDepth()
}

// validateGhostDepth checks that every ghost layer comes from an adjacent
// block. Along an axis a block can feed ghosts no deeper than its own width,
// counted in cells when boundaries are shared and in points otherwise. Axes
// the block spans completely never feed ghosts.
func (l *Layout) validateGhostDepth() error {
	if l.GhostLayers < 0 {
		return fmt.Errorf("negative ghost layer count %d", l.GhostLayers)
	}
	for _, b := range l.Blocks {
		for axis := 0; axis < 3; axis++ {
			lo, hi := b.Real.Axis(axis)
			wlo, whi := l.Whole.Axis(axis)
			if lo == wlo && hi == whi {
				continue
			}
			width := hi - lo + 1
			if l.SharedBoundary {
				width = hi - lo
			}
			if l.GhostLayers > width {
				return fmt.Errorf("block %d: %d ghost layers exceed its width %d on axis %d",
					b.ID, l.GhostLayers, width, axis)
			}
		}
	}
	return nil
}

// Statistics computes load balance metrics over the points owned per rank
func (l *Layout) Statistics() LayoutStats {
	perRank := make([]float64, l.NumRanks)
	for _, b := range l.Blocks {
		perRank[b.Rank] += float64(b.Real.NumPoints())
	}
	stats := LayoutStats{
		NumBlocks: len(l.Blocks),
		NumRanks:  l.NumRanks,
	}
	if len(perRank) == 0 {
		return stats
	}
	stats.MinPoints = floats.Min(perRank)
	stats.MaxPoints = floats.Max(perRank)
	stats.AvgPoints = floats.Sum(perRank) / float64(len(perRank))
	if stats.AvgPoints > 0 {
		stats.Imbalance = stats.MaxPoints / stats.AvgPoints
	} else {
		stats.Imbalance = math.NaN()
	}
	return stats
}

// Methods for PartitionedArray

// AllocatePartitionedArray creates storage for one field over every block's
// ghosted extent
func AllocatePartitionedArray(l *Layout) *PartitionedArray {
	offsets := make([]int, len(l.Blocks)+1)
	extents := make([]extent.Extent, len(l.Blocks))
	for i := range l.Blocks {
		extents[i] = l.GhostedExtent(i, l.GhostLayers)
		offsets[i+1] = offsets[i] + extents[i].NumPoints()
	}
	return &PartitionedArray{
		GlobalData: make([]float64, offsets[len(l.Blocks)]),
		Offsets:    offsets,
		Extents:    extents,
	}
}

// GetPartitionData returns a slice for block id's data
func (pa *PartitionedArray) GetPartitionData(id int) []float64 {
	if id < 0 || id >= len(pa.Offsets)-1 {
		return nil
	}
	return pa.GlobalData[pa.Offsets[id]:pa.Offsets[id+1]]
}

// At returns the value of block id at point (i,j,k)
func (pa *PartitionedArray) At(id, i, j, k int) float64 {
	return pa.GetPartitionData(id)[pa.Extents[id].Flat(i, j, k)]
}

// Set stores the value of block id at point (i,j,k)
func (pa *PartitionedArray) Set(id, i, j, k int, v float64) {
	pa.GetPartitionData(id)[pa.Extents[id].Flat(i, j, k)] = v
}
