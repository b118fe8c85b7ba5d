package partitions

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/notargets/GridHalo/ctxlog"
	"github.com/notargets/GridHalo/dataset"
	"github.com/notargets/GridHalo/extent"
	"github.com/notargets/GridHalo/neighbor"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// LayoutBuilder constructs a structured decomposition of a whole extent
type LayoutBuilder struct {
	Whole extent.Extent

	// Number of blocks along each axis
	Splits [3]int

	NumRanks       int
	Strategy       PartitionStrategy
	SharedBoundary bool
	GhostLayers    int

	BlockType dataset.Type
	Origin    r3.Vec
	Spacing   r3.Vec
}

// PartitionStrategy defines how blocks are assigned to ranks
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive blocks on the same rank
	RoundRobin                              // Distribute cyclically
)

func (s PartitionStrategy) String() string {
	switch s {
	case RoundRobin:
		return "round-robin"
	default:
		return "block"
	}
}

// BuildLayout splits the whole extent, assigns ranks and discovers neighbors
func (lb *LayoutBuilder) BuildLayout() (*Layout, error) {
	if lb.Whole.IsEmpty() {
		return nil, fmt.Errorf("empty whole extent %v", lb.Whole)
	}
	if lb.GhostLayers < 0 {
		return nil, fmt.Errorf("negative ghost layer count %d", lb.GhostLayers)
	}

	// Split each axis
	var spans [3][][2]int
	for axis := 0; axis < 3; axis++ {
		s, err := lb.splitAxis(axis)
		if err != nil {
			return nil, err
		}
		spans[axis] = s
	}

	numBlocks := len(spans[0]) * len(spans[1]) * len(spans[2])
	numRanks := lb.NumRanks
	if numRanks < 1 {
		numRanks = 1
	}
	eToR := lb.assignRanks(numBlocks, numRanks)

	blocks := make([]Block, 0, numBlocks)
	for k, sz := range spans[2] {
		for j, sy := range spans[1] {
			for i, sx := range spans[0] {
				id := len(blocks)
				blocks = append(blocks, Block{
					ID:        id,
					Rank:      eToR[id],
					Real:      extent.New(sx[0], sx[1], sy[0], sy[1], sz[0], sz[1]),
					Coords:    [3]int{i, j, k},
					Neighbors: &NeighborList{},
				})
			}
		}
	}

	spacing := lb.Spacing
	if spacing == (r3.Vec{}) {
		spacing = r3.Vec{X: 1, Y: 1, Z: 1}
	}
	blockType := lb.BlockType
	if blockType == dataset.TypePolyData {
		// zero value, default to uniform grids
		blockType = dataset.TypeImageData
	}
	if !dataset.IsLogicallyCartesian(blockType) {
		return nil, fmt.Errorf("block type %v has no structured extents", blockType)
	}

	layout := &Layout{
		Whole:          lb.Whole,
		Blocks:         blocks,
		NumRanks:       numRanks,
		SharedBoundary: lb.SharedBoundary,
		GhostLayers:    lb.GhostLayers,
		BlockType:      blockType,
		Origin:         lb.Origin,
		Spacing:        spacing,
	}

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if err := layout.DiscoverNeighbors(); err != nil {
		return nil, err
	}
	return layout, nil
}

// splitAxis divides one axis into Splits[axis] contiguous spans, handing the
// remainder to the leading spans
func (lb *LayoutBuilder) splitAxis(axis int) ([][2]int, error) {
	lo, hi := lb.Whole.Axis(axis)
	n := lb.Splits[axis]
	if n == 0 {
		n = 1
	}
	if n < 0 {
		return nil, fmt.Errorf("axis %d: negative split count %d", axis, n)
	}
	if n == 1 {
		return [][2]int{{lo, hi}}, nil
	}

	// Shared boundaries divide cells, disjoint blocks divide points
	units := hi - lo + 1
	if lb.SharedBoundary {
		units = hi - lo
	}
	if units < n {
		return nil, fmt.Errorf("axis %d: cannot split %d into %d blocks", axis, units, n)
	}

	base, rem := units/n, units%n
	spans := make([][2]int, n)
	start := lo
	for p := 0; p < n; p++ {
		size := base
		if p < rem {
			size++
		}
		if lb.SharedBoundary {
			spans[p] = [2]int{start, start + size}
			start += size
		} else {
			spans[p] = [2]int{start, start + size - 1}
			start += size
		}
	}
	return spans, nil
}

// assignRanks maps every block to a rank
func (lb *LayoutBuilder) assignRanks(numBlocks, numRanks int) []int {
	eToR := make([]int, numBlocks)

	switch lb.Strategy {
	case RoundRobin:
		for i := range eToR {
			eToR[i] = i % numRanks
		}

	default:
		blocksPerRank := int(math.Ceil(float64(numBlocks) / float64(numRanks)))
		for i := range eToR {
			eToR[i] = i / blocksPerRank
			if eToR[i] >= numRanks {
				eToR[i] = numRanks - 1
			}
		}
	}

	return eToR
}

// DiscoverNeighbors fills every block's neighbor list with the blocks it
// touches through a face, an edge or a corner
func (l *Layout) DiscoverNeighbors() error {
	for i := range l.Blocks {
		a := &l.Blocks[i]
		if a.Neighbors == nil {
			a.Neighbors = &NeighborList{}
		}
		a.Neighbors.Reset()
		for j := range l.Blocks {
			if i == j {
				continue
			}
			b := &l.Blocks[j]
			var overlap extent.Extent
			var ok bool
			if l.SharedBoundary {
				overlap, ok = extent.Intersect(a.Real, b.Real)
			} else {
				overlap, ok = extent.Touch(a.Real, b.Real)
			}
			if !ok {
				continue
			}
			nb := neighbor.NewWithOrientation(b.ID, overlap, neighbor.Classify(a.Real, b.Real))
			if err := a.Neighbors.Add(b.ID, nb); err != nil {
				return fmt.Errorf("block %d: %w", a.ID, err)
			}
		}
	}
	return nil
}

// ExchangeEntry is the result of planning one (block, neighbor) pair
type ExchangeEntry struct {
	BlockID      int
	NeighborID   int
	Rank         int
	NeighborRank int
	Orientation  [3]neighbor.Orientation
	Overlap      extent.Extent
	Send         extent.Extent
	Receive      extent.Extent
}

// IsRemote reports whether the pair crosses a process boundary
func (e ExchangeEntry) IsRemote() bool {
	return e.Rank != e.NeighborRank
}

// ExchangePlan lists every non-empty exchange of a layout ordered by
// (BlockID, NeighborID)
type ExchangePlan struct {
	GhostLayers int
	Entries     []ExchangeEntry
}

// EntriesFor returns the entries of one block
func (p *ExchangePlan) EntriesFor(blockID int) []ExchangeEntry {
	lo := sort.Search(len(p.Entries), func(i int) bool { return p.Entries[i].BlockID >= blockID })
	hi := lo
	for hi < len(p.Entries) && p.Entries[hi].BlockID == blockID {
		hi++
	}
	return p.Entries[lo:hi]
}

// Lookup returns the entry for a (block, neighbor) pair
func (p *ExchangePlan) Lookup(blockID, neighborID int) (ExchangeEntry, bool) {
	for _, e := range p.EntriesFor(blockID) {
		if e.NeighborID == neighborID {
			return e, true
		}
	}
	return ExchangeEntry{}, false
}

// Volume returns the number of points sent and received by one block
func (p *ExchangePlan) Volume(blockID int) (send, recv int) {
	for _, e := range p.EntriesFor(blockID) {
		send += e.Send.NumPoints()
		recv += e.Receive.NumPoints()
	}
	return
}

// BuildExchangePlan computes send and receive extents for every neighbor of
// every block using the layout's ghost depth. Each descriptor is updated in
// place by exactly one goroutine.
func BuildExchangePlan(ctx context.Context, l *Layout) (*ExchangePlan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Exchange planning started.", "blocks", len(l.Blocks), "ghost_layers", l.GhostLayers)

	type job struct {
		block *Block
		nb    *neighbor.Neighbor
	}
	var jobs []job
	for i := range l.Blocks {
		b := &l.Blocks[i]
		if b.Neighbors == nil {
			continue
		}
		for _, nb := range b.Neighbors.Values {
			jobs = append(jobs, job{block: b, nb: nb})
		}
	}

	entries := make([]ExchangeEntry, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for idx, jb := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			other := l.GetBlock(jb.nb.ID)
			if other == nil {
				return fmt.Errorf("block %d: unknown neighbor %d", jb.block.ID, jb.nb.ID)
			}
			jb.nb.ComputeSendAndReceiveExtent(jb.block.Real, other.Real, l.Whole, l.GhostLayers)
			entries[idx] = ExchangeEntry{
				BlockID:      jb.block.ID,
				NeighborID:   other.ID,
				Rank:         jb.block.Rank,
				NeighborRank: other.Rank,
				Orientation:  jb.nb.Orientation,
				Overlap:      jb.nb.Overlap,
				Send:         jb.nb.Send,
				Receive:      jb.nb.Receive,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("exchange planning failed: %w", err)
	}

	plan := &ExchangePlan{GhostLayers: l.GhostLayers}
	for i, e := range entries {
		if !jobs[i].nb.HasExchange() {
			logger.Debug("Nothing to exchange.", "block", e.BlockID, "neighbor", e.NeighborID)
			continue
		}
		plan.Entries = append(plan.Entries, e)
	}
	sort.Slice(plan.Entries, func(i, j int) bool {
		a, b := plan.Entries[i], plan.Entries[j]
		if a.BlockID != b.BlockID {
			return a.BlockID < b.BlockID
		}
		return a.NeighborID < b.NeighborID
	})

	logger.Debug("Exchange planning complete.", "entries", len(plan.Entries))
	return plan, nil
}

// ValidateCommunicationSymmetry verifies that if block A sends to block B,
// then block B expects to receive the same points from A
func ValidateCommunicationSymmetry(plan *ExchangePlan) error {
	for _, e := range plan.Entries {
		back, ok := plan.Lookup(e.NeighborID, e.BlockID)
		if !ok {
			return fmt.Errorf("block %d sends to %d, but %d has no entry for %d",
				e.BlockID, e.NeighborID, e.NeighborID, e.BlockID)
		}
		if e.Send != back.Receive {
			return fmt.Errorf("extent mismatch: block %d sends %v to %d, but %d expects %v",
				e.BlockID, e.Send, e.NeighborID, e.NeighborID, back.Receive)
		}
	}
	return nil
}

// MeshMetadata describes the layout for consumers of mesh metadata
func (l *Layout) MeshMetadata(name string) *dataset.MeshMetadata {
	md := &dataset.MeshMetadata{
		MeshName:      name,
		MeshType:      dataset.TypeMultiBlock,
		BlockType:     l.BlockType,
		NumBlocks:     len(l.Blocks),
		BlockIDs:      make([]int, len(l.Blocks)),
		BlockOwner:    make([]int, len(l.Blocks)),
		BlockExtents:  make([]extent.Extent, len(l.Blocks)),
		WholeExtent:   l.Whole,
		NumGhostCells: l.GhostLayers,
		NumGhostNodes: l.GhostLayers,
	}
	for i, b := range l.Blocks {
		md.BlockIDs[i] = b.ID
		md.BlockOwner[i] = b.Rank
		md.BlockExtents[i] = b.Real
	}
	return md
}

// FromMeshMetadata rebuilds a layout from mesh metadata. Only logically
// Cartesian blocks carry extents, so other mesh types are rejected.
func FromMeshMetadata(md *dataset.MeshMetadata, sharedBoundary bool) (*Layout, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}
	if md.IsAMR() || !md.IsLogicallyCartesian() {
		return nil, fmt.Errorf("mesh %q: block type %v has no structured extents", md.MeshName, md.BlockType)
	}
	// Blocks are stored by id, so ids must number them densely
	numRanks := 0
	blocks := make([]Block, md.NumBlocks)
	seen := make([]bool, md.NumBlocks)
	for i, id := range md.BlockIDs {
		if id < 0 || id >= md.NumBlocks || seen[id] {
			return nil, fmt.Errorf("mesh %q: block id %d at index %d is not a unique id in [0,%d)",
				md.MeshName, id, i, md.NumBlocks)
		}
		seen[id] = true
		blocks[id] = Block{
			ID:        id,
			Rank:      md.BlockOwner[i],
			Real:      md.BlockExtents[i],
			Neighbors: &NeighborList{},
		}
		numRanks = max(numRanks, md.BlockOwner[i]+1)
	}
	layout := &Layout{
		Whole:          md.WholeExtent,
		Blocks:         blocks,
		NumRanks:       numRanks,
		SharedBoundary: sharedBoundary,
		GhostLayers:    md.NumGhostNodes,
		BlockType:      md.BlockType,
		Spacing:        r3.Vec{X: 1, Y: 1, Z: 1},
	}
	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("mesh %q: %w", md.MeshName, err)
	}
	if err := layout.DiscoverNeighbors(); err != nil {
		return nil, err
	}
	return layout, nil
}

// ToComposite emits one leaf of the layout's block type per block over its
// ghosted extent, tagged with ghost layer metadata
func (l *Layout) ToComposite() (*dataset.MultiBlock, error) {
	mb := &dataset.MultiBlock{Blocks: make([]dataset.Dataset, len(l.Blocks))}
	for i := range l.Blocks {
		leaf, err := l.newLeaf(l.GhostedExtent(i, l.GhostLayers))
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		dataset.SetGhostLayerMetadata(leaf, l.GhostLayers, l.GhostLayers)
		mb.Blocks[i] = leaf
	}
	dataset.SetGhostLayerMetadata(mb, l.GhostLayers, l.GhostLayers)
	return mb, nil
}

// newLeaf builds a block of the layout's type whose points sit at
// Origin + index*Spacing
func (l *Layout) newLeaf(ext extent.Extent) (dataset.Dataset, error) {
	switch dataset.Classify(l.BlockType) {
	case dataset.CategoryUniform:
		if l.BlockType == dataset.TypeUniformGrid {
			ug := dataset.NewUniformGrid(ext)
			ug.Origin, ug.Spacing = l.Origin, l.Spacing
			return ug, nil
		}
		im := dataset.NewImageData(ext)
		im.Origin, im.Spacing = l.Origin, l.Spacing
		return im, nil

	case dataset.CategoryStretched:
		origin := [3]float64{l.Origin.X, l.Origin.Y, l.Origin.Z}
		spacing := [3]float64{l.Spacing.X, l.Spacing.Y, l.Spacing.Z}
		var coords [3][]float64
		for axis := 0; axis < 3; axis++ {
			lo, hi := ext.Axis(axis)
			for idx := lo; idx <= hi; idx++ {
				coords[axis] = append(coords[axis], origin[axis]+float64(idx)*spacing[axis])
			}
		}
		return dataset.NewRectilinearGrid(ext, coords[0], coords[1], coords[2])

	case dataset.CategoryStructured:
		points := make([]r3.Vec, 0, ext.NumPoints())
		ext.ForEach(func(i, j, k int) {
			points = append(points, r3.Vec{
				X: l.Origin.X + float64(i)*l.Spacing.X,
				Y: l.Origin.Y + float64(j)*l.Spacing.Y,
				Z: l.Origin.Z + float64(k)*l.Spacing.Z,
			})
		})
		return dataset.NewStructuredGrid(ext, points)
	}
	return nil, fmt.Errorf("block type %v has no structured extents", l.BlockType)
}
