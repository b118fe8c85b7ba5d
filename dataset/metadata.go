package dataset

import (
	"fmt"

	"cogentcore.org/core/base/metadata"
	"github.com/notargets/GridHalo/extent"
)

// Metadata keys for ghost layer counts
const (
	GhostCellLayersKey = "NumGhostCellLayers"
	GhostNodeLayersKey = "NumGhostNodeLayers"
)

// SetGhostLayerMetadata attaches ghost layer counts to ds
func SetGhostLayerMetadata(ds Dataset, nGhostCellLayers, nGhostNodeLayers int) {
	md := ds.Metadata()
	md.Set(GhostCellLayersKey, nGhostCellLayers)
	md.Set(GhostNodeLayersKey, nGhostNodeLayers)
}

// GetGhostLayerMetadata reads the ghost layer counts attached to ds. found is
// false when either count is missing.
func GetGhostLayerMetadata(ds Dataset) (nGhostCellLayers, nGhostNodeLayers int, found bool) {
	if ds == nil {
		return 0, 0, false
	}
	md := ds.Metadata()
	cells, err := metadata.Get[int](*md, GhostCellLayersKey)
	if err != nil {
		return 0, 0, false
	}
	nodes, err := metadata.Get[int](*md, GhostNodeLayersKey)
	if err != nil {
		return 0, 0, false
	}
	return cells, nodes, true
}

// MeshMetadata describes a distributed mesh without holding its data. Slices
// are indexed by block.
type MeshMetadata struct {
	MeshName      string
	MeshType      Type
	BlockType     Type
	NumBlocks     int
	BlockIDs      []int
	BlockOwner    []int // rank owning each block
	BlockExtents  []extent.Extent
	WholeExtent   extent.Extent
	NumGhostCells int
	NumGhostNodes int
}

// IsAMR consults the mesh type, the remaining predicates the block type
func (md *MeshMetadata) IsAMR() bool                { return IsAMR(md.MeshType) }
func (md *MeshMetadata) IsStructured() bool         { return IsStructured(md.BlockType) }
func (md *MeshMetadata) IsPolydata() bool           { return IsPolydata(md.BlockType) }
func (md *MeshMetadata) IsUnstructured() bool       { return IsUnstructured(md.BlockType) }
func (md *MeshMetadata) IsStretchedCartesian() bool { return IsStretchedCartesian(md.BlockType) }
func (md *MeshMetadata) IsUniformCartesian() bool   { return IsUniformCartesian(md.BlockType) }

// IsLogicallyCartesian reports whether blocks carry (i,j,k) extents
func (md *MeshMetadata) IsLogicallyCartesian() bool { return IsLogicallyCartesian(md.BlockType) }

// Validate checks that the per-block slices agree with NumBlocks
func (md *MeshMetadata) Validate() error {
	if md.NumBlocks < 0 {
		return fmt.Errorf("mesh %q: negative block count %d", md.MeshName, md.NumBlocks)
	}
	if len(md.BlockIDs) != md.NumBlocks {
		return fmt.Errorf("mesh %q: %d block ids for %d blocks", md.MeshName, len(md.BlockIDs), md.NumBlocks)
	}
	if len(md.BlockOwner) != md.NumBlocks {
		return fmt.Errorf("mesh %q: %d block owners for %d blocks", md.MeshName, len(md.BlockOwner), md.NumBlocks)
	}
	if md.IsLogicallyCartesian() {
		if len(md.BlockExtents) != md.NumBlocks {
			return fmt.Errorf("mesh %q: %d block extents for %d blocks", md.MeshName, len(md.BlockExtents), md.NumBlocks)
		}
		for i, e := range md.BlockExtents {
			if !md.WholeExtent.Contains(e) {
				return fmt.Errorf("mesh %q: block %d extent %v outside whole extent %v",
					md.MeshName, md.BlockIDs[i], e, md.WholeExtent)
			}
		}
	}
	if md.NumGhostCells < 0 || md.NumGhostNodes < 0 {
		return fmt.Errorf("mesh %q: negative ghost layer count", md.MeshName)
	}
	return nil
}
