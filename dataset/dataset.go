package dataset

import (
	"fmt"
	"math"

	"cogentcore.org/core/base/metadata"
	"github.com/notargets/GridHalo/extent"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dataset is a leaf block or a composite of blocks
type Dataset interface {
	Type() Type
	Metadata() *metadata.Data
}

// Structured is a leaf whose points are addressed by an (i,j,k) extent
type Structured interface {
	Dataset
	Extent() extent.Extent
	Point(i, j, k int) r3.Vec
	Bounds() r3.Box
}

// base carries the side-channel metadata shared by every dataset
type base struct {
	meta metadata.Data
}

func (b *base) Metadata() *metadata.Data { return &b.meta }

// ImageData is a uniform grid defined by an origin and a spacing
type ImageData struct {
	base
	Ext     extent.Extent
	Origin  r3.Vec
	Spacing r3.Vec
}

// NewImageData creates unit spaced image data over ext
func NewImageData(ext extent.Extent) *ImageData {
	return &ImageData{Ext: ext, Spacing: r3.Vec{X: 1, Y: 1, Z: 1}}
}

func (im *ImageData) Type() Type { return TypeImageData }
func (im *ImageData) Extent() extent.Extent { return im.Ext }

func (im *ImageData) Point(i, j, k int) r3.Vec {
	return r3.Vec{
		X: im.Origin.X + float64(i)*im.Spacing.X,
		Y: im.Origin.Y + float64(j)*im.Spacing.Y,
		Z: im.Origin.Z + float64(k)*im.Spacing.Z,
	}
}

func (im *ImageData) Bounds() r3.Box {
	if im.Ext.IsEmpty() {
		return r3.Box{}
	}
	return boxOf(im.Point(im.Ext[0], im.Ext[2], im.Ext[4]), im.Point(im.Ext[1], im.Ext[3], im.Ext[5]))
}

// UniformGrid is image data tagged as a uniform grid
type UniformGrid struct {
	ImageData
}

func NewUniformGrid(ext extent.Extent) *UniformGrid {
	return &UniformGrid{ImageData: *NewImageData(ext)}
}

func (ug *UniformGrid) Type() Type { return TypeUniformGrid }

// RectilinearGrid is a stretched Cartesian grid with one coordinate array per
// axis. Coordinate vectors are indexed from the low bound of the extent.
type RectilinearGrid struct {
	base
	Ext          extent.Extent
	XCoordinates *mat.VecDense
	YCoordinates *mat.VecDense
	ZCoordinates *mat.VecDense
}

// NewRectilinearGrid checks that the coordinate arrays match the extent
func NewRectilinearGrid(ext extent.Extent, x, y, z []float64) (*RectilinearGrid, error) {
	if ext.IsEmpty() {
		return nil, fmt.Errorf("empty extent %v", ext)
	}
	size := ext.Size()
	for axis, c := range [][]float64{x, y, z} {
		if len(c) != size[axis] {
			return nil, fmt.Errorf("axis %d: %d coordinates for %d points", axis, len(c), size[axis])
		}
	}
	return &RectilinearGrid{
		Ext:          ext,
		XCoordinates: mat.NewVecDense(len(x), x),
		YCoordinates: mat.NewVecDense(len(y), y),
		ZCoordinates: mat.NewVecDense(len(z), z),
	}, nil
}

func (rg *RectilinearGrid) Type() Type { return TypeRectilinearGrid }
func (rg *RectilinearGrid) Extent() extent.Extent { return rg.Ext }

func (rg *RectilinearGrid) Point(i, j, k int) r3.Vec {
	return r3.Vec{
		X: rg.XCoordinates.AtVec(i - rg.Ext[0]),
		Y: rg.YCoordinates.AtVec(j - rg.Ext[2]),
		Z: rg.ZCoordinates.AtVec(k - rg.Ext[4]),
	}
}

func (rg *RectilinearGrid) Bounds() r3.Box {
	if rg.Ext.IsEmpty() {
		return r3.Box{}
	}
	return r3.Box{
		Min: r3.Vec{X: mat.Min(rg.XCoordinates), Y: mat.Min(rg.YCoordinates), Z: mat.Min(rg.ZCoordinates)},
		Max: r3.Vec{X: mat.Max(rg.XCoordinates), Y: mat.Max(rg.YCoordinates), Z: mat.Max(rg.ZCoordinates)},
	}
}

// StructuredGrid is a curvilinear grid with explicit point coordinates laid
// out in extent order
type StructuredGrid struct {
	base
	Ext    extent.Extent
	Points []r3.Vec
}

// NewStructuredGrid checks the point count against the extent
func NewStructuredGrid(ext extent.Extent, points []r3.Vec) (*StructuredGrid, error) {
	if len(points) != ext.NumPoints() {
		return nil, fmt.Errorf("%d points for extent %v holding %d", len(points), ext, ext.NumPoints())
	}
	return &StructuredGrid{Ext: ext, Points: points}, nil
}

func (sg *StructuredGrid) Type() Type { return TypeStructuredGrid }
func (sg *StructuredGrid) Extent() extent.Extent { return sg.Ext }

func (sg *StructuredGrid) Point(i, j, k int) r3.Vec {
	return sg.Points[sg.Ext.Flat(i, j, k)]
}

func (sg *StructuredGrid) Bounds() r3.Box {
	if len(sg.Points) == 0 {
		return r3.Box{}
	}
	b := r3.Box{Min: sg.Points[0], Max: sg.Points[0]}
	for _, p := range sg.Points[1:] {
		b.Min = r3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
		b.Max = r3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	}
	return b
}

// PolyData is a polygonal surface block. Only sizes are tracked.
type PolyData struct {
	base
	NumPoints int
	NumCells  int
}

func (pd *PolyData) Type() Type { return TypePolyData }

// UnstructuredGrid is a volumetric block with explicit connectivity. Only
// sizes are tracked.
type UnstructuredGrid struct {
	base
	NumPoints int
	NumCells  int
}

func (ug *UnstructuredGrid) Type() Type { return TypeUnstructuredGrid }

func boxOf(a, b r3.Vec) r3.Box {
	return r3.Box{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}
