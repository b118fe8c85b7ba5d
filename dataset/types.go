package dataset

// Type is the data object tag carried in mesh metadata. Values match the
// VTK data object type ids so tags exchanged with VTK based tools keep their
// meaning.
type Type int

const (
	TypePolyData          Type = 0
	TypeStructuredPoints  Type = 1
	TypeStructuredGrid    Type = 2
	TypeRectilinearGrid   Type = 3
	TypeUnstructuredGrid  Type = 4
	TypeImageData         Type = 6
	TypeUniformGrid       Type = 10
	TypeMultiBlock        Type = 13
	TypeOverlappingAMR    Type = 29
	TypeNonOverlappingAMR Type = 30
)

func (t Type) String() string {
	switch t {
	case TypePolyData:
		return "PolyData"
	case TypeStructuredPoints:
		return "StructuredPoints"
	case TypeStructuredGrid:
		return "StructuredGrid"
	case TypeRectilinearGrid:
		return "RectilinearGrid"
	case TypeUnstructuredGrid:
		return "UnstructuredGrid"
	case TypeImageData:
		return "ImageData"
	case TypeUniformGrid:
		return "UniformGrid"
	case TypeMultiBlock:
		return "MultiBlock"
	case TypeOverlappingAMR:
		return "OverlappingAMR"
	case TypeNonOverlappingAMR:
		return "NonOverlappingAMR"
	default:
		return "Unknown"
	}
}

// Category is the geometric family a block belongs to
type Category uint8

const (
	CategoryNone Category = iota
	CategoryAMR
	CategoryUniform    // image data, uniform grid
	CategoryStretched  // rectilinear grid
	CategoryStructured // curvilinear structured grid
	CategoryPolydata
	CategoryUnstructured
)

func (c Category) String() string {
	switch c {
	case CategoryAMR:
		return "AMR"
	case CategoryUniform:
		return "UniformCartesian"
	case CategoryStretched:
		return "StretchedCartesian"
	case CategoryStructured:
		return "Structured"
	case CategoryPolydata:
		return "Polydata"
	case CategoryUnstructured:
		return "Unstructured"
	default:
		return "None"
	}
}

// Classify maps a tag to its category. Unknown tags are CategoryNone.
func Classify(t Type) Category {
	switch t {
	case TypeOverlappingAMR, TypeNonOverlappingAMR:
		return CategoryAMR
	case TypeImageData, TypeUniformGrid:
		return CategoryUniform
	case TypeRectilinearGrid:
		return CategoryStretched
	case TypeStructuredGrid:
		return CategoryStructured
	case TypePolyData:
		return CategoryPolydata
	case TypeUnstructuredGrid:
		return CategoryUnstructured
	default:
		return CategoryNone
	}
}

// IsAMR reports whether t is an overlapping or non-overlapping AMR tag
func IsAMR(t Type) bool { return Classify(t) == CategoryAMR }

// IsStructured reports whether t is a curvilinear structured grid
func IsStructured(t Type) bool { return Classify(t) == CategoryStructured }

// IsPolydata reports whether t is polygonal data
func IsPolydata(t Type) bool { return Classify(t) == CategoryPolydata }

// IsUnstructured reports whether t is an unstructured grid
func IsUnstructured(t Type) bool { return Classify(t) == CategoryUnstructured }

// IsStretchedCartesian reports whether t is a rectilinear grid
func IsStretchedCartesian(t Type) bool { return Classify(t) == CategoryStretched }

// IsUniformCartesian reports whether t is image data or a uniform grid
func IsUniformCartesian(t Type) bool { return Classify(t) == CategoryUniform }

// IsLogicallyCartesian reports whether blocks of type t are indexed by an
// (i,j,k) extent
func IsLogicallyCartesian(t Type) bool {
	switch Classify(t) {
	case CategoryStructured, CategoryUniform, CategoryStretched:
		return true
	default:
		return false
	}
}
