package dataset

// MultiBlock is a tree of datasets. Nil entries are empty slots: they take a
// flat index but are never visited.
type MultiBlock struct {
	base
	Blocks []Dataset
}

func (mb *MultiBlock) Type() Type { return TypeMultiBlock }

// AMR holds blocks grouped by refinement level
type AMR struct {
	base
	Levels      [][]Dataset
	Overlapping bool
}

func (a *AMR) Type() Type {
	if a.Overlapping {
		return TypeOverlappingAMR
	}
	return TypeNonOverlappingAMR
}

// Status is the return code of a per-leaf callback
type Status int

const (
	Continue Status = 0  // keep walking
	Stop     Status = 1  // stop without error, any positive value does the same
	Fail     Status = -1 // stop with error, any negative value does the same
)

// Failed reports whether s signals an error
func (s Status) Failed() bool { return s < 0 }

// Leaf is a non-composite dataset together with its position in the tree
type Leaf struct {
	FlatIndex int // pre-order index, the root is 0
	Level     int // AMR refinement level, 0 outside AMR
	Dataset   Dataset
}

// IsComposite reports whether ds holds other datasets
func IsComposite(ds Dataset) bool {
	switch ds.(type) {
	case *MultiBlock, *AMR:
		return true
	default:
		return false
	}
}

// Apply calls fn once for every leaf of ds in flat index order, stopping at
// the first non-zero status and returning it. A dataset that is not a
// composite is its own single leaf.
func Apply(ds Dataset, fn func(Leaf) Status) Status {
	if ds == nil {
		return Continue
	}
	flat := 0
	return walk(ds, &flat, 0, fn)
}

func walk(ds Dataset, flat *int, level int, fn func(Leaf) Status) Status {
	idx := *flat
	*flat++
	switch d := ds.(type) {
	case *MultiBlock:
		for _, child := range d.Blocks {
			if child == nil {
				*flat++
				continue
			}
			if st := walk(child, flat, level, fn); st != Continue {
				return st
			}
		}
	case *AMR:
		for lvl, blocks := range d.Levels {
			for _, child := range blocks {
				if child == nil {
					*flat++
					continue
				}
				if st := walk(child, flat, lvl, fn); st != Continue {
					return st
				}
			}
		}
	default:
		return fn(Leaf{FlatIndex: idx, Level: level, Dataset: ds})
	}
	return Continue
}

// ApplyPair walks in and out in lockstep and calls fn for every pair of
// corresponding leaves. The trees must have the same shape: a composite of a
// different kind or size, or a leaf facing a composite, returns Fail. Empty
// input slots are skipped whatever the output holds there.
func ApplyPair(in, out Dataset, fn func(in, out Leaf) Status) Status {
	if in == nil {
		return Continue
	}
	flat := 0
	return walkPair(in, out, &flat, 0, fn)
}

func walkPair(in, out Dataset, flat *int, level int, fn func(in, out Leaf) Status) Status {
	idx := *flat
	*flat++
	switch a := in.(type) {
	case *MultiBlock:
		b, ok := out.(*MultiBlock)
		if !ok || len(a.Blocks) != len(b.Blocks) {
			return Fail
		}
		for i, child := range a.Blocks {
			if child == nil {
				*flat++
				continue
			}
			if st := walkPair(child, b.Blocks[i], flat, level, fn); st != Continue {
				return st
			}
		}
	case *AMR:
		b, ok := out.(*AMR)
		if !ok || len(a.Levels) != len(b.Levels) {
			return Fail
		}
		for lvl, blocks := range a.Levels {
			if len(blocks) != len(b.Levels[lvl]) {
				return Fail
			}
			for i, child := range blocks {
				if child == nil {
					*flat++
					continue
				}
				if st := walkPair(child, b.Levels[lvl][i], flat, lvl, fn); st != Continue {
					return st
				}
			}
		}
	default:
		if out == nil || IsComposite(out) {
			return Fail
		}
		return fn(Leaf{FlatIndex: idx, Level: level, Dataset: in},
			Leaf{FlatIndex: idx, Level: level, Dataset: out})
	}
	return Continue
}

// CopyStructure builds a tree shaped like in whose leaves are produced by
// newLeaf. Metadata of composite nodes is copied.
func CopyStructure(in Dataset, newLeaf func(Leaf) Dataset) Dataset {
	if in == nil {
		return nil
	}
	flat := 0
	return copyNode(in, &flat, 0, newLeaf)
}

func copyNode(in Dataset, flat *int, level int, newLeaf func(Leaf) Dataset) Dataset {
	idx := *flat
	*flat++
	switch a := in.(type) {
	case *MultiBlock:
		out := &MultiBlock{Blocks: make([]Dataset, len(a.Blocks))}
		out.meta.Copy(a.meta)
		for i, child := range a.Blocks {
			if child == nil {
				*flat++
				continue
			}
			out.Blocks[i] = copyNode(child, flat, level, newLeaf)
		}
		return out
	case *AMR:
		out := &AMR{Levels: make([][]Dataset, len(a.Levels)), Overlapping: a.Overlapping}
		out.meta.Copy(a.meta)
		for lvl, blocks := range a.Levels {
			out.Levels[lvl] = make([]Dataset, len(blocks))
			for i, child := range blocks {
				if child == nil {
					*flat++
					continue
				}
				out.Levels[lvl][i] = copyNode(child, flat, lvl, newLeaf)
			}
		}
		return out
	default:
		return newLeaf(Leaf{FlatIndex: idx, Level: level, Dataset: in})
	}
}

// Leaves collects every leaf of ds in flat index order
func Leaves(ds Dataset) []Leaf {
	var leaves []Leaf
	Apply(ds, func(l Leaf) Status {
		leaves = append(leaves, l)
		return Continue
	})
	return leaves
}
