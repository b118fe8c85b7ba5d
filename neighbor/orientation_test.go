package neighbor

import (
	"testing"

	"github.com/notargets/GridHalo/extent"
	"github.com/stretchr/testify/assert"
)

func TestClassifyAxis(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]int
		want Orientation
	}{
		{"identical", [2]int{0, 9}, [2]int{0, 9}, Undefined},
		{"neighbor above, shared plane", [2]int{0, 10}, [2]int{10, 19}, Hi},
		{"neighbor above, abutting", [2]int{0, 9}, [2]int{10, 19}, Hi},
		{"neighbor below, abutting", [2]int{10, 19}, [2]int{0, 9}, Lo},
		{"partial overlap above", [2]int{0, 10}, [2]int{5, 15}, Hi},
		{"partial overlap below", [2]int{5, 15}, [2]int{0, 10}, Lo},
		{"strictly inside neighbor", [2]int{3, 6}, [2]int{0, 9}, SubsetBoth},
		{"inside neighbor, shared low end", [2]int{0, 6}, [2]int{0, 9}, SubsetHi},
		{"inside neighbor, shared high end", [2]int{3, 9}, [2]int{0, 9}, SubsetLo},
		{"neighbor strictly inside", [2]int{0, 9}, [2]int{3, 6}, Superset},
		{"neighbor inside, shared end", [2]int{0, 9}, [2]int{0, 4}, Superset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAxis(tt.a, tt.b))
		})
	}
}

func TestClassify(t *testing.T) {
	a := extent.New(0, 10, 0, 5, 0, 0)
	b := extent.New(10, 19, 5, 9, 0, 0)
	assert.Equal(t, [3]Orientation{Hi, Hi, Undefined}, Classify(a, b))
	assert.Equal(t, [3]Orientation{Lo, Lo, Undefined}, Classify(b, a))
}

func TestClassifyMirrors(t *testing.T) {
	// The orientation seen from the other side is the mirror image
	mirror := map[Orientation][]Orientation{
		Undefined:  {Undefined},
		Hi:         {Lo},
		Lo:         {Hi},
		SubsetBoth: {Superset},
		SubsetHi:   {Superset},
		SubsetLo:   {Superset},
		Superset:   {SubsetBoth, SubsetHi, SubsetLo},
	}
	spans := [][2]int{{0, 9}, {0, 4}, {5, 9}, {3, 6}, {9, 15}, {10, 19}, {0, 19}}
	for _, a := range spans {
		for _, b := range spans {
			ab, ba := ClassifyAxis(a, b), ClassifyAxis(b, a)
			assert.Contains(t, mirror[ab], ba, "a=%v b=%v", a, b)
		}
	}
}

func TestOrientationString(t *testing.T) {
	assert.Equal(t, "SUBSET_BOTH", SubsetBoth.String())
	assert.Equal(t, "UNKNOWN", Orientation(42).String())
}
