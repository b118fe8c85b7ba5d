package utils

import (
	"context"
	"testing"

	"github.com/notargets/GridHalo/extent"
	"github.com/notargets/GridHalo/partitions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPlan(t *testing.T, lb *partitions.LayoutBuilder) (*partitions.Layout, *partitions.ExchangePlan) {
	t.Helper()
	layout, err := lb.BuildLayout()
	require.NoError(t, err)
	plan, err := partitions.BuildExchangePlan(context.Background(), layout)
	require.NoError(t, err)
	return layout, plan
}

// fillReal writes f into the real points of every block and -1 into the ghosts
func fillReal(layout *partitions.Layout, pa *partitions.PartitionedArray, f func(i, j, k int) float64) {
	for b := range layout.Blocks {
		data := pa.GetPartitionData(b)
		for n := range data {
			data[n] = -1
		}
		layout.Blocks[b].Real.ForEach(func(i, j, k int) {
			pa.Set(b, i, j, k, f(i, j, k))
		})
	}
}

func field(i, j, k int) float64 { return float64(i + 100*j + 10000*k) }

func TestExtentConnector_Shared2x2(t *testing.T) {
	layout, plan := buildPlan(t, &partitions.LayoutBuilder{
		Whole:          extent.New(0, 20, 0, 20, 0, 0),
		Splits:         [3]int{2, 2, 1},
		SharedBoundary: true,
		GhostLayers:    2,
	})

	ec, err := NewExtentConnector(layout, plan)
	require.NoError(t, err)
	require.NoError(t, ec.Verify())

	assert.Equal(t, extent.New(0, 12, 0, 12, 0, 0), ec.Extents[0])
	assert.Equal(t, 48, ec.GhostPointCount(0))

	// Face neighbors fill two columns, the corner neighbor the rest
	assert.Len(t, ec.GetPickIndices(1, 0), 22)
	assert.Len(t, ec.GetPlaceIndices(0, 1), 22)
	assert.Len(t, ec.GetPickIndices(2, 0), 22)
	assert.Len(t, ec.GetPickIndices(3, 0), 8)
	assert.Empty(t, ec.GetPickIndices(0, 0))
	assert.Nil(t, ec.GetPickIndices(4, 0))
	assert.Nil(t, ec.GetPlaceIndices(0, -1))

	pa := partitions.AllocatePartitionedArray(layout)
	fillReal(layout, pa, field)
	require.NoError(t, ec.Exchange(pa))

	for b := range layout.Blocks {
		pa.Extents[b].ForEach(func(i, j, k int) {
			if got := pa.At(b, i, j, k); got != field(i, j, k) {
				t.Errorf("block %d point (%d,%d,%d): got %v, want %v", b, i, j, k, got, field(i, j, k))
			}
		})
	}
}

func TestExtentConnector_Disjoint(t *testing.T) {
	testCases := []struct {
		name   string
		whole  extent.Extent
		splits [3]int
		ghost  int
	}{
		{"1D strip", extent.New(0, 29, 0, 0, 0, 0), [3]int{3, 1, 1}, 2},
		{"1D strip ghosts as wide as blocks", extent.New(0, 29, 0, 0, 0, 0), [3]int{3, 1, 1}, 10},
		{"2D 2x2", extent.New(0, 19, 0, 19, 0, 0), [3]int{2, 2, 1}, 2},
		{"2D 3x2 deep", extent.New(0, 17, 0, 11, 0, 0), [3]int{3, 2, 1}, 3},
		{"3D 2x2x2", extent.New(0, 7, 0, 7, 0, 7), [3]int{2, 2, 2}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			layout, plan := buildPlan(t, &partitions.LayoutBuilder{
				Whole:       tc.whole,
				Splits:      tc.splits,
				NumRanks:    2,
				Strategy:    partitions.RoundRobin,
				GhostLayers: tc.ghost,
			})

			ec, err := NewExtentConnector(layout, plan)
			require.NoError(t, err)
			require.NoError(t, ec.Verify())

			pa := partitions.AllocatePartitionedArray(layout)
			fillReal(layout, pa, field)
			require.NoError(t, ec.Exchange(pa))

			for b := range layout.Blocks {
				for n, v := range pa.GetPartitionData(b) {
					if v < 0 {
						t.Fatalf("block %d: ghost value %d not filled", b, n)
					}
				}
			}
			pa.Extents[0].ForEach(func(i, j, k int) {
				assert.Equal(t, field(i, j, k), pa.At(0, i, j, k))
			})
		})
	}
}

func TestExtentConnector_Verify(t *testing.T) {
	layout, plan := buildPlan(t, &partitions.LayoutBuilder{
		Whole:          extent.New(0, 20, 0, 20, 0, 0),
		Splits:         [3]int{2, 2, 1},
		SharedBoundary: true,
		GhostLayers:    2,
	})

	// Dropping the corner neighbor leaves the corner ghosts of block 0 empty
	var partial partitions.ExchangePlan
	partial.GhostLayers = plan.GhostLayers
	for _, e := range plan.Entries {
		if e.BlockID == 0 && e.NeighborID == 3 {
			continue
		}
		partial.Entries = append(partial.Entries, e)
	}
	ec, err := NewExtentConnector(layout, &partial)
	require.NoError(t, err)
	assert.ErrorContains(t, ec.Verify(), "block 0 has 4 unfilled ghost points")

	// Corrupt correspondence
	ec, err = NewExtentConnector(layout, plan)
	require.NoError(t, err)
	ec.PickIndices[1][0].Indices = ec.PickIndices[1][0].Indices[1:]
	assert.ErrorContains(t, ec.Verify(), "length mismatch")

	ec.PickIndices[1][0].Indices[0] = -3
	assert.ErrorContains(t, ec.Verify(), "invalid pick index -3")
}

func TestExtentConnector_Errors(t *testing.T) {
	layout, plan := buildPlan(t, &partitions.LayoutBuilder{
		Whole:          extent.New(0, 20, 0, 10, 0, 0),
		Splits:         [3]int{2, 1, 1},
		SharedBoundary: true,
		GhostLayers:    2,
	})

	_, err := NewExtentConnector(&partitions.Layout{}, plan)
	assert.ErrorContains(t, err, "no blocks")

	bad := &partitions.ExchangePlan{GhostLayers: 2, Entries: []partitions.ExchangeEntry{
		{BlockID: 0, NeighborID: 1, Receive: extent.New(0, 12, 0, 10, 0, 0)},
	}}
	_, err = NewExtentConnector(layout, bad)
	assert.ErrorContains(t, err, "not owned by block 1")

	bad.Entries[0].NeighborID = 5
	_, err = NewExtentConnector(layout, bad)
	assert.ErrorContains(t, err, "outside 2 blocks")

	ec, err := NewExtentConnector(layout, plan)
	require.NoError(t, err)

	// Array allocated with a different ghost depth
	layout.GhostLayers = 1
	pa := partitions.AllocatePartitionedArray(layout)
	assert.ErrorContains(t, ec.Exchange(pa), "connector extent")
}
