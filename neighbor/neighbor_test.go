package neighbor

import (
	"math/rand/v2"
	"testing"

	"github.com/notargets/GridHalo/extent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unbounded is large enough that no clamp ever bites
var unbounded = extent.New(-1000, 1000, -1000, 1000, -1000, 1000)

func TestNew(t *testing.T) {
	overlap := extent.New(10, 10, 0, 9, 0, 0)
	nb := New(3, overlap)
	assert.Equal(t, 3, nb.ID)
	assert.Equal(t, overlap, nb.Overlap)
	assert.Equal(t, overlap, nb.Send)
	assert.Equal(t, overlap, nb.Receive)
	assert.Equal(t, [3]Orientation{Undefined, Undefined, Undefined}, nb.Orientation)

	orient := [3]Orientation{Hi, Undefined, SubsetLo}
	nb = NewWithOrientation(4, overlap, orient)
	assert.Equal(t, orient, nb.Orientation)
	assert.Equal(t, overlap, nb.Send)
	assert.Equal(t, overlap, nb.Receive)
}

func TestComputeSendAndReceiveExtent_EndToEnd(t *testing.T) {
	whole := extent.New(0, 19, 0, 9, 0, 0)
	bReal := extent.New(10, 19, 0, 9, 0, 0)
	overlap := extent.New(10, 10, 0, 9, 0, 0)
	orient := [3]Orientation{Hi, Undefined, Undefined}

	t.Run("cell disjoint blocks", func(t *testing.T) {
		aReal := extent.New(0, 9, 0, 9, 0, 0)
		nb := NewWithOrientation(1, overlap, orient)
		nb.ComputeSendAndReceiveExtent(aReal, bReal, whole, 2)
		assert.Equal(t, extent.New(10, 12, 0, 9, 0, 0), nb.Receive)
		// The overlap plane belongs to B, so the send side stops at A's last plane
		assert.Equal(t, extent.New(8, 9, 0, 9, 0, 0), nb.Send)
		assert.Equal(t, overlap, nb.Overlap)
		assert.Equal(t, orient, nb.Orientation)
	})

	t.Run("shared boundary plane", func(t *testing.T) {
		aReal := extent.New(0, 10, 0, 9, 0, 0)
		nb := NewWithOrientation(1, overlap, orient)
		nb.ComputeSendAndReceiveExtent(aReal, bReal, whole, 2)
		assert.Equal(t, extent.New(10, 12, 0, 9, 0, 0), nb.Receive)
		assert.Equal(t, extent.New(8, 10, 0, 9, 0, 0), nb.Send)
	})

	t.Run("domain edge", func(t *testing.T) {
		aReal := extent.New(0, 9, 0, 9, 0, 0)
		edge := extent.New(0, 9, 0, 9, 0, 0)
		nb := NewWithOrientation(1, overlap, orient)
		nb.ComputeSendAndReceiveExtent(aReal, bReal, edge, 2)
		assert.Equal(t, 9, nb.Receive[1])
		assert.True(t, nb.Receive.IsEmpty())
		assert.Equal(t, extent.New(8, 9, 0, 9, 0, 0), nb.Send)
		assert.True(t, nb.HasExchange())
	})

	t.Run("recompute is idempotent", func(t *testing.T) {
		aReal := extent.New(0, 10, 0, 9, 0, 0)
		nb := NewWithOrientation(1, overlap, orient)
		nb.ComputeSendAndReceiveExtent(aReal, bReal, whole, 2)
		first := *nb
		nb.ComputeSendAndReceiveExtent(aReal, bReal, whole, 2)
		assert.Equal(t, first, *nb)
	})
}

func TestExchangePerOrientation(t *testing.T) {
	overlap := extent.New(10, 14, 20, 24, 30, 34)
	const n = 3
	tests := []struct {
		orient   Orientation
		sendLo   int
		sendHi   int
		recvLo   int
		recvHi   int
		describe string
	}{
		{Undefined, 10, 14, 10, 14, "no change"},
		{Superset, 7, 17, 10, 14, "send widened both ends"},
		{Hi, 7, 14, 10, 17, "recv hi up, send lo down"},
		{SubsetHi, 7, 14, 10, 17, "same as Hi"},
		{Lo, 10, 17, 7, 14, "recv lo down, send hi up"},
		{SubsetLo, 10, 17, 7, 14, "same as Lo"},
		{SubsetBoth, 7, 17, 7, 17, "both directions"},
	}
	for _, tt := range tests {
		t.Run(tt.orient.String(), func(t *testing.T) {
			for axis := 0; axis < 3; axis++ {
				var orient [3]Orientation
				orient[axis] = tt.orient
				send, recv := Exchange(overlap, orient, unbounded, unbounded, unbounded, n)

				shift := 10 * axis
				sLo, sHi := send.Axis(axis)
				rLo, rHi := recv.Axis(axis)
				assert.Equal(t, tt.sendLo+shift, sLo, tt.describe)
				assert.Equal(t, tt.sendHi+shift, sHi, tt.describe)
				assert.Equal(t, tt.recvLo+shift, rLo, tt.describe)
				assert.Equal(t, tt.recvHi+shift, rHi, tt.describe)

				// other axes untouched
				for other := 0; other < 3; other++ {
					if other == axis {
						continue
					}
					oLo, oHi := overlap.Axis(other)
					gLo, gHi := send.Axis(other)
					assert.Equal(t, [2]int{oLo, oHi}, [2]int{gLo, gHi})
					gLo, gHi = recv.Axis(other)
					assert.Equal(t, [2]int{oLo, oHi}, [2]int{gLo, gHi})
				}
			}
		})
	}
}

func TestSubsetBothIsUnionOfLoAndHi(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 200; trial++ {
		lo := r.IntN(50)
		overlap := extent.New(lo, lo+r.IntN(10), 0, 0, 0, 0)
		n := r.IntN(5)
		sendLo, recvLo := Exchange(overlap, [3]Orientation{Lo}, unbounded, unbounded, unbounded, n)
		sendHi, recvHi := Exchange(overlap, [3]Orientation{Hi}, unbounded, unbounded, unbounded, n)
		sendBoth, recvBoth := Exchange(overlap, [3]Orientation{SubsetBoth}, unbounded, unbounded, unbounded, n)

		require.Equal(t, min(sendLo[0], sendHi[0]), sendBoth[0])
		require.Equal(t, max(sendLo[1], sendHi[1]), sendBoth[1])
		require.Equal(t, min(recvLo[0], recvHi[0]), recvBoth[0])
		require.Equal(t, max(recvLo[1], recvHi[1]), recvBoth[1])
	}
}

func TestExchangeNeverLeavesWholeExtent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	orients := []Orientation{Undefined, Lo, Hi, SubsetLo, SubsetHi, SubsetBoth, Superset}
	whole := extent.New(0, 31, 0, 15, 0, 7)
	for trial := 0; trial < 1000; trial++ {
		var overlap, gridReal, nbReal extent.Extent
		var orient [3]Orientation
		for i := 0; i < 3; i++ {
			wLo, wHi := whole.Axis(i)
			lo := wLo + r.IntN(wHi-wLo+1)
			hi := lo + r.IntN(wHi-lo+1)
			overlap.SetAxis(i, lo, hi)
			gridReal.SetAxis(i, wLo, hi)
			nbReal.SetAxis(i, lo, wHi)
			orient[i] = orients[r.IntN(len(orients))]
		}
		send, recv := Exchange(overlap, orient, gridReal, nbReal, whole, r.IntN(6))
		for i := 0; i < 3; i++ {
			wLo, wHi := whole.Axis(i)
			sLo, sHi := send.Axis(i)
			rLo, rHi := recv.Axis(i)
			require.GreaterOrEqual(t, sLo, wLo)
			require.LessOrEqual(t, sHi, wHi)
			require.GreaterOrEqual(t, rLo, wLo)
			require.LessOrEqual(t, rHi, wHi)
		}
		require.True(t, gridReal.Contains(send) || send.IsEmpty())
		require.True(t, nbReal.Contains(recv) || recv.IsEmpty())
	}
}

func TestExchangeNegativeDepth(t *testing.T) {
	overlap := extent.New(4, 4, 0, 3, 0, 0)
	send, recv := Exchange(overlap, [3]Orientation{SubsetBoth, Superset, Hi}, unbounded, unbounded, unbounded, -2)
	assert.Equal(t, overlap, send)
	assert.Equal(t, overlap, recv)
}
