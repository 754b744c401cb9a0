package yard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/yard-ops/internal/model"
)

func TestDefaultTopologyLayout(t *testing.T) {
	topo := DefaultTopology()

	forty := topo.RowsForSize(model.SizeFortyFt)
	twenty := topo.RowsForSize(model.SizeTwentyFt)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, forty)
	assert.Equal(t, []uint32{6, 7, 8, 9, 10}, twenty)

	r, ok := topo.RowByNumber(3)
	require.True(t, ok)
	assert.Equal(t, "A", r.Zone)
	assert.Equal(t, model.SizeFortyFt, r.Size)
	assert.Equal(t, uint32(12), r.Bays)

	_, ok = topo.RowByNumber(99)
	assert.False(t, ok)
}

func TestAllRowsSameSizeFirst(t *testing.T) {
	topo := DefaultTopology()

	all := topo.AllRows(model.SizeTwentyFt)
	require.Len(t, all, 10)
	assert.Equal(t, []uint32{6, 7, 8, 9, 10}, all[:5], "same-size rows come first")
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, all[5:])
}

func TestAdjacentRowsOrderedByDistance(t *testing.T) {
	topo := DefaultTopology()

	adj := topo.AdjacentRows([]uint32{8}, model.SizeTwentyFt, 2)
	assert.Equal(t, []uint32{7, 9, 6, 10}, adj)
}

func TestAdjacentRowsStayInSizeArea(t *testing.T) {
	topo := DefaultTopology()

	// Row 6 borders the 40ft area; rows 4 and 5 must not appear.
	adj := topo.AdjacentRows([]uint32{6}, model.SizeTwentyFt, 2)
	assert.Equal(t, []uint32{7, 8}, adj)
}

func TestAdjacentRowsExcludeBaseAndDuplicates(t *testing.T) {
	topo := DefaultTopology()

	adj := topo.AdjacentRows([]uint32{7, 8}, model.SizeTwentyFt, 2)
	for _, n := range adj {
		assert.NotContains(t, []uint32{7, 8}, n)
	}
	seen := map[uint32]int{}
	for _, n := range adj {
		seen[n]++
	}
	for n, c := range seen {
		assert.Equal(t, 1, c, "row %d listed more than once", n)
	}
}
