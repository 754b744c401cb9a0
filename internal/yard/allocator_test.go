package yard

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/yard-ops/internal/model"
)

// testTopology is a small layout that keeps enumeration short: two 40ft
// rows in zone A and three 20ft rows in zone B, two bays each.
func testTopology() *Topology {
	return NewTopology([]Row{
		{Zone: "A", Number: 1, Size: model.SizeFortyFt, Bays: 2},
		{Zone: "A", Number: 2, Size: model.SizeFortyFt, Bays: 2},
		{Zone: "B", Number: 6, Size: model.SizeTwentyFt, Bays: 2},
		{Zone: "B", Number: 7, Size: model.SizeTwentyFt, Bays: 2},
		{Zone: "B", Number: 8, Size: model.SizeTwentyFt, Bays: 2},
	})
}

// fillRow claims every slot of the row with units of the given size and
// load, returning the next unused entry ID.
func fillRow(t *testing.T, idx *OccupancyIndex, topo *Topology, rowNum uint32,
	size model.SizeClass, load model.LoadStatus, nextEntry uint64) uint64 {
	t.Helper()
	row, ok := topo.RowByNumber(rowNum)
	require.True(t, ok)
	for tier := uint8(1); tier <= MaxTier; tier++ {
		for bay := uint32(1); bay <= row.Bays; bay++ {
			for _, sub := range size.SubSlots() {
				s := model.SlotIdentity{Zone: row.Zone, Row: row.Number, Bay: bay, Tier: tier, SubSlot: sub}
				p := &model.Placement{EntryID: nextEntry, SizeClass: size, LoadStatus: load}
				require.True(t, idx.TryOccupy(s, p), "fill %s", s.Label())
				nextEntry++
			}
		}
	}
	return nextEntry
}

func TestAllocateFirstSlotIsDeterministic(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	p, err := a.Allocate(1, model.SizeTwentyFt, model.LoadLaden, 10, []uint32{7})
	require.NoError(t, err)
	assert.Equal(t, model.SlotIdentity{Zone: "B", Row: 7, Bay: 1, Tier: 1, SubSlot: "A"}, p.Slot)
}

func TestAllocateTierOneFillsBeforeTierTwo(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	want := []model.SlotIdentity{
		{Zone: "B", Row: 6, Bay: 1, Tier: 1, SubSlot: "A"},
		{Zone: "B", Row: 6, Bay: 1, Tier: 1, SubSlot: "B"},
		{Zone: "B", Row: 6, Bay: 2, Tier: 1, SubSlot: "A"},
		{Zone: "B", Row: 6, Bay: 2, Tier: 1, SubSlot: "B"},
		{Zone: "B", Row: 6, Bay: 1, Tier: 2, SubSlot: "A"},
	}
	for i, w := range want {
		p, err := a.Allocate(uint64(i+1), model.SizeTwentyFt, model.LoadLaden, 10, []uint32{6})
		require.NoError(t, err)
		assert.Equal(t, w, p.Slot, "allocation %d", i+1)
	}
}

func TestAllocatePreferredRowTierTwoBeatsNextRow(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	// Tier 1 of the company's first-choice row is full of laden units.
	row, _ := topo.RowByNumber(7)
	entry := uint64(100)
	for bay := uint32(1); bay <= row.Bays; bay++ {
		for _, sub := range []string{"A", "B"} {
			s := model.SlotIdentity{Zone: "B", Row: 7, Bay: bay, Tier: 1, SubSlot: sub}
			require.True(t, idx.TryOccupy(s, &model.Placement{EntryID: entry, SizeClass: model.SizeTwentyFt, LoadStatus: model.LoadLaden}))
			entry++
		}
	}

	// Stacking in the preferred row wins over tier 1 of the second choice.
	p, err := a.Allocate(1, model.SizeTwentyFt, model.LoadLaden, 10, []uint32{7, 6})
	require.NoError(t, err)
	assert.Equal(t, model.SlotIdentity{Zone: "B", Row: 7, Bay: 1, Tier: 2, SubSlot: "A"}, p.Slot)
}

func TestAllocateFallsBackToAdjacentRows(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	fillRow(t, idx, topo, 7, model.SizeTwentyFt, model.LoadLaden, 100)

	p, err := a.Allocate(1, model.SizeTwentyFt, model.LoadLaden, 10, []uint32{7})
	require.NoError(t, err)
	assert.Equal(t, uint32(6), p.Slot.Row, "adjacent rows probe the nearest row first")
	assert.Equal(t, model.SlotIdentity{Zone: "B", Row: 6, Bay: 1, Tier: 1, SubSlot: "A"}, p.Slot)
}

func TestAllocateFortyFtSkipsTwentyRows(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	// Misassigned affinity pointing at a 20ft row is ignored, not honored.
	p, err := a.Allocate(1, model.SizeFortyFt, model.LoadLaden, 10, []uint32{6})
	require.NoError(t, err)
	assert.Equal(t, model.SlotIdentity{Zone: "A", Row: 1, Bay: 1, Tier: 1, SubSlot: "A"}, p.Slot)
}

func TestAllocateFortyFtNeverOverflowsIntoTwentyRows(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	entry := fillRow(t, idx, topo, 1, model.SizeFortyFt, model.LoadLaden, 100)
	fillRow(t, idx, topo, 2, model.SizeFortyFt, model.LoadLaden, entry)

	_, err := a.Allocate(1, model.SizeFortyFt, model.LoadLaden, 10, nil)
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, model.SizeFortyFt, allocErr.Size)
}

func TestAllocateTwentyFtOverflowsIntoFortyRows(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	entry := uint64(100)
	for _, rowNum := range []uint32{6, 7, 8} {
		entry = fillRow(t, idx, topo, rowNum, model.SizeTwentyFt, model.LoadLaden, entry)
	}

	p, err := a.Allocate(1, model.SizeTwentyFt, model.LoadLaden, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, model.SlotIdentity{Zone: "A", Row: 1, Bay: 1, Tier: 1, SubSlot: "A"}, p.Slot)
}

func TestAllocateLadenNeverStacksOnEmpty(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	// Tier 1 of row 6 holds only empties.
	row, _ := topo.RowByNumber(6)
	entry := uint64(100)
	for bay := uint32(1); bay <= row.Bays; bay++ {
		for _, sub := range []string{"A", "B"} {
			s := model.SlotIdentity{Zone: "B", Row: 6, Bay: bay, Tier: 1, SubSlot: sub}
			require.True(t, idx.TryOccupy(s, &model.Placement{EntryID: entry, SizeClass: model.SizeTwentyFt, LoadStatus: model.LoadEmpty}))
			entry++
		}
	}

	p, err := a.Allocate(1, model.SizeTwentyFt, model.LoadLaden, 10, []uint32{6})
	require.NoError(t, err)
	assert.Equal(t, uint32(7), p.Slot.Row, "laden unit must move to the next row instead of stacking on empties")
	assert.Equal(t, uint8(1), p.Slot.Tier)
}

func TestAllocateEmptyMayStackOnLaden(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	fillRow(t, idx, topo, 6, model.SizeTwentyFt, model.LoadLaden, 100)
	// Only the tier-1 fill of fillRow matters; release tier 2 again.
	row, _ := topo.RowByNumber(6)
	for bay := uint32(1); bay <= row.Bays; bay++ {
		for _, sub := range []string{"A", "B"} {
			idx.Release(model.SlotIdentity{Zone: "B", Row: 6, Bay: bay, Tier: 2, SubSlot: sub})
		}
	}

	p, err := a.Allocate(1, model.SizeTwentyFt, model.LoadEmpty, 10, []uint32{6})
	require.NoError(t, err)
	assert.Equal(t, model.SlotIdentity{Zone: "B", Row: 6, Bay: 1, Tier: 2, SubSlot: "A"}, p.Slot)
}

func TestAllocateProbeBudgetBoundsEachTier(t *testing.T) {
	topo := testTopology()
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 1)

	// Occupy the first candidate of every row so each tier burns its single
	// probe on an occupied slot.
	for _, rowNum := range []uint32{6, 7, 8} {
		s := model.SlotIdentity{Zone: "B", Row: rowNum, Bay: 1, Tier: 1, SubSlot: "A"}
		require.True(t, idx.TryOccupy(s, &model.Placement{EntryID: uint64(rowNum), SizeClass: model.SizeTwentyFt, LoadStatus: model.LoadLaden}))
	}
	for _, rowNum := range []uint32{1, 2} {
		s := model.SlotIdentity{Zone: "A", Row: rowNum, Bay: 1, Tier: 1, SubSlot: "A"}
		require.True(t, idx.TryOccupy(s, &model.Placement{EntryID: uint64(rowNum), SizeClass: model.SizeFortyFt, LoadStatus: model.LoadLaden}))
	}

	_, err := a.Allocate(1, model.SizeTwentyFt, model.LoadLaden, 10, []uint32{6})
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	// One burned probe per tier: row 6 (company), row 7 (adjacent), row 8
	// (size area), row 1 (global).
	assert.Equal(t, 4, allocErr.Probes)
	assert.Equal(t, uint64(10), allocErr.CompanyID)
}

func TestAllocateReleaseReallocateRoundTrip(t *testing.T) {
	topo := NewTopology([]Row{{Zone: "B", Number: 6, Size: model.SizeTwentyFt, Bays: 1}})
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	// One bay of a 20ft row holds four units.
	for i := uint64(1); i <= 4; i++ {
		_, err := a.Allocate(i, model.SizeTwentyFt, model.LoadLaden, 10, nil)
		require.NoError(t, err)
	}
	_, err := a.Allocate(5, model.SizeTwentyFt, model.LoadLaden, 10, nil)
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)

	// Entry 3 sits at tier 2 sub A; releasing it frees exactly that slot.
	freed, err := idx.ReleaseEntry(3)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), freed.Slot.Tier)

	p, err := a.Allocate(5, model.SizeTwentyFt, model.LoadLaden, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, freed.Slot, p.Slot)
}

func TestAllocateConcurrentClaimsAreUnique(t *testing.T) {
	topo := NewTopology([]Row{{Zone: "B", Number: 6, Size: model.SizeTwentyFt, Bays: 3}})
	idx := NewOccupancyIndex()
	a := NewAllocator(topo, idx, 0)

	const n = 6 // tier 1 capacity of the row
	var wg sync.WaitGroup
	results := make([]*model.Placement, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = a.Allocate(uint64(i+1), model.SizeTwentyFt, model.LoadLaden, 10, nil)
		}(i)
	}
	wg.Wait()

	seen := make(map[model.SlotIdentity]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i], "allocation %d", i+1)
		require.False(t, seen[results[i].Slot], "slot %s claimed twice", results[i].Slot.Label())
		seen[results[i].Slot] = true
	}
	assert.Len(t, idx.Snapshot(), n)
}

func TestAllocationErrorMessage(t *testing.T) {
	err := &AllocationError{CompanyID: 7, Size: model.SizeTwentyFt, Probes: 42}
	assert.True(t, errors.As(error(err), new(*AllocationError)))
	assert.Contains(t, err.Error(), fmt.Sprint(42))
}
