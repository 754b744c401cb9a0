package yard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/yard-ops/internal/model"
)

func slot(row, bay uint32, tier uint8, sub string) model.SlotIdentity {
	zone := "B"
	if row <= 5 {
		zone = "A"
	}
	return model.SlotIdentity{Zone: zone, Row: row, Bay: bay, Tier: tier, SubSlot: sub}
}

func placement(entryID uint64, size model.SizeClass, load model.LoadStatus) *model.Placement {
	return &model.Placement{
		EntryID:    entryID,
		SizeClass:  size,
		LoadStatus: load,
		PlacedAt:   time.Now().UTC(),
	}
}

func TestTryOccupyInsertIfAbsent(t *testing.T) {
	idx := NewOccupancyIndex()
	s := slot(6, 1, 1, "A")

	ok := idx.TryOccupy(s, placement(1, model.SizeTwentyFt, model.LoadLaden))
	require.True(t, ok)

	// Second claim on the same slot fails and leaves the occupant intact.
	ok = idx.TryOccupy(s, placement(2, model.SizeTwentyFt, model.LoadLaden))
	assert.False(t, ok)
	got := idx.Get(s)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got.EntryID)
}

func TestTryOccupyRejectsSecondSlotForEntry(t *testing.T) {
	idx := NewOccupancyIndex()
	require.True(t, idx.TryOccupy(slot(6, 1, 1, "A"), placement(1, model.SizeTwentyFt, model.LoadLaden)))

	ok := idx.TryOccupy(slot(6, 2, 1, "A"), placement(1, model.SizeTwentyFt, model.LoadLaden))
	assert.False(t, ok, "one entry may occupy at most one slot")
	assert.Nil(t, idx.Get(slot(6, 2, 1, "A")))
}

func TestGetReturnsCopy(t *testing.T) {
	idx := NewOccupancyIndex()
	s := slot(6, 1, 1, "A")
	require.True(t, idx.TryOccupy(s, placement(1, model.SizeTwentyFt, model.LoadLaden)))

	got := idx.Get(s)
	got.EntryID = 999
	assert.Equal(t, uint64(1), idx.Get(s).EntryID)
}

func TestReleaseEntry(t *testing.T) {
	idx := NewOccupancyIndex()
	s := slot(6, 1, 1, "A")
	require.True(t, idx.TryOccupy(s, placement(1, model.SizeTwentyFt, model.LoadLaden)))

	p, err := idx.ReleaseEntry(1)
	require.NoError(t, err)
	assert.Equal(t, s, p.Slot)
	assert.Nil(t, idx.Get(s))
	assert.Nil(t, idx.GetByEntry(1))

	_, err = idx.ReleaseEntry(1)
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestReleaseEntryObstructedByTierAbove(t *testing.T) {
	idx := NewOccupancyIndex()
	below := slot(6, 1, 1, "A")
	above := slot(6, 1, 2, "A")
	require.True(t, idx.TryOccupy(below, placement(1, model.SizeTwentyFt, model.LoadLaden)))
	require.True(t, idx.TryOccupy(above, placement(2, model.SizeTwentyFt, model.LoadLaden)))

	_, err := idx.ReleaseEntry(1)
	assert.ErrorIs(t, err, ErrSlotObstructed)
	require.NotNil(t, idx.Get(below), "obstructed release must not mutate the index")

	// Clearing the tier above unblocks the release.
	_, err = idx.ReleaseEntry(2)
	require.NoError(t, err)
	_, err = idx.ReleaseEntry(1)
	assert.NoError(t, err)
}

func TestLoadSeedsIndex(t *testing.T) {
	idx := NewOccupancyIndex()
	p1 := *placement(1, model.SizeTwentyFt, model.LoadLaden)
	p1.Slot = slot(6, 1, 1, "A")
	p2 := *placement(2, model.SizeFortyFt, model.LoadEmpty)
	p2.Slot = slot(1, 3, 1, "A")

	idx.Load([]model.Placement{p1, p2})

	require.NotNil(t, idx.Get(p1.Slot))
	require.NotNil(t, idx.GetByEntry(2))
	assert.Len(t, idx.Snapshot(), 2)
}

func TestTryOccupyConcurrentSingleWinner(t *testing.T) {
	idx := NewOccupancyIndex()
	s := slot(6, 1, 1, "A")

	const writers = 32
	var wg sync.WaitGroup
	wins := make(chan uint64, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(entryID uint64) {
			defer wg.Done()
			if idx.TryOccupy(s, placement(entryID, model.SizeTwentyFt, model.LoadLaden)) {
				wins <- entryID
			}
		}(uint64(i + 1))
	}
	wg.Wait()
	close(wins)

	var winners []uint64
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1, "exactly one writer may claim a slot")
	assert.Equal(t, winners[0], idx.Get(s).EntryID)
}
