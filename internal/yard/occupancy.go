package yard

import (
	"sync"

	"github.com/quayline/yard-ops/internal/model"
)

// OccupancyIndex is the authoritative in-memory map from slot to the
// placement occupying it.  TryOccupy is the single synchronization point
// that prevents double-booking: the allocator claims a candidate here
// before anything is persisted, and retries the next candidate when another
// writer won the race.  The index is rebuilt from the placements table at
// startup so it always mirrors durable state.
type OccupancyIndex struct {
	mu      sync.Mutex
	bySlot  map[model.SlotIdentity]*model.Placement
	byEntry map[uint64]*model.Placement
}

// NewOccupancyIndex returns an empty index.
func NewOccupancyIndex() *OccupancyIndex {
	return &OccupancyIndex{
		bySlot:  make(map[model.SlotIdentity]*model.Placement),
		byEntry: make(map[uint64]*model.Placement),
	}
}

// TryOccupy atomically inserts the placement if the slot is free.  It
// returns false when the slot is already occupied, leaving the index
// unchanged.  A placement's entry may occupy at most one slot; claiming a
// second slot for the same entry also fails.
func (i *OccupancyIndex) TryOccupy(slot model.SlotIdentity, p *model.Placement) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, taken := i.bySlot[slot]; taken {
		return false
	}
	if _, placed := i.byEntry[p.EntryID]; placed {
		return false
	}
	p.Slot = slot
	i.bySlot[slot] = p
	i.byEntry[p.EntryID] = p
	return true
}

// Release frees the slot.  It returns false when the slot was not occupied.
func (i *OccupancyIndex) Release(slot model.SlotIdentity) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	p, ok := i.bySlot[slot]
	if !ok {
		return false
	}
	delete(i.bySlot, slot)
	delete(i.byEntry, p.EntryID)
	return true
}

// Get returns the placement occupying the slot, or nil when it is free.
// The returned value is a copy; mutating it does not affect the index.
func (i *OccupancyIndex) Get(slot model.SlotIdentity) *model.Placement {
	i.mu.Lock()
	defer i.mu.Unlock()
	p, ok := i.bySlot[slot]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// GetByEntry returns the active placement for a container entry, or nil.
func (i *OccupancyIndex) GetByEntry(entryID uint64) *model.Placement {
	i.mu.Lock()
	defer i.mu.Unlock()
	p, ok := i.byEntry[entryID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ReleaseEntry frees the slot held by the given entry, enforcing the
// stacking invariant under the same lock: a slot still supporting a
// placement on the tier above cannot be released.  On success the removed
// placement is returned so the caller can delete its durable record.
func (i *OccupancyIndex) ReleaseEntry(entryID uint64) (*model.Placement, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	p, ok := i.byEntry[entryID]
	if !ok {
		return nil, ErrNoPlacement
	}
	if p.Slot.Tier < MaxTier {
		above := p.Slot
		above.Tier++
		if _, stacked := i.bySlot[above]; stacked {
			return nil, ErrSlotObstructed
		}
	}
	delete(i.bySlot, p.Slot)
	delete(i.byEntry, entryID)
	cp := *p
	return &cp, nil
}

// Snapshot returns a copy of every active placement.  Used by the yard map
// endpoint and by tests; order is unspecified.
func (i *OccupancyIndex) Snapshot() []model.Placement {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]model.Placement, 0, len(i.bySlot))
	for _, p := range i.bySlot {
		out = append(out, *p)
	}
	return out
}

// Load seeds the index with placements read from durable storage.  It is
// called once at startup before the index is shared; existing occupants are
// never overwritten.
func (i *OccupancyIndex) Load(placements []model.Placement) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range placements {
		p := placements[idx]
		if _, taken := i.bySlot[p.Slot]; taken {
			continue
		}
		i.bySlot[p.Slot] = &p
		i.byEntry[p.EntryID] = &p
	}
}
