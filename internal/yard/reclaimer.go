package yard

import "github.com/quayline/yard-ops/internal/model"

// Reclaimer releases a container's placement when it exits the terminal.
// The release is refused while another placement rests on the tier above;
// the upper box must be re-handled first, otherwise the stack would be left
// without its recorded support.
type Reclaimer struct {
	index *OccupancyIndex
}

// NewReclaimer returns a Reclaimer over the given index.
func NewReclaimer(index *OccupancyIndex) *Reclaimer {
	return &Reclaimer{index: index}
}

// Release frees the slot occupied by the entry and returns the removed
// placement so the caller can delete its durable record.  It returns
// ErrNoPlacement when the entry has no active placement and
// ErrSlotObstructed when a placement on the tier above depends on the slot.
func (r *Reclaimer) Release(entryID uint64) (*model.Placement, error) {
	return r.index.ReleaseEntry(entryID)
}
