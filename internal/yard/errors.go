package yard

import (
	"errors"
	"fmt"

	"github.com/quayline/yard-ops/internal/model"
)

// AllocationError reports that no free, constraint-satisfying slot was
// found within the probe budgets of all four fallback tiers.  It is not
// fatal: the container entry proceeds without a placement and allocation
// may be retried later.
type AllocationError struct {
	CompanyID uint64
	Size      model.SizeClass
	Probes    int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("no free slot for company %d (%s) after %d probes", e.CompanyID, e.Size, e.Probes)
}

// ErrSlotObstructed is returned when an exit release targets a slot that
// still supports a placement on the tier above.  The upper container must
// be re-handled before the lower one can leave.
var ErrSlotObstructed = errors.New("slot obstructed by a placement on the tier above")

// ErrNoPlacement is returned when a release references an entry that has no
// active placement.
var ErrNoPlacement = errors.New("no active placement for entry")
