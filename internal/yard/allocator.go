package yard

import (
	"time"

	"github.com/quayline/yard-ops/internal/model"
)

// DefaultProbeBudget bounds how many candidate slots a single fallback tier
// may examine before the search moves on.  Twelve bays, two tiers and two
// sub-slots make 48 candidates per 20ft row, so the default covers a bit
// more than one full row per tier.
const DefaultProbeBudget = 64

// Allocator performs the tiered fallback search for a free slot.  The
// enumeration is deterministic: rows in preference order, tier 1 before
// tier 2 within a row, bays ascending, sub-slot A before B.  Every
// candidate is claimed through the occupancy index, so two concurrent
// searches can never return the same slot.
type Allocator struct {
	topo   *Topology
	index  *OccupancyIndex
	budget int
	now    func() time.Time
}

// NewAllocator builds an allocator over the given topology and index.  A
// probeBudget of zero selects DefaultProbeBudget.
func NewAllocator(topo *Topology, index *OccupancyIndex, probeBudget int) *Allocator {
	if probeBudget <= 0 {
		probeBudget = DefaultProbeBudget
	}
	return &Allocator{topo: topo, index: index, budget: probeBudget, now: time.Now}
}

// Allocate finds and atomically claims a free slot for the container entry.
// companyRows is the externally assigned affinity list for the entry's
// company and size class, already in preference order; it may be empty for
// companies without assigned rows.
//
// The four fallback tiers, each bounded by the probe budget:
//  1. the company's own rows;
//  2. rows within ±2 of the company's rows, same size area;
//  3. any row reserved for this size class;
//  4. any row the container physically fits in.
//
// On success the returned placement is already registered in the occupancy
// index but not yet persisted; the caller owns persistence and must release
// the slot if that fails.  When every tier exhausts its budget the search
// returns *AllocationError.
func (a *Allocator) Allocate(entryID uint64, size model.SizeClass, load model.LoadStatus, companyID uint64, companyRows []uint32) (*model.Placement, error) {
	tried := make(map[uint32]bool)
	totalProbes := 0

	for _, rows := range [][]uint32{
		companyRows,
		a.topo.AdjacentRows(companyRows, size, 2),
		a.topo.RowsForSize(size),
		a.topo.AllRows(size),
	} {
		p, probes := a.searchRows(rows, tried, entryID, size, load)
		totalProbes += probes
		if p != nil {
			return p, nil
		}
	}
	return nil, &AllocationError{CompanyID: companyID, Size: size, Probes: totalProbes}
}

// searchRows probes the given rows in order until a slot is claimed or the
// tier's probe budget runs out.  Rows already tried by an earlier tier are
// skipped and marked rows are remembered for later tiers.
func (a *Allocator) searchRows(rowNums []uint32, tried map[uint32]bool, entryID uint64, size model.SizeClass, load model.LoadStatus) (*model.Placement, int) {
	probes := 0
	for _, num := range rowNums {
		if tried[num] {
			continue
		}
		tried[num] = true
		row, ok := a.topo.RowByNumber(num)
		if !ok || !fitsRow(size, row.Size) {
			continue
		}
		for tier := uint8(1); tier <= MaxTier; tier++ {
			for bay := uint32(1); bay <= row.Bays; bay++ {
				for _, sub := range size.SubSlots() {
					if probes >= a.budget {
						return nil, probes
					}
					probes++
					slot := model.SlotIdentity{Zone: row.Zone, Row: row.Number, Bay: bay, Tier: tier, SubSlot: sub}
					if !a.candidateValid(slot, size, load) {
						continue
					}
					p := &model.Placement{
						EntryID:    entryID,
						SizeClass:  size,
						LoadStatus: load,
						PlacedAt:   a.now().UTC(),
					}
					// Lost races surface here as a failed claim; the next
					// candidate is simply probed instead.
					if a.index.TryOccupy(slot, p) {
						return p, probes
					}
				}
			}
		}
	}
	return nil, probes
}

// candidateValid checks the stacking invariants for a candidate slot.  A
// tier-1 slot only needs to be free.  A tier-2 slot additionally needs an
// occupied, compatible slot directly beneath it: never a 20ft unit under a
// 40ft one, and never an empty box under a laden one.
func (a *Allocator) candidateValid(slot model.SlotIdentity, size model.SizeClass, load model.LoadStatus) bool {
	if a.index.Get(slot) != nil {
		return false
	}
	if slot.Tier == 1 {
		return true
	}
	below := a.index.Get(slot.Below())
	if below == nil {
		return false
	}
	if size == model.SizeFortyFt && below.SizeClass == model.SizeTwentyFt {
		return false
	}
	if load == model.LoadLaden && below.LoadStatus == model.LoadEmpty {
		return false
	}
	return true
}

// fitsRow reports whether a container of the given size class may stand in
// a row of the given class.  A 20ft unit fits anywhere; a 40ft unit needs a
// 40ft row.
func fitsRow(container, row model.SizeClass) bool {
	if container == model.SizeFortyFt {
		return row == model.SizeFortyFt
	}
	return true
}
