package model

import "time"

// Placement binds a container entry to the slot it occupies.  Exactly one
// active placement may reference a given slot at a time; the occupancy
// index and the unique key on the placements table both enforce this.
//
// Fields:
//  ID          – primary key identifier.
//  EntryID     – container entry occupying the slot.
//  Slot        – the occupied yard position.
//  SizeClass   – size class of the container, needed for stacking checks.
//  LoadStatus  – load status of the container, needed for stacking checks.
//  PlacedAt    – when the slot was claimed by the allocator.
//  ConfirmedAt – when the physical move was completed, nil until then.
type Placement struct {
	ID          uint64       // placements.id
	EntryID     uint64       // placements.entry_id
	Slot        SlotIdentity // placements.zone/row/bay/tier/sub_slot
	SizeClass   SizeClass    // placements.size_class
	LoadStatus  LoadStatus   // placements.load_status
	PlacedAt    time.Time    // placements.placed_at
	ConfirmedAt *time.Time   // placements.confirmed_at (nullable)
}

// CompanyRow is one entry of the externally maintained affinity table that
// clusters a company's containers into preferred rows.  Rank orders the
// rows; the allocator probes them rank-ascending.
type CompanyRow struct {
	CompanyID uint64    // company_rows.company_id
	SizeClass SizeClass // company_rows.size_class
	Row       uint32    // company_rows.row_no
	Rank      uint32    // company_rows.rank
}
