package model

import "fmt"

// SlotIdentity is the five-coordinate address of a physical yard position.
// It is an immutable value type; all fields are comparable so it can be
// used directly as a map key.
//
// Fields:
//  Zone    – yard zone letter (e.g. "A").
//  Row     – row number, unique across the whole yard.
//  Bay     – bay number within the row, starting at 1.
//  Tier    – stacking level, 1 is ground level.
//  SubSlot – "A" for a full 40ft bay, "A" or "B" for the two 20ft halves.
type SlotIdentity struct {
	Zone    string `json:"zone"`
	Row     uint32 `json:"row"`
	Bay     uint32 `json:"bay"`
	Tier    uint8  `json:"tier"`
	SubSlot string `json:"sub_slot"`
}

// Below returns the slot directly underneath this one.  Calling Below on a
// ground-level slot returns the slot unchanged; callers must check Tier first.
func (s SlotIdentity) Below() SlotIdentity {
	if s.Tier <= 1 {
		return s
	}
	s.Tier--
	return s
}

// Label renders the slot in the form used on yard markings and work-order
// tickets, e.g. "A-03-07-2-B".
func (s SlotIdentity) Label() string {
	return fmt.Sprintf("%s-%02d-%02d-%d-%s", s.Zone, s.Row, s.Bay, s.Tier, s.SubSlot)
}
