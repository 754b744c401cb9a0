package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotLabel(t *testing.T) {
	s := SlotIdentity{Zone: "A", Row: 3, Bay: 7, Tier: 2, SubSlot: "B"}
	assert.Equal(t, "A-03-07-2-B", s.Label())

	s = SlotIdentity{Zone: "B", Row: 10, Bay: 12, Tier: 1, SubSlot: "A"}
	assert.Equal(t, "B-10-12-1-A", s.Label())
}

func TestSlotBelow(t *testing.T) {
	top := SlotIdentity{Zone: "A", Row: 3, Bay: 7, Tier: 2, SubSlot: "B"}
	below := top.Below()
	assert.Equal(t, uint8(1), below.Tier)
	assert.Equal(t, top.Row, below.Row)
	assert.Equal(t, top.Bay, below.Bay)
	assert.Equal(t, top.SubSlot, below.SubSlot)

	// Ground level has nothing underneath; Below is the identity there.
	assert.Equal(t, below, below.Below())
}

func TestSlotIdentityUsableAsMapKey(t *testing.T) {
	a := SlotIdentity{Zone: "A", Row: 1, Bay: 1, Tier: 1, SubSlot: "A"}
	b := SlotIdentity{Zone: "A", Row: 1, Bay: 1, Tier: 1, SubSlot: "A"}
	m := map[SlotIdentity]int{a: 1}
	assert.Equal(t, 1, m[b])
}
