// Package yard implements the physical layout of the container yard, the
// occupancy index that guards it and the tiered slot allocator that fills it.
package yard

import (
	"sort"

	"github.com/quayline/yard-ops/internal/model"
)

// MaxTier is the highest stacking level the yard equipment can service.
const MaxTier = 2

// Row describes one row of bays.  Every bay in a row shares the row's size
// class: a 40ft row holds one 40ft unit per bay (sub-slot A), a 20ft row
// holds two 20ft units per bay (sub-slots A and B).
type Row struct {
	Zone   string
	Number uint32
	Size   model.SizeClass
	Bays   uint32
}

// Topology is the static description of zones, rows and bays.  It is built
// once at startup and read-only afterwards, so it is safe for concurrent use.
type Topology struct {
	rows   []Row
	byNum  map[uint32]Row
	bySize map[model.SizeClass][]uint32
}

// NewTopology builds a topology from the given rows.  Row numbers must be
// unique across zones.  Rows within a size area are kept in ascending
// number order so fallback enumeration is deterministic.
func NewTopology(rows []Row) *Topology {
	t := &Topology{
		rows:   rows,
		byNum:  make(map[uint32]Row, len(rows)),
		bySize: make(map[model.SizeClass][]uint32),
	}
	for _, r := range rows {
		t.byNum[r.Number] = r
		t.bySize[r.Size] = append(t.bySize[r.Size], r.Number)
	}
	for _, nums := range t.bySize {
		sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	}
	return t
}

// DefaultTopology returns the standard two-zone layout: zone A rows 1–5 for
// 40ft units, zone B rows 6–10 for 20ft units, twelve bays per row.
func DefaultTopology() *Topology {
	rows := make([]Row, 0, 10)
	for n := uint32(1); n <= 5; n++ {
		rows = append(rows, Row{Zone: "A", Number: n, Size: model.SizeFortyFt, Bays: 12})
	}
	for n := uint32(6); n <= 10; n++ {
		rows = append(rows, Row{Zone: "B", Number: n, Size: model.SizeTwentyFt, Bays: 12})
	}
	return NewTopology(rows)
}

// RowByNumber returns the row with the given number, if it exists.
func (t *Topology) RowByNumber(n uint32) (Row, bool) {
	r, ok := t.byNum[n]
	return r, ok
}

// RowsForSize returns the numbers of all rows reserved for the given size
// class, in ascending order.
func (t *Topology) RowsForSize(size model.SizeClass) []uint32 {
	return t.bySize[size]
}

// AllRows returns every row number in the yard in ascending order, starting
// with the rows of the given size class so the global fallback still probes
// same-size rows first.
func (t *Topology) AllRows(size model.SizeClass) []uint32 {
	out := append([]uint32{}, t.bySize[size]...)
	for sc, nums := range t.bySize {
		if sc == size {
			continue
		}
		out = append(out, nums...)
	}
	return out
}

// AdjacentRows returns rows within the given distance of any of the base
// rows, restricted to the same size area and excluding the base rows
// themselves.  Results are ordered by distance, then by row number.
func (t *Topology) AdjacentRows(base []uint32, size model.SizeClass, maxDist uint32) []uint32 {
	in := make(map[uint32]bool, len(base))
	for _, n := range base {
		in[n] = true
	}
	var out []uint32
	seen := make(map[uint32]bool)
	for dist := uint32(1); dist <= maxDist; dist++ {
		for _, n := range base {
			for _, cand := range []uint32{n - dist, n + dist} {
				row, ok := t.byNum[cand]
				if !ok || row.Size != size || in[cand] || seen[cand] {
					continue
				}
				seen[cand] = true
				out = append(out, cand)
			}
		}
	}
	return out
}
