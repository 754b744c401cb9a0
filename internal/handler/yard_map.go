package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/quayline/yard-ops/internal/model"
	"github.com/quayline/yard-ops/internal/yard"
)

// YardMapHandler serves the read-only occupancy overview used by the ops
// dashboard.  The endpoint sits behind the Redis response cache: the
// snapshot is cheap but requested constantly by polling screens.
type YardMapHandler struct {
	Index    *yard.OccupancyIndex
	Topology *yard.Topology
}

func NewYardMapHandler(index *yard.OccupancyIndex, topo *yard.Topology) *YardMapHandler {
	return &YardMapHandler{Index: index, Topology: topo}
}

type rowOccupancy struct {
	Zone     string   `json:"zone"`
	Row      uint32   `json:"row"`
	Size     string   `json:"size_class"`
	Capacity int      `json:"capacity"`
	Occupied int      `json:"occupied"`
	Slots    []string `json:"slots"`
}

// Occupancy handles GET /v1/yard/occupancy.  It groups active placements
// by row and reports per-row utilization against topology capacity.
func (h *YardMapHandler) Occupancy(c echo.Context) error {
	byRow := make(map[uint32][]model.Placement)
	for _, p := range h.Index.Snapshot() {
		byRow[p.Slot.Row] = append(byRow[p.Slot.Row], p)
	}

	rows := make([]rowOccupancy, 0)
	total := 0
	for _, size := range []model.SizeClass{model.SizeFortyFt, model.SizeTwentyFt} {
		for _, num := range h.Topology.RowsForSize(size) {
			row, _ := h.Topology.RowByNumber(num)
			occ := byRow[num]
			sort.Slice(occ, func(i, j int) bool {
				a, b := occ[i].Slot, occ[j].Slot
				if a.Bay != b.Bay {
					return a.Bay < b.Bay
				}
				if a.Tier != b.Tier {
					return a.Tier < b.Tier
				}
				return a.SubSlot < b.SubSlot
			})
			labels := make([]string, 0, len(occ))
			for _, p := range occ {
				labels = append(labels, p.Slot.Label())
			}
			total += len(occ)
			rows = append(rows, rowOccupancy{
				Zone:     row.Zone,
				Row:      row.Number,
				Size:     string(row.Size),
				Capacity: int(row.Bays) * MaxStackCapacity(row.Size),
				Occupied: len(occ),
				Slots:    labels,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Row < rows[j].Row })
	return c.JSON(http.StatusOK, echo.Map{
		"total_occupied": total,
		"rows":           rows,
	})
}

// MaxStackCapacity returns how many containers one bay of the given size
// class can hold across all tiers and sub-slots.
func MaxStackCapacity(size model.SizeClass) int {
	return yard.MaxTier * len(size.SubSlots())
}
