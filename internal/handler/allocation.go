package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quayline/yard-ops/internal/model"
	"github.com/quayline/yard-ops/internal/repository"
	"github.com/quayline/yard-ops/internal/workorder"
	"github.com/quayline/yard-ops/internal/yard"
)

// YardHandler serves slot allocation and exit reclaim.  Allocation runs
// inline with the request: the allocator claims a slot in the occupancy
// index, the placement is persisted, and a work order for the physical
// move is created in one flow.  Failure to persist releases the claim so
// the index never drifts from durable state.
type YardHandler struct {
	Entries    *repository.EntryRepo
	Affinity   *repository.AffinityRepo
	Placements *repository.PlacementRepo
	Allocator  *yard.Allocator
	Index      *yard.OccupancyIndex
	Reclaimer  *yard.Reclaimer
	Scheduler  *workorder.Scheduler
	Topology   *yard.Topology
}

func NewYardHandler(entries *repository.EntryRepo, affinity *repository.AffinityRepo, placements *repository.PlacementRepo,
	alloc *yard.Allocator, index *yard.OccupancyIndex, reclaimer *yard.Reclaimer, sched *workorder.Scheduler, topo *yard.Topology) *YardHandler {
	if entries == nil || affinity == nil || placements == nil || alloc == nil || index == nil || reclaimer == nil || sched == nil {
		panic("nil dependency passed to NewYardHandler")
	}
	return &YardHandler{
		Entries:    entries,
		Affinity:   affinity,
		Placements: placements,
		Allocator:  alloc,
		Index:      index,
		Reclaimer:  reclaimer,
		Scheduler:  sched,
		Topology:   topo,
	}
}

// AllocateSlot handles POST /v1/entries/:id/allocate.  It finds a free,
// constraint-satisfying slot for the container, records the placement and
// creates the work order that moves the box there.  A request body may set
// the work order priority; it defaults to MEDIUM.  When every fallback
// tier exhausts its probe budget the entry proceeds without a placement
// and 409 is returned with the probe count so the gate flow can surface
// the condition and retry later.
func (h *YardHandler) AllocateSlot(c echo.Context) error {
	entryID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	var body struct {
		Priority string `json:"priority"`
	}
	_ = c.Bind(&body) // body is optional

	ctx := c.Request().Context()
	entry, err := h.Entries.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if entry.ExitedAt != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry already exited"})
	}
	if h.Index.GetByEntry(entryID) != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry already placed"})
	}

	size := entry.SizeClass
	if size == "" {
		if size, err = model.SizeClassFromISO(entry.ISOType); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown ISO size/type code"})
		}
	}
	companyRows, err := h.Affinity.RowsFor(ctx, entry.CompanyID, size)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load company rows"})
	}

	placement, err := h.Allocator.Allocate(entryID, size, entry.LoadStatus, entry.CompanyID, companyRows)
	if err != nil {
		var allocErr *yard.AllocationError
		if errors.As(err, &allocErr) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":  "no slot available",
				"probes": allocErr.Probes,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "allocation failed"})
	}

	// The slot is claimed in the index; persist or roll the claim back.
	if err := h.Placements.Create(ctx, placement); err != nil {
		h.Index.Release(placement.Slot)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record placement"})
	}
	wo, err := h.Scheduler.Create(ctx, entryID, placement.Slot, model.Priority(body.Priority))
	if err != nil {
		if delErr := h.Placements.DeleteByEntry(ctx, entryID); delErr == nil {
			h.Index.Release(placement.Slot)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create work order"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"slot":          placement.Slot,
		"slot_label":    placement.Slot.Label(),
		"placement_id":  placement.ID,
		"work_order_id": wo.ID,
		"sla_deadline":  wo.SLADeadline.Format(time.RFC3339),
	})
}

// ReleaseSlot handles DELETE /v1/entries/:id/slot.  It frees the entry's
// slot on exit.  Release is refused with 409 while another container rests
// on the tier above; 404 is returned when the entry holds no placement.
func (h *YardHandler) ReleaseSlot(c echo.Context) error {
	entryID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	ctx := c.Request().Context()

	placement, err := h.Reclaimer.Release(entryID)
	if err != nil {
		if errors.Is(err, yard.ErrNoPlacement) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active placement for entry"})
		}
		if errors.Is(err, yard.ErrSlotObstructed) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot obstructed by stacked container"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}

	if err := h.Placements.DeleteByEntry(ctx, entryID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		// Durable delete failed: put the claim back so index and table agree.
		h.Index.TryOccupy(placement.Slot, placement)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete placement"})
	}
	if err := h.Entries.MarkExited(ctx, entryID, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark entry exited"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"released":   placement.Slot,
		"slot_label": placement.Slot.Label(),
	})
}
