package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quayline/yard-ops/internal/model"
	"github.com/quayline/yard-ops/internal/queue"
	"github.com/quayline/yard-ops/internal/repository"
	queue_publisher "github.com/quayline/yard-ops/internal/service"
	"github.com/quayline/yard-ops/internal/workorder"
	"github.com/quayline/yard-ops/internal/yard"
)

// WorkOrderHandler serves the work-order lifecycle: creation, vehicle
// assignment, status transitions and the advisory SLA query.  Transition
// validation and atomicity live in the workorder package; the handler
// translates its typed errors into HTTP responses and triggers the side
// effects of COMPLETED (placement confirmation) and VERIFIED (event
// publishing).
type WorkOrderHandler struct {
	Scheduler  *workorder.Scheduler
	Store      workorder.Store
	Entries    *repository.EntryRepo
	Placements *repository.PlacementRepo
	Index      *yard.OccupancyIndex
}

func NewWorkOrderHandler(sched *workorder.Scheduler, store workorder.Store, entries *repository.EntryRepo,
	placements *repository.PlacementRepo, index *yard.OccupancyIndex) *WorkOrderHandler {
	if sched == nil || store == nil || entries == nil || placements == nil || index == nil {
		panic("nil dependency passed to NewWorkOrderHandler")
	}
	return &WorkOrderHandler{Scheduler: sched, Store: store, Entries: entries, Placements: placements, Index: index}
}

// Create handles POST /v1/work-orders.  It issues a new order for an entry
// that already holds a placement — the path used to retry after a FAILED
// order, since FAILED is terminal and never reopened.
func (h *WorkOrderHandler) Create(c echo.Context) error {
	var body struct {
		EntryID  uint64 `json:"entry_id"`
		Priority string `json:"priority"`
	}
	if err := c.Bind(&body); err != nil || body.EntryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "entry_id is required"})
	}
	placement := h.Index.GetByEntry(body.EntryID)
	if placement == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry has no active placement"})
	}
	wo, err := h.Scheduler.Create(c.Request().Context(), body.EntryID, placement.Slot, model.Priority(body.Priority))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create work order"})
	}
	return c.JSON(http.StatusCreated, workOrderResp(wo))
}

// Assign handles POST /v1/work-orders/:id/assign.  The scheduler binds the
// next available vehicle; 409 is returned when the fleet is exhausted or
// the order already left PENDING.
func (h *WorkOrderHandler) Assign(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid work order id"})
	}
	wo, err := h.Scheduler.Assign(c.Request().Context(), id)
	if err != nil {
		return h.transitionError(c, err)
	}
	return c.JSON(http.StatusOK, workOrderResp(wo))
}

// Transition handles POST /v1/work-orders/:id/transition.  The body names
// the target state; the actor is taken from the authenticated user.  Moving
// to VERIFIED requires the SUPERVISOR or ADMIN role.  An unreachable
// target yields 409 with the order left untouched.
func (h *WorkOrderHandler) Transition(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid work order id"})
	}
	var body struct {
		Target string `json:"target"`
	}
	if err := c.Bind(&body); err != nil || body.Target == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target is required"})
	}
	target := model.WorkOrderStatus(strings.ToUpper(strings.TrimSpace(body.Target)))
	if !workorder.KnownStatus(target) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown target state"})
	}
	role := getRole(c)
	if target == model.StatusVerified && role != model.RoleSupervisor && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "verification requires supervisor"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := c.Request().Context()
	wo, err := h.Scheduler.Transition(ctx, id, target, fmt.Sprintf("user:%d", uid))
	if err != nil {
		return h.transitionError(c, err)
	}

	switch target {
	case model.StatusCompleted:
		// The physical move is done; stamp the placement as confirmed.
		if err := h.Placements.Confirm(ctx, wo.EntryID, time.Now().UTC()); err != nil {
			log.Printf("work-order: confirm placement for entry %d failed: %v", wo.EntryID, err)
		}
	case model.StatusVerified:
		h.publishVerified(c, wo)
	}
	return c.JSON(http.StatusOK, workOrderResp(wo))
}

// Get handles GET /v1/work-orders/:id.
func (h *WorkOrderHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid work order id"})
	}
	wo, err := h.Store.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, workOrderResp(wo))
}

// List handles GET /v1/work-orders?status=PENDING.
func (h *WorkOrderHandler) List(c echo.Context) error {
	status := model.WorkOrderStatus(strings.ToUpper(c.QueryParam("status")))
	if !workorder.KnownStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status query parameter is required"})
	}
	orders, err := h.Store.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]echo.Map, 0, len(orders))
	for i := range orders {
		items = append(items, workOrderResp(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// TimeRemaining handles GET /v1/work-orders/:id/time-remaining.  The value
// is derived from the fixed SLA deadline and may be negative; a breach is
// advisory and never changes the order's status.
func (h *WorkOrderHandler) TimeRemaining(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid work order id"})
	}
	minutes, err := h.Scheduler.TimeRemaining(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"work_order_id":          id,
		"time_remaining_minutes": minutes,
		"breached":               minutes < 0,
	})
}

// transitionError maps scheduler errors onto HTTP responses.
func (h *WorkOrderHandler) transitionError(c echo.Context, err error) error {
	var invalid *workorder.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid transition",
			"from":  invalid.From,
			"to":    invalid.To,
		})
	case errors.Is(err, workorder.ErrNoVehicleAvailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no vehicle available"})
	case errors.Is(err, workorder.ErrVehicleRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "use the assign endpoint to bind a vehicle"})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, workorder.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
}

// publishVerified emits the workorder.verified event.  Publishing is best
// effort: a broker outage must not fail the verification response.
func (h *WorkOrderHandler) publishVerified(c echo.Context, wo *model.WorkOrder) {
	ctx := c.Request().Context()
	containerNo := ""
	if entry, err := h.Entries.GetByID(ctx, wo.EntryID); err == nil {
		containerNo = entry.ContainerNo
	}
	verifiedAt := time.Now().UTC()
	if wo.VerifiedAt != nil {
		verifiedAt = *wo.VerifiedAt
	}
	ev := queue.WorkOrderVerifiedEvent{
		WorkOrderID: wo.ID,
		EntryID:     wo.EntryID,
		ContainerNo: containerNo,
		Slot:        wo.TargetSlot.Label(),
		Priority:    string(wo.Priority),
		CreatedAt:   wo.CreatedAt.Format(time.RFC3339),
		VerifiedAt:  verifiedAt.Format(time.RFC3339),
		SLAMet:      !verifiedAt.After(wo.SLADeadline),
	}
	if err := queue_publisher.PublishWorkOrderVerified(ctx, ev); err != nil {
		log.Printf("work-order: publish verified event for order %d failed: %v", wo.ID, err)
	}
}

// workOrderResp shapes a work order for JSON responses.  Milestone
// timestamps are included only once set.
func workOrderResp(wo *model.WorkOrder) echo.Map {
	m := echo.Map{
		"id":           wo.ID,
		"entry_id":     wo.EntryID,
		"priority":     wo.Priority,
		"status":       wo.Status,
		"target_slot":  wo.TargetSlot,
		"slot_label":   wo.TargetSlot.Label(),
		"created_at":   wo.CreatedAt.Format(time.RFC3339),
		"sla_deadline": wo.SLADeadline.Format(time.RFC3339),
	}
	if wo.VehicleID != nil {
		m["vehicle_id"] = *wo.VehicleID
	}
	if wo.FailedBy != "" {
		m["failed_by"] = wo.FailedBy
	}
	for _, ts := range []struct {
		key string
		val *time.Time
	}{
		{"assigned_at", wo.AssignedAt},
		{"accepted_at", wo.AcceptedAt},
		{"started_at", wo.StartedAt},
		{"completed_at", wo.CompletedAt},
		{"verified_at", wo.VerifiedAt},
		{"failed_at", wo.FailedAt},
	} {
		if ts.val != nil {
			m[ts.key] = ts.val.Format(time.RFC3339)
		}
	}
	return m
}
