package model

import "time"

// WorkOrderStatus enumerates the states of the physical-move lifecycle.
// The transition graph is owned by the workorder package; this file only
// names the states.
type WorkOrderStatus string

const (
	StatusPending    WorkOrderStatus = "PENDING"
	StatusAssigned   WorkOrderStatus = "ASSIGNED"
	StatusAccepted   WorkOrderStatus = "ACCEPTED"
	StatusInProgress WorkOrderStatus = "IN_PROGRESS"
	StatusCompleted  WorkOrderStatus = "COMPLETED"
	StatusVerified   WorkOrderStatus = "VERIFIED"
	StatusFailed     WorkOrderStatus = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s WorkOrderStatus) Terminal() bool {
	return s == StatusVerified || s == StatusFailed
}

// Priority of a work order.  Priorities do not affect the state machine;
// they order dispatch queues on operator devices.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ValidPriority reports whether p is one of the four known priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WorkOrder is the append-only audit record of one physical container move.
// Each milestone timestamp is set exactly once, by the transition that
// enters the corresponding state, and is never recomputed or backdated.
//
// Fields:
//  ID          – primary key identifier.
//  EntryID     – container entry being moved.
//  Priority    – dispatch priority (LOW/MEDIUM/HIGH/URGENT).
//  Status      – current state in the transition graph.
//  TargetSlot  – slot the container is being moved to.
//  VehicleID   – assigned yard vehicle, nil until ASSIGNED.
//  FailedBy    – actor who declared failure, empty unless FAILED.
//  CreatedAt   – creation timestamp; anchors the SLA deadline.
//  AssignedAt  – set by PENDING→ASSIGNED.
//  AcceptedAt  – set by ASSIGNED→ACCEPTED.
//  StartedAt   – set by ACCEPTED→IN_PROGRESS.
//  CompletedAt – set by IN_PROGRESS→COMPLETED.
//  VerifiedAt  – set by COMPLETED→VERIFIED.
//  FailedAt    – set by the transition into FAILED.
//  SLADeadline – CreatedAt + fixed window, computed once at creation.
type WorkOrder struct {
	ID          uint64          // work_orders.id
	EntryID     uint64          // work_orders.entry_id
	Priority    Priority        // work_orders.priority
	Status      WorkOrderStatus // work_orders.status
	TargetSlot  SlotIdentity    // work_orders.zone/row/bay/tier/sub_slot
	VehicleID   *uint64         // work_orders.vehicle_id (nullable)
	FailedBy    string          // work_orders.failed_by
	CreatedAt   time.Time       // work_orders.created_at
	AssignedAt  *time.Time      // work_orders.assigned_at
	AcceptedAt  *time.Time      // work_orders.accepted_at
	StartedAt   *time.Time      // work_orders.started_at
	CompletedAt *time.Time      // work_orders.completed_at
	VerifiedAt  *time.Time      // work_orders.verified_at
	FailedAt    *time.Time      // work_orders.failed_at
	SLADeadline time.Time       // work_orders.sla_deadline
}

// TimeRemainingMinutes returns whole minutes until the SLA deadline as seen
// at the given instant.  Negative values mean the deadline has passed.  The
// value is derived, never persisted.
func (w *WorkOrder) TimeRemainingMinutes(now time.Time) int {
	return int(w.SLADeadline.Sub(now).Minutes())
}

// Breached reports whether the order is past its deadline while still in a
// non-terminal state.  Breach is advisory: it never forces a transition.
func (w *WorkOrder) Breached(now time.Time) bool {
	return !w.Status.Terminal() && now.After(w.SLADeadline)
}
