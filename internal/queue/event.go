// Package queue defines message payloads exchanged over the message broker.
package queue

// WorkOrderVerifiedEvent is published when a supervisor verifies a
// completed move.  It carries enough for billing and reporting consumers
// to act without querying the primary database.
type WorkOrderVerifiedEvent struct {
	WorkOrderID uint64 `json:"work_order_id"`
	EntryID     uint64 `json:"entry_id"`
	ContainerNo string `json:"container_no"`
	Slot        string `json:"slot"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
	VerifiedAt  string `json:"verified_at"`
	SLAMet      bool   `json:"sla_met"`
}

// SLABreachEvent is the advisory alert emitted by the SLA monitor for a
// non-terminal work order past its deadline.  It never implies a status
// change.
type SLABreachEvent struct {
	WorkOrderID    uint64 `json:"work_order_id"`
	EntryID        uint64 `json:"entry_id"`
	Status         string `json:"status"`
	Slot           string `json:"slot"`
	SLADeadline    string `json:"sla_deadline"`
	OverdueMinutes int    `json:"overdue_minutes"`
}
