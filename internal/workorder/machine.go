// Package workorder owns the work-order lifecycle: the transition graph,
// the scheduler that creates and advances orders, and the advisory SLA
// monitor.
package workorder

import (
	"fmt"

	"github.com/quayline/yard-ops/internal/model"
)

// transitions is the directed graph of allowed status changes.  FAILED is
// reachable from every non-terminal state; VERIFIED and FAILED are
// terminal.
var transitions = map[model.WorkOrderStatus][]model.WorkOrderStatus{
	model.StatusPending:    {model.StatusAssigned, model.StatusFailed},
	model.StatusAssigned:   {model.StatusAccepted, model.StatusFailed},
	model.StatusAccepted:   {model.StatusInProgress, model.StatusFailed},
	model.StatusInProgress: {model.StatusCompleted, model.StatusFailed},
	model.StatusCompleted:  {model.StatusVerified, model.StatusFailed},
	model.StatusVerified:   nil,
	model.StatusFailed:     nil,
}

// CanTransition reports whether the graph allows moving from one status to
// another.
func CanTransition(from, to model.WorkOrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s names a state of the graph at all.
func KnownStatus(s model.WorkOrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

// InvalidTransitionError rejects a transition request whose target is not
// reachable from the order's current status.  The order is left unchanged.
type InvalidTransitionError struct {
	OrderID uint64
	From    model.WorkOrderStatus
	To      model.WorkOrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("work order %d: cannot transition %s -> %s", e.OrderID, e.From, e.To)
}
