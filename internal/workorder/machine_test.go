package workorder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quayline/yard-ops/internal/model"
)

func TestCanTransitionHappyPath(t *testing.T) {
	path := []model.WorkOrderStatus{
		model.StatusPending,
		model.StatusAssigned,
		model.StatusAccepted,
		model.StatusInProgress,
		model.StatusCompleted,
		model.StatusVerified,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestCanTransitionFailedFromAnyNonTerminal(t *testing.T) {
	for _, from := range []model.WorkOrderStatus{
		model.StatusPending, model.StatusAssigned, model.StatusAccepted,
		model.StatusInProgress, model.StatusCompleted,
	} {
		assert.True(t, CanTransition(from, model.StatusFailed), "%s -> FAILED", from)
	}
}

func TestCanTransitionRejectsSkipsAndBackwards(t *testing.T) {
	cases := []struct{ from, to model.WorkOrderStatus }{
		{model.StatusPending, model.StatusAccepted},     // skips ASSIGNED
		{model.StatusPending, model.StatusCompleted},    // skips most of the graph
		{model.StatusCompleted, model.StatusAssigned},   // backwards
		{model.StatusInProgress, model.StatusAccepted},  // backwards
		{model.StatusVerified, model.StatusFailed},      // out of a terminal state
		{model.StatusFailed, model.StatusPending},       // FAILED never reopens
		{model.StatusAssigned, model.StatusAssigned},    // self-loop
	}
	for _, c := range cases {
		assert.False(t, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus(model.StatusPending))
	assert.True(t, KnownStatus(model.StatusFailed))
	assert.False(t, KnownStatus(model.WorkOrderStatus("CANCELLED")))
	assert.False(t, KnownStatus(model.WorkOrderStatus("")))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, model.StatusVerified.Terminal())
	assert.True(t, model.StatusFailed.Terminal())
	assert.False(t, model.StatusCompleted.Terminal())
	assert.False(t, model.StatusPending.Terminal())
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{OrderID: 9, From: model.StatusCompleted, To: model.StatusAssigned}
	assert.Contains(t, err.Error(), "COMPLETED")
	assert.Contains(t, err.Error(), "ASSIGNED")
}
