package workorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quayline/yard-ops/internal/model"
)

func seedOrder(t *testing.T, store *fakeStore, status model.WorkOrderStatus, deadline time.Time) uint64 {
	t.Helper()
	wo := &model.WorkOrder{
		EntryID:     1,
		Priority:    model.PriorityMedium,
		Status:      status,
		TargetSlot:  targetSlot(),
		CreatedAt:   deadline.Add(-time.Hour),
		SLADeadline: deadline,
	}
	require.NoError(t, store.Create(context.Background(), wo))
	return wo.ID
}

func TestScanReportsOnlyOverdueNonTerminalOrders(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	overdueID := seedOrder(t, store, model.StatusInProgress, now.Add(-10*time.Minute))
	seedOrder(t, store, model.StatusAccepted, now.Add(30*time.Minute))     // still inside the window
	seedOrder(t, store, model.StatusVerified, now.Add(-2*time.Hour))      // terminal, never a breach
	seedOrder(t, store, model.StatusFailed, now.Add(-2*time.Hour))        // terminal, never a breach

	var published []model.WorkOrder
	m := NewMonitor(store, time.Minute, func(_ context.Context, wo model.WorkOrder) error {
		published = append(published, wo)
		return nil
	})
	m.now = func() time.Time { return now }

	n, err := m.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, published, 1)
	assert.Equal(t, overdueID, published[0].ID)
}

func TestScanIsReadOnly(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := seedOrder(t, store, model.StatusPending, now.Add(-time.Hour))

	m := NewMonitor(store, time.Minute, nil)
	m.now = func() time.Time { return now }

	_, err := m.Scan(context.Background())
	require.NoError(t, err)

	cur, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, cur.Status, "a breach is advisory and never forces a transition")
}

func TestScanSurvivesPublishFailure(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, model.StatusAssigned, now.Add(-5*time.Minute))
	seedOrder(t, store, model.StatusAccepted, now.Add(-5*time.Minute))

	calls := 0
	m := NewMonitor(store, time.Minute, func(_ context.Context, _ model.WorkOrder) error {
		calls++
		return errors.New("broker down")
	})
	m.now = func() time.Time { return now }

	n, err := m.Scan(context.Background())
	require.NoError(t, err, "publish failures are logged, not returned")
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, calls)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := newFakeStore()
	m := NewMonitor(store, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after context cancellation")
	}
}
