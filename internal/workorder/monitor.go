package workorder

import (
	"context"
	"log"
	"time"

	"github.com/quayline/yard-ops/internal/model"
)

// Monitor periodically scans for work orders whose SLA deadline has passed
// while still in a non-terminal state.  The scan is read-only: a breach is
// advisory and never forces a transition.  Each breach is handed to the
// publish callback (RabbitMQ in production); publish failures are logged
// and do not stop the monitor.
type Monitor struct {
	store   Store
	every   time.Duration
	publish func(ctx context.Context, wo model.WorkOrder) error
	now     func() time.Time
}

// NewMonitor builds a monitor that scans on the given cadence.  A zero
// cadence defaults to one minute.  publish may be nil, in which case
// breaches are only logged.
func NewMonitor(store Store, every time.Duration, publish func(ctx context.Context, wo model.WorkOrder) error) *Monitor {
	if every <= 0 {
		every = time.Minute
	}
	return &Monitor{store: store, every: every, publish: publish, now: time.Now}
}

// Run blocks, scanning on each tick until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := m.Scan(ctx); err != nil {
				log.Printf("sla-monitor: scan failed: %v", err)
			}
		}
	}
}

// Scan performs a single pass and returns the number of breached orders
// found.  Exposed separately so tests and admin tooling can trigger it.
func (m *Monitor) Scan(ctx context.Context) (int, error) {
	now := m.now().UTC()
	breached, err := m.store.ListBreached(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, wo := range breached {
		log.Printf("sla-monitor: work order %d (%s) breached deadline by %d min",
			wo.ID, wo.Status, -wo.TimeRemainingMinutes(now))
		if m.publish == nil {
			continue
		}
		if err := m.publish(ctx, wo); err != nil {
			log.Printf("sla-monitor: publish breach for order %d failed: %v", wo.ID, err)
		}
	}
	return len(breached), nil
}
