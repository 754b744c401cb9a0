package workorder

import (
	"context"
	"errors"
	"time"

	"github.com/quayline/yard-ops/internal/model"
)

// Store is the durable work-order record store.  Transition and Assign are
// compare-and-swap on the current status: they return false, without
// mutating anything, when the row was no longer in the expected status.
// The MySQL implementation lives in internal/repository; tests use an
// in-memory fake with the same semantics.
type Store interface {
	Create(ctx context.Context, wo *model.WorkOrder) error
	GetByID(ctx context.Context, id uint64) (*model.WorkOrder, error)
	ListByStatus(ctx context.Context, status model.WorkOrderStatus) ([]model.WorkOrder, error)
	Assign(ctx context.Context, id uint64, vehicleID uint64, at time.Time) (bool, error)
	Transition(ctx context.Context, id uint64, from, to model.WorkOrderStatus, at time.Time, actor string) (bool, error)
	ListBreached(ctx context.Context, now time.Time) ([]model.WorkOrder, error)
}

// VehicleSource yields the next available yard vehicle.  The fleet table is
// maintained externally; this service only reads availability.
type VehicleSource interface {
	NextAvailable(ctx context.Context) (*model.Vehicle, error)
}

// ErrOrderNotFound is returned for operations referencing an unknown work
// order.
var ErrOrderNotFound = errors.New("work order not found")

// ErrNoVehicleAvailable is returned when assignment finds no free active
// vehicle.  The order stays PENDING and assignment can be retried.
var ErrNoVehicleAvailable = errors.New("no vehicle available")

// ErrVehicleRequired is returned when a generic transition request targets
// ASSIGNED; vehicle binding must go through Assign.
var ErrVehicleRequired = errors.New("transition to ASSIGNED requires a vehicle; use assign")

// Scheduler creates work orders, binds vehicles and drives status
// transitions.  The SLA deadline is fixed at creation time and never
// recomputed.
type Scheduler struct {
	store  Store
	fleet  VehicleSource
	window time.Duration
	now    func() time.Time
}

// NewScheduler builds a scheduler with the given SLA window.  A zero
// window defaults to 60 minutes.
func NewScheduler(store Store, fleet VehicleSource, window time.Duration) *Scheduler {
	if window <= 0 {
		window = 60 * time.Minute
	}
	return &Scheduler{store: store, fleet: fleet, window: window, now: time.Now}
}

// Create records a new PENDING work order for moving the entry's container
// to the target slot.  The SLA deadline is created_at plus the fixed
// window.
func (s *Scheduler) Create(ctx context.Context, entryID uint64, target model.SlotIdentity, priority model.Priority) (*model.WorkOrder, error) {
	if !model.ValidPriority(priority) {
		priority = model.PriorityMedium
	}
	now := s.now().UTC()
	wo := &model.WorkOrder{
		EntryID:     entryID,
		Priority:    priority,
		Status:      model.StatusPending,
		TargetSlot:  target,
		CreatedAt:   now,
		SLADeadline: now.Add(s.window),
	}
	if err := s.store.Create(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

// Assign binds the next available vehicle to a PENDING order and moves it
// to ASSIGNED.  When the CAS loses (the order already left PENDING), the
// current state is reloaded and returned inside InvalidTransitionError.
func (s *Scheduler) Assign(ctx context.Context, orderID uint64) (*model.WorkOrder, error) {
	wo, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(wo.Status, model.StatusAssigned) {
		return nil, &InvalidTransitionError{OrderID: orderID, From: wo.Status, To: model.StatusAssigned}
	}
	v, err := s.fleet.NextAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNoVehicleAvailable
	}
	ok, err := s.store.Assign(ctx, orderID, v.ID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.raceError(ctx, orderID, model.StatusAssigned)
	}
	return s.store.GetByID(ctx, orderID)
}

// Transition moves the order to the target status, stamping the milestone
// timestamp exactly once.  Unreachable targets yield InvalidTransitionError
// and leave the order untouched.  Two concurrent requests on the same order
// resolve to exactly one success: the loser's CAS fails and it receives
// InvalidTransitionError built from the fresh status.
func (s *Scheduler) Transition(ctx context.Context, orderID uint64, target model.WorkOrderStatus, actor string) (*model.WorkOrder, error) {
	wo, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(wo.Status, target) {
		return nil, &InvalidTransitionError{OrderID: orderID, From: wo.Status, To: target}
	}
	if target == model.StatusAssigned {
		return nil, ErrVehicleRequired
	}
	ok, err := s.store.Transition(ctx, orderID, wo.Status, target, s.now().UTC(), actor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.raceError(ctx, orderID, target)
	}
	return s.store.GetByID(ctx, orderID)
}

// TimeRemaining returns whole minutes until the order's SLA deadline;
// negative when breached.
func (s *Scheduler) TimeRemaining(ctx context.Context, orderID uint64) (int, error) {
	wo, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return wo.TimeRemainingMinutes(s.now().UTC()), nil
}

// raceError rebuilds an InvalidTransitionError after a lost CAS, using the
// status the winner left behind.
func (s *Scheduler) raceError(ctx context.Context, orderID uint64, target model.WorkOrderStatus) error {
	cur, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return &InvalidTransitionError{OrderID: orderID, From: cur.Status, To: target}
}
