package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/quayline/yard-ops/internal/model"
)

// WorkOrderRepo persists work orders.  Rows are append-only audit records:
// they are created once and only advanced by the compare-and-swap updates
// below; nothing ever deletes or backdates them.  It implements
// workorder.Store.
type WorkOrderRepo struct {
	db *sql.DB
}

// NewWorkOrderRepo returns a WorkOrderRepo bound to the given database.
func NewWorkOrderRepo(db *sql.DB) *WorkOrderRepo { return &WorkOrderRepo{db: db} }

const workOrderColumns = `id, entry_id, priority, status,
       zone, row_no, bay, tier, sub_slot, vehicle_id, failed_by,
       created_at, assigned_at, accepted_at, started_at, completed_at, verified_at, failed_at,
       sla_deadline`

// Create inserts a new work order and populates its generated ID.
func (r *WorkOrderRepo) Create(ctx context.Context, wo *model.WorkOrder) error {
	const q = `INSERT INTO work_orders
	           (entry_id, priority, status, zone, row_no, bay, tier, sub_slot, created_at, sla_deadline)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		wo.EntryID, wo.Priority, wo.Status,
		wo.TargetSlot.Zone, wo.TargetSlot.Row, wo.TargetSlot.Bay, wo.TargetSlot.Tier, wo.TargetSlot.SubSlot,
		wo.CreatedAt.UTC(), wo.SLADeadline.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	wo.ID = uint64(id)
	return nil
}

// GetByID loads a single work order.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id uint64) (*model.WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = ?`
	wo, err := scanWorkOrder(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return wo, err
}

// ListByStatus returns all orders in the given status, oldest first.
func (r *WorkOrderRepo) ListByStatus(ctx context.Context, status model.WorkOrderStatus) ([]model.WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE status = ? ORDER BY created_at, id`
	return r.list(ctx, q, status)
}

// Assign is the PENDING→ASSIGNED compare-and-swap: it binds the vehicle
// and stamps assigned_at only if the row is still PENDING.  The boolean
// result reports whether this caller won.
func (r *WorkOrderRepo) Assign(ctx context.Context, id uint64, vehicleID uint64, at time.Time) (bool, error) {
	const q = `UPDATE work_orders
	           SET status = ?, vehicle_id = ?, assigned_at = ?
	           WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.StatusAssigned, vehicleID, at.UTC(), id, model.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// Transition is the generic compare-and-swap: the row moves from `from` to
// `to` and the milestone column for `to` is stamped, all guarded by
// `WHERE status = from` so concurrent callers resolve to exactly one
// winner.  The graph itself is validated by the caller; this method only
// guarantees atomicity.
func (r *WorkOrderRepo) Transition(ctx context.Context, id uint64, from, to model.WorkOrderStatus, at time.Time, actor string) (bool, error) {
	col, err := stampColumn(to)
	if err != nil {
		return false, err
	}
	var res sql.Result
	if to == model.StatusFailed {
		q := `UPDATE work_orders SET status = ?, ` + col + ` = ?, failed_by = ? WHERE id = ? AND status = ?`
		res, err = r.db.ExecContext(ctx, q, to, at.UTC(), actor, id, from)
	} else {
		q := `UPDATE work_orders SET status = ?, ` + col + ` = ? WHERE id = ? AND status = ?`
		res, err = r.db.ExecContext(ctx, q, to, at.UTC(), id, from)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListBreached returns non-terminal orders whose SLA deadline lies before
// the given instant.  The query is read-only; breaches never mutate state.
func (r *WorkOrderRepo) ListBreached(ctx context.Context, now time.Time) ([]model.WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders
	      WHERE status NOT IN (?, ?) AND sla_deadline < ?
	      ORDER BY sla_deadline`
	return r.list(ctx, q, model.StatusVerified, model.StatusFailed, now.UTC())
}

func (r *WorkOrderRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.WorkOrder, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wo)
	}
	return out, rows.Err()
}

// stampColumn maps a target status to the timestamp column its transition
// sets.  PENDING has no column: created_at is written at insert time.
func stampColumn(to model.WorkOrderStatus) (string, error) {
	switch to {
	case model.StatusAssigned:
		return "assigned_at", nil
	case model.StatusAccepted:
		return "accepted_at", nil
	case model.StatusInProgress:
		return "started_at", nil
	case model.StatusCompleted:
		return "completed_at", nil
	case model.StatusVerified:
		return "verified_at", nil
	case model.StatusFailed:
		return "failed_at", nil
	}
	return "", fmt.Errorf("no timestamp column for status %s", to)
}

func scanWorkOrder(s rowScanner) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	var vehicleID sql.NullInt64
	var failedBy sql.NullString
	var assigned, accepted, started, completed, verified, failed sql.NullTime
	err := s.Scan(&wo.ID, &wo.EntryID, &wo.Priority, &wo.Status,
		&wo.TargetSlot.Zone, &wo.TargetSlot.Row, &wo.TargetSlot.Bay, &wo.TargetSlot.Tier, &wo.TargetSlot.SubSlot,
		&vehicleID, &failedBy,
		&wo.CreatedAt, &assigned, &accepted, &started, &completed, &verified, &failed,
		&wo.SLADeadline)
	if err != nil {
		return nil, err
	}
	if vehicleID.Valid {
		v := uint64(vehicleID.Int64)
		wo.VehicleID = &v
	}
	if failedBy.Valid {
		wo.FailedBy = failedBy.String
	}
	wo.AssignedAt = nullableTime(assigned)
	wo.AcceptedAt = nullableTime(accepted)
	wo.StartedAt = nullableTime(started)
	wo.CompletedAt = nullableTime(completed)
	wo.VerifiedAt = nullableTime(verified)
	wo.FailedAt = nullableTime(failed)
	return &wo, nil
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
