package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quayline/yard-ops/internal/model"
)

// VehicleRepo reads the externally maintained fleet table.  This service
// never writes vehicles; it only needs availability for assignment.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo returns a VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// NextAvailable returns the lowest-numbered active vehicle that is not
// currently bound to an open work order, or nil when the whole fleet is
// busy.  Implements workorder.VehicleSource.
func (r *VehicleRepo) NextAvailable(ctx context.Context) (*model.Vehicle, error) {
	const q = `SELECT v.id, v.callsign, v.operator_id, v.is_active, v.created_at
	           FROM vehicles v
	           WHERE v.is_active = 1
	             AND NOT EXISTS (
	               SELECT 1 FROM work_orders w
	               WHERE w.vehicle_id = v.id AND w.status NOT IN (?, ?)
	             )
	           ORDER BY v.id
	           LIMIT 1`
	var v model.Vehicle
	err := r.db.QueryRowContext(ctx, q, model.StatusVerified, model.StatusFailed).
		Scan(&v.ID, &v.Callsign, &v.OperatorID, &v.IsActive, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
