package model

import "time"

// Vehicle is a yard machine (reach stacker, terminal tractor) from the
// externally maintained fleet table.  This service only reads availability;
// fleet management lives elsewhere.
type Vehicle struct {
	ID         uint64    // vehicles.id
	Callsign   string    // vehicles.callsign
	OperatorID uint64    // vehicles.operator_id
	IsActive   bool      // vehicles.is_active
	CreatedAt  time.Time // vehicles.created_at
}
