package model

import "time"

// User is a staff account as stored in the `users` table.  Accounts belong
// to terminal staff only — customers interact through the portal/bot
// services, which authenticate separately.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – OPERATOR, SUPERVISOR or ADMIN.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Staff roles.  OPERATOR drives vehicles and works orders, SUPERVISOR may
// additionally verify completed moves, ADMIN manages accounts and vehicle
// assignment.
const (
	RoleOperator   = "OPERATOR"
	RoleSupervisor = "SUPERVISOR"
	RoleAdmin      = "ADMIN"
)
