package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quayline/yard-ops/internal/model"
)

// EntryRepo reads container entries written by the gate/ANPR system.  The
// only column this service touches is exited_at, stamped when the exit
// reclaim succeeds.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns an EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

// GetByID loads a container entry.
func (r *EntryRepo) GetByID(ctx context.Context, id uint64) (*model.ContainerEntry, error) {
	const q = `SELECT id, container_no, iso_type, size_class, load_status, company_id, entered_at, exited_at
	           FROM container_entries WHERE id = ?`
	var e model.ContainerEntry
	var exited sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.ContainerNo, &e.ISOType, &e.SizeClass, &e.LoadStatus,
		&e.CompanyID, &e.EnteredAt, &exited)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if exited.Valid {
		t := exited.Time
		e.ExitedAt = &t
	}
	return &e, nil
}

// MarkExited stamps exited_at once; an entry that already exited is not
// updated again.
func (r *EntryRepo) MarkExited(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE container_entries SET exited_at = ? WHERE id = ? AND exited_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	return err
}
