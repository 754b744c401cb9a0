package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/quayline/yard-ops/internal/model"
)

// PlacementRepo persists placements.  The table carries a unique key over
// (zone, row_no, bay, tier, sub_slot), so even if the in-memory occupancy
// index were bypassed the database would refuse a double booking.  All
// timestamps are stored in UTC.
type PlacementRepo struct {
	db *sql.DB
}

// NewPlacementRepo returns a PlacementRepo bound to the given database.
func NewPlacementRepo(db *sql.DB) *PlacementRepo { return &PlacementRepo{db: db} }

// Create inserts a placement and populates its generated ID.  A collision
// on the slot unique key is reported as ErrConflict.
func (r *PlacementRepo) Create(ctx context.Context, p *model.Placement) error {
	const q = `INSERT INTO placements
	           (entry_id, zone, row_no, bay, tier, sub_slot, size_class, load_status, placed_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.EntryID, p.Slot.Zone, p.Slot.Row, p.Slot.Bay, p.Slot.Tier, p.Slot.SubSlot,
		p.SizeClass, p.LoadStatus, p.PlacedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByEntry returns the active placement for a container entry.
func (r *PlacementRepo) GetByEntry(ctx context.Context, entryID uint64) (*model.Placement, error) {
	const q = `SELECT id, entry_id, zone, row_no, bay, tier, sub_slot, size_class, load_status, placed_at, confirmed_at
	           FROM placements WHERE entry_id = ?`
	p, err := scanPlacement(r.db.QueryRowContext(ctx, q, entryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// Confirm stamps confirmed_at for the entry's placement once the physical
// move completed.  Already-confirmed placements are left untouched.
func (r *PlacementRepo) Confirm(ctx context.Context, entryID uint64, at time.Time) error {
	const q = `UPDATE placements SET confirmed_at = ? WHERE entry_id = ? AND confirmed_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, at.UTC(), entryID)
	return err
}

// DeleteByEntry removes the entry's placement row on exit.  It returns
// ErrNotFound when no placement existed.
func (r *PlacementRepo) DeleteByEntry(ctx context.Context, entryID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM placements WHERE entry_id = ?`, entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns every placement, used to rebuild the occupancy index
// at startup.
func (r *PlacementRepo) ListActive(ctx context.Context) ([]model.Placement, error) {
	const q = `SELECT id, entry_id, zone, row_no, bay, tier, sub_slot, size_class, load_status, placed_at, confirmed_at
	           FROM placements ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlacement(s rowScanner) (*model.Placement, error) {
	var p model.Placement
	var confirmed sql.NullTime
	err := s.Scan(&p.ID, &p.EntryID,
		&p.Slot.Zone, &p.Slot.Row, &p.Slot.Bay, &p.Slot.Tier, &p.Slot.SubSlot,
		&p.SizeClass, &p.LoadStatus, &p.PlacedAt, &confirmed)
	if err != nil {
		return nil, err
	}
	if confirmed.Valid {
		t := confirmed.Time
		p.ConfirmedAt = &t
	}
	return &p, nil
}
