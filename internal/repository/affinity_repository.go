package repository

import (
	"context"
	"database/sql"

	"github.com/quayline/yard-ops/internal/model"
)

// AffinityRepo reads the company_rows table: the externally assigned
// preference list that clusters a company's containers into rows.  The
// assignment policy (by company size tier) lives outside this service;
// the allocator treats the list as read-only input.
type AffinityRepo struct {
	db *sql.DB
}

// NewAffinityRepo returns an AffinityRepo bound to the given database.
func NewAffinityRepo(db *sql.DB) *AffinityRepo { return &AffinityRepo{db: db} }

// RowsFor returns the company's preferred row numbers for a size class in
// rank order.  Companies without assigned rows get an empty slice, which
// sends the allocator straight to the fallback tiers.
func (r *AffinityRepo) RowsFor(ctx context.Context, companyID uint64, size model.SizeClass) ([]uint32, error) {
	// `rank` is reserved in MySQL 8, hence the backticks.
	const q = "SELECT row_no FROM company_rows " +
		"WHERE company_id = ? AND size_class = ? " +
		"ORDER BY `rank`, row_no"
	rows, err := r.db.QueryContext(ctx, q, companyID, size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]uint32, 0, 4)
	for rows.Next() {
		var n uint32
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
