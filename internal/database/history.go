package database

import (
	"fmt"
	"time"
)

// Visit is one entry in the seed history.
type Visit struct {
	ID        int64
	Seed      string
	VisitedAt time.Time
}

// RecordVisit appends seed to the history and returns the new entry's ID.
func (d *Database) RecordVisit(seed string, at time.Time) (int64, error) {
	query := d.qb.BuildWithReturning(`INSERT INTO seed_history (seed, visited_at) VALUES (?, ?)`, "id")

	if !d.dialect.SupportsLastInsertID() {
		var id int64
		if err := d.db.QueryRow(query, seed, at.UnixNano()).Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to record visit: %w", err)
		}
		return id, nil
	}

	result, err := d.db.Exec(query, seed, at.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to record visit: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get visit ID: %w", err)
	}
	return id, nil
}

// RecentVisits returns up to limit visits, newest first.
func (d *Database) RecentVisits(limit int) ([]Visit, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := d.db.Query(d.qb.Build(`
		SELECT id, seed, visited_at FROM seed_history
		ORDER BY id DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var visitedAt int64
		if err := rows.Scan(&v.ID, &v.Seed, &visitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.VisitedAt = time.Unix(0, visitedAt)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// PruneHistory keeps only the newest keep visits and returns how many were deleted.
func (d *Database) PruneHistory(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := d.db.Exec(d.qb.Build(`
		DELETE FROM seed_history WHERE id NOT IN (
			SELECT id FROM seed_history ORDER BY id DESC LIMIT ?
		)`), keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return n, nil
}
