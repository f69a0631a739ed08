package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/shipyard/internal/ship"
)

// ShipRecord is a catalogued ship. Snapshot holds the JSON-encoded ship.Snapshot.
type ShipRecord struct {
	Seed          string
	Fingerprint   string
	TotalMass     float64
	TotalLength   float64
	ThrusterCount int
	PodShape      string
	DeckShape     string
	Snapshot      []byte
	GeneratedAt   time.Time
}

// NewShipRecord flattens a snapshot into a catalog row.
func NewShipRecord(snap ship.Snapshot, at time.Time) (*ShipRecord, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return &ShipRecord{
		Seed:          snap.Seed,
		Fingerprint:   snap.Fingerprint,
		TotalMass:     snap.Budget.Total,
		TotalLength:   snap.TotalLength,
		ThrusterCount: snap.Thrusters.Count,
		PodShape:      string(snap.Cargo.PodShape),
		DeckShape:     string(snap.Deck.Shape),
		Snapshot:      data,
		GeneratedAt:   at,
	}, nil
}

// DecodeSnapshot unmarshals the stored snapshot.
func (r *ShipRecord) DecodeSnapshot() (ship.Snapshot, error) {
	var snap ship.Snapshot
	if err := json.Unmarshal(r.Snapshot, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode snapshot for %q: %w", r.Seed, err)
	}
	return snap, nil
}

// SaveShip inserts a ship or replaces the existing row for its seed.
func (d *Database) SaveShip(rec *ShipRecord) error {
	query := d.qb.Build(`
		INSERT INTO ships (seed, fingerprint, total_mass, total_length, thruster_count, pod_shape, deck_shape, snapshot, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (seed) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			total_mass = excluded.total_mass,
			total_length = excluded.total_length,
			thruster_count = excluded.thruster_count,
			pod_shape = excluded.pod_shape,
			deck_shape = excluded.deck_shape,
			snapshot = excluded.snapshot,
			generated_at = excluded.generated_at`)

	_, err := d.db.Exec(query,
		rec.Seed, rec.Fingerprint, rec.TotalMass, rec.TotalLength, rec.ThrusterCount,
		rec.PodShape, rec.DeckShape, string(rec.Snapshot), rec.GeneratedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save ship: %w", err)
	}
	return nil
}

// GetShip returns the catalogued ship for seed, or nil if it has never been saved.
func (d *Database) GetShip(seed string) (*ShipRecord, error) {
	row := d.db.QueryRow(d.qb.Build(`
		SELECT seed, fingerprint, total_mass, total_length, thruster_count, pod_shape, deck_shape, snapshot, generated_at
		FROM ships WHERE seed = ?`), seed)

	rec, err := scanShip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ship: %w", err)
	}
	return rec, nil
}

// ListShips returns catalogued ships, most recently generated first.
// A limit of zero or less returns every ship.
func (d *Database) ListShips(limit int) ([]ShipRecord, error) {
	query := `
		SELECT seed, fingerprint, total_mass, total_length, thruster_count, pod_shape, deck_shape, snapshot, generated_at
		FROM ships ORDER BY generated_at DESC, seed`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ships: %w", err)
	}
	defer rows.Close()

	var ships []ShipRecord
	for rows.Next() {
		rec, err := scanShip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ship: %w", err)
		}
		ships = append(ships, *rec)
	}
	return ships, rows.Err()
}

// CountShips returns the number of catalogued ships.
func (d *Database) CountShips() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM ships`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ships: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShip(s scanner) (*ShipRecord, error) {
	var rec ShipRecord
	var snapshot string
	var generatedAt int64
	err := s.Scan(&rec.Seed, &rec.Fingerprint, &rec.TotalMass, &rec.TotalLength, &rec.ThrusterCount,
		&rec.PodShape, &rec.DeckShape, &snapshot, &generatedAt)
	if err != nil {
		return nil, err
	}
	rec.Snapshot = []byte(snapshot)
	rec.GeneratedAt = time.Unix(0, generatedAt)
	return &rec, nil
}
