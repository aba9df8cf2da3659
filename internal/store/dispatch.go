package store

import (
	"database/sql"
	"errors"
	"time"
)

// Dispatch is a recorded playback command.
type Dispatch struct {
	ID        string
	Label     string
	Command   string
	Volume    int // target volume for volume commands, -1 otherwise
	Success   bool
	Error     string
	LatencyMs int64
	CreatedAt time.Time
}

// DispatchRepository provides access to the dispatch history.
type DispatchRepository struct {
	db *sql.DB
}

// Dispatches returns the dispatch repository for this store.
func (s *Store) Dispatches() *DispatchRepository {
	return &DispatchRepository{db: s.db}
}

// Create inserts a dispatch. CreatedAt is set to now when zero.
func (r *DispatchRepository) Create(d *Dispatch) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO dispatches (id, label, command, volume, success, error, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Label, d.Command, d.Volume, d.Success, d.Error, d.LatencyMs, d.CreatedAt,
	)
	return err
}

// GetByID retrieves a dispatch by its ID.
func (r *DispatchRepository) GetByID(id string) (*Dispatch, error) {
	row := r.db.QueryRow(
		`SELECT id, label, command, volume, success, error, latency_ms, created_at
		 FROM dispatches WHERE id = ?`,
		id,
	)

	d, err := scanDispatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns the most recent dispatches, newest first. A limit of zero
// or less returns every row.
func (r *DispatchRepository) List(limit int) ([]*Dispatch, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, label, command, volume, success, error, latency_ms, created_at
		 FROM dispatches ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dispatches []*Dispatch
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dispatches, nil
}

// Count returns the number of recorded dispatches and how many failed.
func (r *DispatchRepository) Count() (total, failed int, err error) {
	err = r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) FROM dispatches`,
	).Scan(&total, &failed)
	return total, failed, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDispatch(row rowScanner) (*Dispatch, error) {
	d := &Dispatch{}
	var success int

	err := row.Scan(&d.ID, &d.Label, &d.Command, &d.Volume, &success, &d.Error, &d.LatencyMs, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	d.Success = success != 0
	return d, nil
}
