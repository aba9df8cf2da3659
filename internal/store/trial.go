package store

import (
	"database/sql"
	"time"
)

// Trial is one accuracy-harness observation: the gesture the tester was
// performing and the stable label the pipeline reported at that moment.
type Trial struct {
	ID        int64
	SessionID string
	Expected  string
	Detected  string
	Correct   bool
	CreatedAt time.Time
}

// TrialSummary aggregates trials.
type TrialSummary struct {
	Total   int
	Correct int
}

// Accuracy returns the percentage of correct trials, or 0 with no trials.
func (s TrialSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// TrialRepository provides access to accuracy trials.
type TrialRepository struct {
	db *sql.DB
}

// Trials returns the trial repository for this store.
func (s *Store) Trials() *TrialRepository {
	return &TrialRepository{db: s.db}
}

// Create inserts a trial and sets its ID.
func (r *TrialRepository) Create(t *Trial) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO trials (session_id, expected, detected, correct, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.SessionID, t.Expected, t.Detected, t.Correct, t.CreatedAt,
	)
	if err != nil {
		return err
	}

	t.ID, err = result.LastInsertId()
	return err
}

// Summary aggregates all trials, or only those of sessionID when it is non-empty.
func (r *TrialRepository) Summary(sessionID string) (TrialSummary, error) {
	var s TrialSummary
	err := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM trials WHERE ? = '' OR session_id = ?`,
		sessionID, sessionID,
	).Scan(&s.Total, &s.Correct)
	return s, err
}

// SummaryByExpected aggregates trials per expected label.
func (r *TrialRepository) SummaryByExpected() (map[string]TrialSummary, error) {
	rows, err := r.db.Query(
		`SELECT expected, COUNT(*), COALESCE(SUM(correct), 0) FROM trials GROUP BY expected`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]TrialSummary)
	for rows.Next() {
		var label string
		var s TrialSummary
		if err := rows.Scan(&label, &s.Total, &s.Correct); err != nil {
			return nil, err
		}
		out[label] = s
	}

	return out, rows.Err()
}
