package store

import (
	"database/sql"
	"time"
)

// DefaultListLimit caps list queries when the caller passes a non-positive limit.
const DefaultListLimit = 100

// ActionEntry records one admitted gesture and its effect on the voxel store.
type ActionEntry struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Gesture    string    `json:"gesture"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	VoxelCount int       `json:"voxel_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActionRepository provides access to the action log.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action log repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

// Append adds an entry to the log and fills in its ID.
// A zero CreatedAt is set to the current time.
func (r *ActionRepository) Append(e *ActionEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO action_log (session_id, gesture, action, status, voxel_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Gesture, e.Action, e.Status, e.VoxelCount, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// ListBySession returns a session's entries in the order they were appended.
// Returns ErrNotFound if the session does not exist.
func (r *ActionRepository) ListBySession(sessionID string, limit int) ([]*ActionEntry, error) {
	var exists int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	return r.query(
		`SELECT id, session_id, gesture, action, status, voxel_count, created_at
		 FROM action_log WHERE session_id = ? ORDER BY id ASC LIMIT ?`,
		sessionID, normalizeLimit(limit),
	)
}

// Recent returns the latest entries across all sessions, newest first.
func (r *ActionRepository) Recent(limit int) ([]*ActionEntry, error) {
	return r.query(
		`SELECT id, session_id, gesture, action, status, voxel_count, created_at
		 FROM action_log ORDER BY id DESC LIMIT ?`,
		normalizeLimit(limit),
	)
}

func (r *ActionRepository) query(q string, args ...any) ([]*ActionEntry, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ActionEntry
	for rows.Next() {
		e := &ActionEntry{}
		err := rows.Scan(&e.ID, &e.SessionID, &e.Gesture, &e.Action, &e.Status, &e.VoxelCount, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
