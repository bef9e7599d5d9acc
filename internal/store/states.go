package store

import (
	"database/sql"
	"fmt"
	"time"

	"spat/internal/errors"
)

// PackageState is the curation state of a tracked package.
type PackageState string

const (
	StateUnknown          PackageState = "unknown"
	StateTracking         PackageState = "tracking"
	StateInProgress       PackageState = "in_progress"
	StateAndroidSupported PackageState = "android_supported"
	StateArchived         PackageState = "archived"
	StateIrrelevant       PackageState = "irrelevant"
	StateBlocked          PackageState = "blocked"
	StateDependency       PackageState = "dependency"
)

// AllStates lists every curation state in display order.
func AllStates() []PackageState {
	return []PackageState{
		StateUnknown,
		StateTracking,
		StateInProgress,
		StateAndroidSupported,
		StateArchived,
		StateIrrelevant,
		StateBlocked,
		StateDependency,
	}
}

// StateDescriptions maps each state to its meaning for listings.
var StateDescriptions = map[PackageState]string{
	StateUnknown:          "Not yet evaluated",
	StateTracking:         "Linux-compatible, Android support missing",
	StateInProgress:       "Android port in progress",
	StateAndroidSupported: "Android support confirmed",
	StateArchived:         "Upstream repository archived",
	StateIrrelevant:       "Out of scope for Android",
	StateBlocked:          "Blocked on an upstream dependency",
	StateDependency:       "Tracked only as a dependency of another package",
}

// Valid reports whether s is a known curation state.
func (s PackageState) Valid() bool {
	_, ok := StateDescriptions[s]
	return ok
}

// ProcessingStatus is the pipeline status of a record.
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// StateTransition is one recorded state change.
type StateTransition struct {
	ID        int64        `json:"id"`
	URL       string       `json:"url"`
	FromState PackageState `json:"fromState"`
	ToState   PackageState `json:"toState"`
	Reason    string       `json:"reason,omitempty"`
	ChangedBy string       `json:"changedBy,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// TransitionState moves a record to a new curation state and appends the
// change to the transition history, atomically. A record already in the
// target state is left untouched and reported as unchanged.
func (s *Store) TransitionState(url string, to PackageState, reason, changedBy string) (bool, error) {
	if !to.Valid() {
		return false, errors.New(errors.InvalidState,
			fmt.Sprintf("unknown state %q", to), nil)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRow("SELECT state FROM repositories WHERE url = ?", url).Scan(&current)
	if err == sql.ErrNoRows {
		return false, errors.New(errors.PackageNotFound,
			fmt.Sprintf("package not tracked: %s", url), nil)
	}
	if err != nil {
		return false, fmt.Errorf("failed to read current state: %w", err)
	}

	from := PackageState(current)
	if from == to {
		return false, nil
	}

	if _, err := tx.Exec("UPDATE repositories SET state = ? WHERE url = ?", string(to), url); err != nil {
		return false, fmt.Errorf("failed to update state: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO state_transitions (url, from_state, to_state, reason, changed_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, url, string(from), string(to), nullString(reason), nullString(changedBy),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to record transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transition: %w", err)
	}

	s.logger.Info("State transition", map[string]interface{}{
		"url":  url,
		"from": string(from),
		"to":   string(to),
	})

	return true, nil
}

// Transitions returns the most recent state changes for a record, newest
// first. A non-positive limit returns the full history.
func (s *Store) Transitions(url string, limit int) ([]StateTransition, error) {
	query := `
		SELECT id, url, from_state, to_state, reason, changed_by, created_at
		FROM state_transitions WHERE url = ?
		ORDER BY id DESC
	`
	args := []interface{}{url}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transitions []StateTransition
	for rows.Next() {
		var t StateTransition
		var from, to, createdAt string
		var reason, changedBy sql.NullString
		if err := rows.Scan(&t.ID, &t.URL, &from, &to, &reason, &changedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		t.FromState = PackageState(from)
		t.ToState = PackageState(to)
		t.Reason = reason.String
		t.ChangedBy = changedBy.String
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = parsed
		}
		transitions = append(transitions, t)
	}
	return transitions, rows.Err()
}
