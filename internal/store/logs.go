package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProcessingLog is one recorded pipeline run (import, manifest attach,
// override apply).
type ProcessingLog struct {
	ID             string           `json:"id"`
	Action         string           `json:"action"`
	Status         ProcessingStatus `json:"status"`
	Message        string           `json:"message,omitempty"`
	ItemsProcessed int              `json:"itemsProcessed"`
	DurationMs     int64            `json:"durationMs"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// AppendLog records a pipeline run. A missing ID or timestamp is filled in.
func (s *Store) AppendLog(log *ProcessingLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if log.Status == "" {
		log.Status = ProcessingCompleted
	}

	_, err := s.conn.Exec(`
		INSERT INTO processing_logs (id, action, status, message, items_processed, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID,
		log.Action,
		string(log.Status),
		nullString(log.Message),
		log.ItemsProcessed,
		log.DurationMs,
		log.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append processing log: %w", err)
	}
	return nil
}

// RecentLogs returns the latest pipeline runs, newest first.
func (s *Store) RecentLogs(limit int) ([]ProcessingLog, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.conn.Query(`
		SELECT id, action, status, message, items_processed, duration_ms, created_at
		FROM processing_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []ProcessingLog
	for rows.Next() {
		var log ProcessingLog
		var status, createdAt string
		var message sql.NullString
		if err := rows.Scan(&log.ID, &log.Action, &status, &message,
			&log.ItemsProcessed, &log.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan processing log: %w", err)
		}
		log.Status = ProcessingStatus(status)
		log.Message = message.String
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			log.CreatedAt = t
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
