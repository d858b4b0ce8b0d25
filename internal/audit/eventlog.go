// Package audit keeps an append-only trail of the actions that change
// grading outcomes: submissions, grade edits, schedule changes,
// finalization. The trail is evidence, not control flow; a failed
// append is logged and never fails the operation it describes.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"
)

type Event struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	ExamID    string `json:"exam_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	DataJSON  string `json:"data,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLog returns the audit trail over db. A nil db yields a no-op log,
// which the in-memory dev profile and tests use.
func NewLog(db *sql.DB, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{db: db, logger: logger}
}

// Record appends one event. payload is marshaled to JSON; nil means no
// payload. Safe on a nil receiver.
func (l *Log) Record(ctx context.Context, kind, examID, actorID string, payload any) {
	if l == nil || l.db == nil {
		return
	}
	data := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			l.logger.Warn("audit payload not serializable", "kind", kind, "error", err)
		} else {
			data = string(buf)
		}
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO audit_events (kind, exam_id, actor_id, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		kind, examID, actorID, data, time.Now().Unix())
	if err != nil {
		l.logger.Warn("audit append failed", "kind", kind, "exam_id", examID, "error", err)
	}
}

// ListByExam returns the newest events for one exam, newest first.
func (l *Log) ListByExam(ctx context.Context, examID string, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, kind, exam_id, actor_id, data, created_at
		 FROM audit_events WHERE exam_id=$1 ORDER BY id DESC LIMIT $2`,
		examID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.ExamID, &e.ActorID, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
