package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const (
	EventSubmissionCreated = "SubmissionCreated"
	EventSubmissionGraded  = "SubmissionGraded"
)

// Event is one append-only audit record. Seq is assigned by the database.
type Event struct {
	Seq       int64  `json:"seq"`
	Typ       string `json:"typ"`
	Key       string `json:"key"`
	Data      string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Append records an event; payload is stored as JSON.
func (r *EventRepo) Append(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO event_log (typ,key,data,created_at)
		VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	return err
}

// Recent returns the newest events, most recent first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `SELECT seq,typ,key,data,created_at
		FROM event_log ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.Typ, &e.Key, &e.Data, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
