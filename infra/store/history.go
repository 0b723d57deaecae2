package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cscx-ai/meetopt/core/history"
	"github.com/cscx-ai/meetopt/core/model"
)

// HistoryStore is a local mirror of meeting history entries. It implements
// history.Source and can be fed from request outcomes and calendar syncs.
type HistoryStore struct {
	db *sql.DB
}

// Add records one history entry. Entries are immutable; re-adding the same
// (key, scheduled minute) keeps the first record.
func (s *HistoryStore) Add(ctx context.Context, e model.MeetingHistoryEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meeting_history (customer_id, stakeholder_id, scheduled_at, payload)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(customer_id, stakeholder_id, scheduled_at) DO NOTHING`,
		e.CustomerID, e.StakeholderID, e.ScheduledAt.Unix(), string(payload))
	return err
}

// FetchMeetingHistory returns entries for the key, newest first, capped at
// the standard fetch limit. An empty stakeholder ID matches all entries for
// the customer.
func (s *HistoryStore) FetchMeetingHistory(ctx context.Context, customerID, stakeholderID string) ([]model.MeetingHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM meeting_history
         WHERE customer_id = ? AND (? = '' OR stakeholder_id = ?)
         ORDER BY scheduled_at DESC LIMIT ?`,
		customerID, stakeholderID, stakeholderID, history.FetchLimit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.MeetingHistoryEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e model.MeetingHistoryEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode history row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
