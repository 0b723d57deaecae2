package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cscx-ai/meetopt/core/model"
)

// RequestStore persists composed meeting requests. Requests are never deleted
// by this subsystem.
type RequestStore struct {
	db *sql.DB
}

// Get returns the request by ID.
func (s *RequestStore) Get(ctx context.Context, id string) (model.MeetingRequest, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM meeting_requests WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MeetingRequest{}, false, nil
	}
	if err != nil {
		return model.MeetingRequest{}, false, err
	}
	var r model.MeetingRequest
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return model.MeetingRequest{}, false, fmt.Errorf("decode request row: %w", err)
	}
	return r, true, nil
}

// Put upserts the request.
func (s *RequestStore) Put(ctx context.Context, r model.MeetingRequest) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meeting_requests (id, customer_id, status, created_at, payload)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             status = excluded.status,
             payload = excluded.payload`,
		r.ID, r.CustomerID, string(r.Status), r.CreatedAt.Unix(), string(payload))
	return err
}

// ListByCustomer returns requests for a customer, newest first.
func (s *RequestStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]model.MeetingRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM meeting_requests WHERE customer_id = ?
         ORDER BY created_at DESC LIMIT ?`, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []model.MeetingRequest
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r model.MeetingRequest
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decode request row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
