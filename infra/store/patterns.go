package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cscx-ai/meetopt/core/model"
	"github.com/cscx-ai/meetopt/core/pattern"
)

// PatternStore persists PatternAnalysis rows keyed by (customer, stakeholder).
type PatternStore struct {
	db *sql.DB
}

// Get returns the stored analysis for the key.
func (s *PatternStore) Get(ctx context.Context, key pattern.Key) (model.PatternAnalysis, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM meeting_patterns WHERE customer_id = ? AND stakeholder_id = ?`,
		key.CustomerID, key.StakeholderID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PatternAnalysis{}, false, nil
	}
	if err != nil {
		return model.PatternAnalysis{}, false, err
	}
	var a model.PatternAnalysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return model.PatternAnalysis{}, false, fmt.Errorf("decode pattern row: %w", err)
	}
	return a, true, nil
}

// Put stores the analysis under the key.
func (s *PatternStore) Put(ctx context.Context, key pattern.Key, a model.PatternAnalysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meeting_patterns (customer_id, stakeholder_id, calculated_at, payload)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(customer_id, stakeholder_id) DO UPDATE SET
             calculated_at = excluded.calculated_at,
             payload = excluded.payload`,
		key.CustomerID, key.StakeholderID, a.CalculatedAt.Unix(), string(payload))
	return err
}

// UpsertMerge applies the read-modify-write inside one transaction so two
// concurrently recorded outcomes for the same key never lose an update.
func (s *PatternStore) UpsertMerge(ctx context.Context, key pattern.Key, merge func(old model.PatternAnalysis, found bool) model.PatternAnalysis) (model.PatternAnalysis, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PatternAnalysis{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var payload string
	var old model.PatternAnalysis
	found := true
	err = tx.QueryRowContext(ctx,
		`SELECT payload FROM meeting_patterns WHERE customer_id = ? AND stakeholder_id = ?`,
		key.CustomerID, key.StakeholderID).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		found = false
	case err != nil:
		return model.PatternAnalysis{}, err
	default:
		if err := json.Unmarshal([]byte(payload), &old); err != nil {
			return model.PatternAnalysis{}, fmt.Errorf("decode pattern row: %w", err)
		}
	}

	next := merge(old, found)
	out, err := json.Marshal(next)
	if err != nil {
		return model.PatternAnalysis{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meeting_patterns (customer_id, stakeholder_id, calculated_at, payload)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(customer_id, stakeholder_id) DO UPDATE SET
             calculated_at = excluded.calculated_at,
             payload = excluded.payload`,
		key.CustomerID, key.StakeholderID, next.CalculatedAt.Unix(), string(out)); err != nil {
		return model.PatternAnalysis{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.PatternAnalysis{}, err
	}
	return next, nil
}
