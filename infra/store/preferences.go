package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cscx-ai/meetopt/core/model"
)

// PreferenceStore persists stakeholder preference records.
type PreferenceStore struct {
	db *sql.DB
}

// Get returns the stored record for the stakeholder.
func (s *PreferenceStore) Get(ctx context.Context, stakeholderID string) (model.StakeholderPreferences, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM stakeholder_preferences WHERE stakeholder_id = ?`,
		stakeholderID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StakeholderPreferences{}, false, nil
	}
	if err != nil {
		return model.StakeholderPreferences{}, false, err
	}
	var p model.StakeholderPreferences
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return model.StakeholderPreferences{}, false, fmt.Errorf("decode preference row: %w", err)
	}
	return p, true, nil
}

// Put upserts the record. Provenance policy is enforced by the preference
// service, not here.
func (s *PreferenceStore) Put(ctx context.Context, p model.StakeholderPreferences) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stakeholder_preferences (stakeholder_id, source, confidence, payload)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(stakeholder_id) DO UPDATE SET
             source = excluded.source,
             confidence = excluded.confidence,
             payload = excluded.payload`,
		p.StakeholderID, string(p.Source), p.ConfidenceScore, string(payload))
	return err
}
