package postgres

import (
	"context"
	"time"

	"github.com/example/holidaze/internal/db"
)

// StateStore keeps web session state in the client_state table.
type StateStore struct{ db db.Execer }

func NewStateStore(d db.Execer) *StateStore { return &StateStore{db: d} }

func (s *StateStore) Get(ctx context.Context, sid, key string) (string, error) {
	var v string
	err := s.db.QueryRow(ctx, `SELECT value FROM client_state WHERE session_id=$1 AND key=$2`, sid, key).Scan(&v)
	if err != nil {
		return "", db.WrapNotFound(err)
	}
	return v, nil
}

func (s *StateStore) Set(ctx context.Context, sid, key, value string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO client_state (session_id, key, value, updated_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (session_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at
	`, sid, key, value, time.Now().UTC())
	return db.WrapNotFound(err)
}

func (s *StateStore) Clear(ctx context.Context, sid string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM client_state WHERE session_id=$1`, sid)
	return db.WrapNotFound(err)
}

// Expire removes sessions idle for longer than maxAge.
func (s *StateStore) Expire(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.db.Exec(ctx, `
		DELETE FROM client_state WHERE session_id IN (
			SELECT session_id FROM client_state GROUP BY session_id HAVING max(updated_at) < $1
		)`, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, db.WrapNotFound(err)
	}
	return n, nil
}
