package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemorySessionStore returns a store suitable for tests and
// single-process deployments. Sessions do not survive a restart.
func NewInMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: map[string]Session{}}
}

func (m *memorySessionStore) Put(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memorySessionStore) Get(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (m *memorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type sqlSessionStore struct {
	db *sql.DB
}

// NewSQLSessionStore persists sessions in the sessions table so logout and
// expiry hold across restarts and processes.
func NewSQLSessionStore(db *sql.DB) SessionStore {
	return &sqlSessionStore{db: db}
}

func (s *sqlSessionStore) Put(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1,$2,$3)
		 ON CONFLICT (id) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at`,
		sess.ID, sess.UserID, sess.ExpiresAt.Unix())
	return err
}

func (s *sqlSessionStore) Get(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, expires_at FROM sessions WHERE id=$1`, id)
	var sess Session
	var exp int64
	if err := row.Scan(&sess.ID, &sess.UserID, &exp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	sess.ExpiresAt = time.Unix(exp, 0)
	return sess, nil
}

func (s *sqlSessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}
