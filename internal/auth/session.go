package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the http-only cookie carrying the session token.
const CookieName = "cycure_session"

var ErrNoSession = errors.New("no active session")

// Session is the server-side record a token must resolve to. Logout
// deletes the record, so a token dies immediately even if its JWT has not
// expired yet.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}

type SessionStore interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and resolves session tokens. The token is an HS256 JWT
// whose jti keys a stored Session; both carry the same absolute expiry,
// re-issued on each successful login.
type Manager struct {
	hmac  []byte
	ttl   time.Duration
	store SessionStore
}

func NewManager(secret string, ttl time.Duration, store SessionStore) *Manager {
	return &Manager{hmac: []byte(secret), ttl: ttl, store: store}
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a session for userID and returns the signed token.
func (m *Manager) Issue(ctx context.Context, userID int64) (string, error) {
	now := time.Now()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Put(ctx, s); err != nil {
		return "", err
	}
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cycure",
			Subject:   strconv.FormatInt(userID, 10),
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.hmac)
}

// Resolve validates a token and returns the authenticated user id. Any
// failure (bad signature, expired, revoked) yields ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (int64, error) {
	claims, err := m.parse(token)
	if err != nil {
		return 0, ErrNoSession
	}
	s, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return 0, ErrNoSession
	}
	if time.Now().After(s.ExpiresAt) {
		_ = m.store.Delete(ctx, s.ID)
		return 0, ErrNoSession
	}
	return s.UserID, nil
}

// Revoke destroys the session a token refers to. Revoking an invalid or
// already-dead token is not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.hmac, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}
	c, ok := token.Claims.(*Claims)
	if !ok || c.ID == "" {
		return nil, ErrNoSession
	}
	return c, nil
}
