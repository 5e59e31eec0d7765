package auth

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Session links a presented credential to a user. Issuance lives with an
// external collaborator; this service only validates what it is handed.
type Session struct {
	Token     Token
	UserID    user.ID
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

type SessionStore interface {
	Get(ctx context.Context, token Token) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, token Token) error
}
