package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/viewer"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

// ErrMalformedCredential marks a credential that is present but structurally
// broken. Unlike an unknown token this is a hard failure: clients sending
// garbage should hear about it rather than silently browse anonymously.
var ErrMalformedCredential = errors.New("auth: malformed credential")

const minTokenLength = 16

// Service resolves a presented credential to a Viewer. It never issues
// credentials; the session store is populated by an external collaborator.
type Service struct {
	Users    domainuser.Repository
	Sessions domainauth.SessionStore
	Logger   *slog.Logger
}

// ResolveViewer maps a token to the requesting identity. Rules:
//   - empty token: anonymous viewer, no error;
//   - malformed token: ErrMalformedCredential;
//   - unknown or expired session, or session pointing at a missing user:
//     anonymous viewer, no error.
//
// Callers resolve once per request and thread the result through context.
func (s *Service) ResolveViewer(ctx context.Context, token string) (viewer.Viewer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return viewer.Viewer{}, nil
	}
	if !wellFormedToken(token) {
		return viewer.Viewer{}, ErrMalformedCredential
	}

	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return viewer.Viewer{}, nil
		}
		return viewer.Viewer{}, err
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return viewer.Viewer{}, nil
	}

	u, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			_ = s.Sessions.Delete(ctx, session.Token)
			if s.Logger != nil {
				s.Logger.Warn("session references missing user", "user_id", session.UserID)
			}
			return viewer.Viewer{}, nil
		}
		return viewer.Viewer{}, err
	}

	return viewer.Viewer{ID: u.ID, HasWallet: u.HasWallet()}, nil
}

// wellFormedToken accepts the opaque url-safe base64 tokens the issuing
// collaborator hands out.
func wellFormedToken(token string) bool {
	if len(token) < minTokenLength {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil
}
