package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

type fakeSessions struct {
	byToken map[domainauth.Token]*domainauth.Session
	deleted []domainauth.Token
}

func (f *fakeSessions) Get(_ context.Context, token domainauth.Token) (*domainauth.Session, error) {
	if s, ok := f.byToken[token]; ok {
		return s, nil
	}
	return nil, domainauth.ErrSessionNotFound
}

func (f *fakeSessions) Put(_ context.Context, s *domainauth.Session) error {
	f.byToken[s.Token] = s
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, token domainauth.Token) error {
	delete(f.byToken, token)
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeUsers struct {
	byID map[domainuser.ID]*domainuser.User
}

func (f *fakeUsers) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domainuser.ErrNotFound
}

func (f *fakeUsers) Save(_ context.Context, u *domainuser.User) error {
	f.byID[u.ID] = u
	return nil
}

const goodToken = "c3RheWJvb2stdGVzdC10b2tlbg" // url-safe base64, long enough

func newService(t *testing.T) (*Service, *fakeSessions, *fakeUsers) {
	t.Helper()
	sessions := &fakeSessions{byToken: map[domainauth.Token]*domainauth.Session{}}
	users := &fakeUsers{byID: map[domainuser.ID]*domainuser.User{}}
	return &Service{Users: users, Sessions: sessions}, sessions, users
}

func TestResolveViewerEmptyTokenIsAnonymous(t *testing.T) {
	svc, _, _ := newService(t)
	v, err := svc.ResolveViewer(context.Background(), "  ")
	require.NoError(t, err)
	assert.True(t, v.Anonymous())
}

func TestResolveViewerMalformedToken(t *testing.T) {
	svc, _, _ := newService(t)
	for _, token := range []string{"short", "not base64!!%", "白白白白白白白白白白白白白白白白"} {
		_, err := svc.ResolveViewer(context.Background(), token)
		assert.ErrorIs(t, err, ErrMalformedCredential, "token %q", token)
	}
}

func TestResolveViewerUnknownTokenIsAnonymous(t *testing.T) {
	svc, _, _ := newService(t)
	v, err := svc.ResolveViewer(context.Background(), goodToken)
	require.NoError(t, err)
	assert.True(t, v.Anonymous())
}

func TestResolveViewerKnownSession(t *testing.T) {
	svc, sessions, users := newService(t)
	users.byID["u1"] = &domainuser.User{ID: "u1", Name: "Alma", WalletID: "wallet-1"}
	sessions.byToken[goodToken] = &domainauth.Session{Token: goodToken, UserID: "u1"}

	v, err := svc.ResolveViewer(context.Background(), goodToken)
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u1"), v.ID)
	assert.True(t, v.HasWallet)
}

func TestResolveViewerExpiredSession(t *testing.T) {
	svc, sessions, users := newService(t)
	users.byID["u1"] = &domainuser.User{ID: "u1", Name: "Alma"}
	sessions.byToken[goodToken] = &domainauth.Session{
		Token:     goodToken,
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	v, err := svc.ResolveViewer(context.Background(), goodToken)
	require.NoError(t, err)
	assert.True(t, v.Anonymous())
	assert.Contains(t, sessions.deleted, domainauth.Token(goodToken))
}

func TestResolveViewerDanglingUser(t *testing.T) {
	svc, sessions, _ := newService(t)
	sessions.byToken[goodToken] = &domainauth.Session{Token: goodToken, UserID: "gone"}

	v, err := svc.ResolveViewer(context.Background(), goodToken)
	require.NoError(t, err)
	assert.True(t, v.Anonymous())
	assert.Contains(t, sessions.deleted, domainauth.Token(goodToken))
}
