package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	return &SessionStore{col: db.Collection("sessions")}
}

func (s *SessionStore) Get(ctx context.Context, token auth.Token) (*auth.Session, error) {
	if token == "" {
		return nil, auth.ErrTokenRequired
	}
	var doc sessionDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": string(token)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, err
	}
	return doc.toSession(), nil
}

func (s *SessionStore) Put(ctx context.Context, session *auth.Session) error {
	doc := sessionDocument{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		CreatedAt: session.CreatedAt.UnixMilli(),
	}
	// Zero expiry means a non-expiring session; keep that distinct from
	// the epoch.
	if !session.ExpiresAt.IsZero() {
		doc.ExpiresAt = session.ExpiresAt.UnixMilli()
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": doc.Token}, bson.M{"$set": doc}, opts)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, token auth.Token) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": string(token)})
	return err
}

type sessionDocument struct {
	Token     string `bson:"_id"`
	UserID    string `bson:"user_id"`
	CreatedAt int64  `bson:"created_at"`
	ExpiresAt int64  `bson:"expires_at"`
}

func (d sessionDocument) toSession() *auth.Session {
	session := &auth.Session{
		Token:     auth.Token(d.Token),
		UserID:    domainuser.ID(d.UserID),
		CreatedAt: timestampToTime(d.CreatedAt),
	}
	if d.ExpiresAt != 0 {
		session.ExpiresAt = timestampToTime(d.ExpiresAt)
	}
	return session
}
