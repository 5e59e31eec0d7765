package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "staybook/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save performs a versioned compare-and-swap upsert, same contract as the
// listing save. Income and the booking/listing arrays are read-modify-write;
// a stale snapshot matches nothing and gets ErrVersionConflict.
func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := newUserDocument(u)
	filter := bson.M{"_id": doc.ID, "version": u.Version}
	doc.Version = u.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainuser.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainuser.ErrVersionConflict
	}
	u.Version = doc.Version
	return nil
}

type userDocument struct {
	ID        string   `bson:"_id"`
	Name      string   `bson:"name"`
	Avatar    string   `bson:"avatar"`
	Contact   string   `bson:"contact"`
	WalletID  string   `bson:"wallet_id"`
	Income    int64    `bson:"income"`
	Bookings  []string `bson:"bookings"`
	Listings  []string `bson:"listings"`
	CreatedAt int64    `bson:"created_at"`
	UpdatedAt int64    `bson:"updated_at"`
	Version   int64    `bson:"version"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:        string(u.ID),
		Name:      u.Name,
		Avatar:    u.Avatar,
		Contact:   u.Contact,
		WalletID:  u.WalletID,
		Income:    u.Income,
		Bookings:  u.Bookings,
		Listings:  u.Listings,
		CreatedAt: u.CreatedAt.UnixMilli(),
		UpdatedAt: u.UpdatedAt.UnixMilli(),
		Version:   u.Version,
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	bookings := d.Bookings
	if bookings == nil {
		bookings = []string{}
	}
	listings := d.Listings
	if listings == nil {
		listings = []string{}
	}
	return &domainuser.User{
		ID:        domainuser.ID(d.ID),
		Name:      d.Name,
		Avatar:    d.Avatar,
		Contact:   d.Contact,
		WalletID:  d.WalletID,
		Income:    d.Income,
		Bookings:  bookings,
		Listings:  listings,
		Version:   d.Version,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
