package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/domain/availability"
	domainlistings "staybook/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Save performs a versioned compare-and-swap upsert. A writer holding a
// stale snapshot matches nothing and gets ErrVersionConflict.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	filter := bson.M{"_id": doc.ID, "version": listing.Version}
	doc.Version = listing.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainlistings.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainlistings.ErrVersionConflict
	}
	listing.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if opts.Country != "" {
		filter["country"] = opts.Country
	}
	if opts.Admin != "" {
		filter["admin"] = opts.Admin
	}
	if opts.City != "" {
		filter["city"] = opts.City
	}
	if opts.Host != "" {
		filter["host"] = string(opts.Host)
	}

	collation := &options.Collation{Locale: "en", Strength: 2}
	total, err := r.col.CountDocuments(ctx, filter, options.Count().SetCollation(collation))
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	findOpts := options.Find().
		SetCollation(collation).
		SetSkip(int64(opts.Skip())).
		SetLimit(int64(opts.Limit))
	switch opts.Sort {
	case domainlistings.SortPriceLowToHigh:
		findOpts = findOpts.SetSort(bson.D{{Key: "price", Value: 1}})
	case domainlistings.SortPriceHighToLow:
		findOpts = findOpts.SetSort(bson.D{{Key: "price", Value: -1}})
	default:
		findOpts = findOpts.SetSort(bson.D{{Key: "created_at", Value: 1}})
	}

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	items := make([]*domainlistings.Listing, 0, opts.Limit)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		listing, err := doc.toAggregate()
		if err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, listing)
	}
	if err := cursor.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

type listingDocument struct {
	ID          string                                `bson:"_id"`
	Host        string                                `bson:"host"`
	Title       string                                `bson:"title"`
	Description string                                `bson:"description"`
	Image       string                                `bson:"image"`
	Type        string                                `bson:"type"`
	Address     string                                `bson:"address"`
	Country     string                                `bson:"country"`
	Admin       string                                `bson:"admin"`
	City        string                                `bson:"city"`
	Price       int64                                 `bson:"price"`
	NumOfGuests int                                   `bson:"num_of_guests"`
	Bookings    []string                              `bson:"bookings"`
	Index       map[string]map[string]map[string]bool `bson:"bookings_index"`
	CreatedAt   int64                                 `bson:"created_at"`
	UpdatedAt   int64                                 `bson:"updated_at"`
	Version     int64                                 `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		Host:        string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Type:        string(l.Type),
		Address:     l.Address,
		Country:     l.Country,
		Admin:       l.Admin,
		City:        l.City,
		Price:       l.Price,
		NumOfGuests: l.NumOfGuests,
		Bookings:    l.Bookings,
		Index:       l.Index.Nested(),
		CreatedAt:   l.CreatedAt.UnixMilli(),
		UpdatedAt:   l.UpdatedAt.UnixMilli(),
		Version:     l.Version,
	}
}

func (d listingDocument) toAggregate() (*domainlistings.Listing, error) {
	index, err := availability.FromNested(d.Index)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing %s index: %w", d.ID, err)
	}
	bookings := d.Bookings
	if bookings == nil {
		bookings = []string{}
	}
	return &domainlistings.Listing{
		ID:          domainlistings.ListingID(d.ID),
		Host:        domainlistings.HostID(d.Host),
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Type:        domainlistings.ListingType(d.Type),
		Address:     d.Address,
		Country:     d.Country,
		Admin:       d.Admin,
		City:        d.City,
		Price:       d.Price,
		NumOfGuests: d.NumOfGuests,
		Bookings:    bookings,
		Index:       index,
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
