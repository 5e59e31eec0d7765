package uow

import (
	"context"

	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
)

// UnitOfWork binds the document-store repositories to one commit boundary.
// Multi-document mutations (listing insert + host append, booking insert +
// index mark) go through a single unit so neither write lands alone.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit-of-work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure the transaction boundary.
type TxOptions struct {
	ReadOnly bool
}
