package viewer

import (
	"context"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/user"
)

// Viewer is the requester identity resolved once per inbound request and
// passed read-only to every resolver. The zero value is the anonymous
// viewer: no identity, no capabilities.
type Viewer struct {
	ID        user.ID
	HasWallet bool
}

func (v Viewer) Anonymous() bool {
	return v.ID == ""
}

// IsAuthorized reports whether the viewer owns the listing. It is computed
// at resolution time and never stored on the entity.
func IsAuthorized(v Viewer, listing *listings.Listing) bool {
	if listing == nil || v.Anonymous() {
		return false
	}
	return string(v.ID) == string(listing.Host)
}

type ctxKey struct{}

// WithViewer threads the resolved viewer through a request's context.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// FromContext retrieves the request viewer; absent means anonymous.
func FromContext(ctx context.Context) Viewer {
	if v, ok := ctx.Value(ctxKey{}).(Viewer); ok {
		return v
	}
	return Viewer{}
}
