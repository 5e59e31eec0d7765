package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"staybook/internal/app/services/geo"
	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/events"
)

var (
	ErrListingNotFound    = errors.New("resolve: listing not found")
	ErrBookingNotFound    = errors.New("resolve: booking not found")
	ErrUnauthenticated    = errors.New("resolve: viewer could not be found")
	ErrInvalidAddress     = errors.New("resolve: address could not be resolved")
	ErrOwnListing         = errors.New("resolve: hosts cannot book their own listing")
	ErrHostWalletRequired = errors.New("resolve: host cannot receive payments")
	// ErrHostMissing is an integrity failure: a listing references a host
	// record that no longer exists. Surfaced opaquely, logged for operators.
	ErrHostMissing = errors.New("resolve: listing host record missing")
)

// ImageStore uploads listing photos and returns a public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// EventPublisher delivers domain events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// Pipeline orchestrates field-level resolution of the listing graph. Each
// public method is one resolver; the viewer argument is the identity
// resolved once for the whole request, never re-derived here.
type Pipeline struct {
	UoW      uow.Factory
	Geocoder geo.Geocoder
	Images   ImageStore
	Events   EventPublisher
	Logger   *slog.Logger
	// Now supplies the clock so range validation stays testable.
	Now func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

type unitOfWork = uow.UnitOfWork

// saveAttempts bounds the compare-and-swap retry loops. Each retry reopens
// a unit and reloads fresh snapshots of every aggregate it touches.
const saveAttempts = 3

// begin opens a unit of work. Stores that bind the unit to a transaction
// expose InjectContext; every repository call inside the unit has to use
// the returned context or its reads and writes escape the transaction.
func (p *Pipeline) begin(ctx context.Context, readOnly bool) (unitOfWork, context.Context, error) {
	unit, err := p.UoW.Begin(ctx, uow.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return nil, ctx, err
	}
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		ctx = injector.InjectContext(ctx)
	}
	return unit, ctx, nil
}

// publish drains recorded events best-effort. Delivery failure is logged,
// never bubbled: the mutation already committed.
func (p *Pipeline) publish(ctx context.Context, topic string, pending []events.DomainEvent) {
	if p.Events == nil {
		return
	}
	for _, event := range pending {
		payload, err := encodeEvent(event)
		if err != nil {
			p.logError("event encode failed", err, "event", event.EventName())
			continue
		}
		if err := p.Events.Publish(ctx, topic, event.AggregateID(), payload); err != nil {
			p.logError("event publish failed", err, "event", event.EventName(), "topic", topic)
		}
	}
}

func (p *Pipeline) logError(msg string, err error, args ...any) {
	if p.Logger == nil {
		return
	}
	p.Logger.Error(msg, append([]any{"error", err}, args...)...)
}

type eventEnvelope struct {
	Name       string          `json:"name"`
	Aggregate  string          `json:"aggregate_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func encodeEvent(event events.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("resolve: encode %s: %w", event.EventName(), err)
	}
	return json.Marshal(eventEnvelope{
		Name:       event.EventName(),
		Aggregate:  event.AggregateID(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	})
}
