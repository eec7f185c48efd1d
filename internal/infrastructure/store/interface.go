package store

import (
	"context"
	"errors"
)

// ErrVersionConflict is returned when an append loses a race: the stream
// moved past the expected version between load and write.
var ErrVersionConflict = errors.New("event stream version conflict")

// EventStoreInterface defines the interface for event stores.
//
// Append is conditional on expectedVersion (0 for a new aggregate): of two
// concurrent conflicting writes on the same aggregate exactly one wins, the
// other gets ErrVersionConflict and must reload.
type EventStoreInterface interface {
	Append(ctx context.Context, aggregateID, aggregateType, eventType string, expectedVersion int, data any) (*Event, error)
	GetEvents(ctx context.Context, aggregateID string) ([]Event, error)
	GetEventsFromVersion(ctx context.Context, aggregateID string, afterVersion int) ([]Event, error)
	GetAllEvents(ctx context.Context) ([]Event, error)
	GetSnapshot(ctx context.Context, aggregateID string) (*Snapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
}
