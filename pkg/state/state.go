package state

import (
	"context"
	"fmt"

	"github.com/cbodonnell/hideseek/pkg/game/types"
)

// EventStore provides shared access to the session's copy of the
// on-chain events. Implementations must be thread-safe.
type EventStore interface {
	// Refresh replaces the cached set with what the contract returns now.
	Refresh(ctx context.Context) error
	// Events returns a copy of the cached set in enumeration order.
	Events() []types.GameEvent
	Get(id string) (types.GameEvent, bool)
	// Skipped is the number of records the last refresh could not fetch.
	Skipped() int
}

// LoadFailedError is returned when the event ids could not be enumerated.
type LoadFailedError struct {
	Err error
}

func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("failed to load events: %v", e.Err)
}

func (e *LoadFailedError) Unwrap() error {
	return e.Err
}

func IsLoadFailed(err error) bool {
	_, ok := err.(*LoadFailedError)
	return ok
}
