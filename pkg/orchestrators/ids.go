package orchestrators

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const EventIDPrefix = "event-"

const (
	IDStrategyTimestamp = "timestamp"
	IDStrategyUUID      = "uuid"
)

type IDGenerator interface {
	Next() string
}

// TimestampIDs derives ids from the millisecond clock. Two creations in
// the same millisecond get the same id.
type TimestampIDs struct {
	Now func() time.Time
}

func (g *TimestampIDs) Next() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return fmt.Sprintf("%s%d", EventIDPrefix, now().UnixMilli())
}

// UUIDIDs derives ids from random v4 UUIDs.
type UUIDIDs struct{}

func (UUIDIDs) Next() string {
	return EventIDPrefix + uuid.NewString()
}

func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", IDStrategyTimestamp:
		return &TimestampIDs{}, nil
	case IDStrategyUUID:
		return UUIDIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}
