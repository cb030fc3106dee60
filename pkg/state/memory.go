package state

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/cbodonnell/hideseek/pkg/log"
	"github.com/cbodonnell/hideseek/pkg/status"
)

const loadFailedMessage = "Failed to load events"

type InMemoryEventStore struct {
	lock        sync.RWMutex
	reader      chain.ReadOnlyContract
	broadcaster *status.Broadcaster
	logger      *log.Logger
	events      []types.GameEvent
	skipped     int
	refreshedAt time.Time
	// seq orders overlapping refreshes; only the newest one is applied
	seq     uint64
	applied uint64
}

type NewInMemoryEventStoreOptions struct {
	Reader      chain.ReadOnlyContract
	Broadcaster *status.Broadcaster
}

func NewInMemoryEventStore(opts NewInMemoryEventStoreOptions) *InMemoryEventStore {
	return &InMemoryEventStore{
		reader:      opts.Reader,
		broadcaster: opts.Broadcaster,
		logger:      log.With("component", "store"),
	}
}

// Refresh enumerates every event id and fetches the records one by one.
// A record that fails to load is skipped and the refresh still succeeds;
// only a failed enumeration is an error.
func (s *InMemoryEventStore) Refresh(ctx context.Context) error {
	s.lock.Lock()
	s.seq++
	seq := s.seq
	s.lock.Unlock()

	ids, err := s.reader.ListEventIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to enumerate events: %v", err)
		if s.broadcaster != nil {
			s.broadcaster.Error(loadFailedMessage)
		}
		return &LoadFailedError{Err: err}
	}

	events := make([]types.GameEvent, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		record, err := s.reader.GetEventRecord(ctx, id)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping event %s: %v", id, err)
			continue
		}
		events = append(events, types.NewGameEvent(id, record))
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if seq < s.applied {
		s.logger.Debug("Dropping stale refresh %d, %d already applied", seq, s.applied)
		return nil
	}
	s.applied = seq
	s.events = events
	s.skipped = skipped
	s.refreshedAt = time.Now()
	s.logger.Debug("Loaded %d events, skipped %d", len(events), skipped)
	return nil
}

func (s *InMemoryEventStore) Events() []types.GameEvent {
	s.lock.RLock()
	defer s.lock.RUnlock()
	events := make([]types.GameEvent, len(s.events))
	copy(events, s.events)
	return events
}

func (s *InMemoryEventStore) Get(id string) (types.GameEvent, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, event := range s.events {
		if event.ID == id {
			return event, true
		}
	}
	return types.GameEvent{}, false
}

func (s *InMemoryEventStore) Skipped() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.skipped
}

// Summary describes the cached set for dashboards.
type Summary struct {
	Total       int       `json:"total"`
	Triggered   int       `json:"triggered"`
	Skipped     int       `json:"skipped"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

func (s *InMemoryEventStore) Summary() Summary {
	s.lock.RLock()
	defer s.lock.RUnlock()
	summary := Summary{
		Total:       len(s.events),
		Skipped:     s.skipped,
		RefreshedAt: s.refreshedAt,
	}
	for _, event := range s.events {
		if event.Triggered {
			summary.Triggered++
		}
	}
	return summary
}

// Clear drops the cached set, e.g. when the wallet disconnects.
func (s *InMemoryEventStore) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.seq++
	s.applied = s.seq
	s.events = nil
	s.skipped = 0
	s.refreshedAt = time.Time{}
}
