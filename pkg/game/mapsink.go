package game

import (
	"context"
	"sync"

	"github.com/cbodonnell/hideseek/pkg/chain"
	"github.com/cbodonnell/hideseek/pkg/game/types"
	"github.com/cbodonnell/hideseek/pkg/log"
)

// RecordingMapSink keeps every placed marker for the rendering layer to
// poll. The last marker is the player's current position.
type RecordingMapSink struct {
	lock    sync.RWMutex
	markers []types.Position
}

func NewRecordingMapSink() *RecordingMapSink {
	return &RecordingMapSink{}
}

func (s *RecordingMapSink) PlaceMarker(ctx context.Context, position types.Position) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.markers = append(s.markers, position)
	log.Trace("Placed marker at %.4f, %.4f", position.Lat, position.Lng)
	return nil
}

func (s *RecordingMapSink) Markers() []types.Position {
	s.lock.RLock()
	defer s.lock.RUnlock()
	markers := make([]types.Position, len(s.markers))
	copy(markers, s.markers)
	return markers
}

// Current returns the last placed marker.
func (s *RecordingMapSink) Current() (types.Position, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if len(s.markers) == 0 {
		return types.Position{}, false
	}
	return s.markers[len(s.markers)-1], true
}

var _ chain.MapSink = (*RecordingMapSink)(nil)
