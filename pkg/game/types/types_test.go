package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGameEvent(t *testing.T) {
	tests := []struct {
		name         string
		record       *EventRecord
		wantRevealed int64
		wantOK       bool
	}{
		{
			name:   "untriggered record hides the revealed value",
			record: &EventRecord{Name: "Park Meetup", PublicRadius: 100, RevealedValue: 42},
			wantOK: false,
		},
		{
			name:         "triggered record exposes the revealed value",
			record:       &EventRecord{Name: "Park Meetup", PublicRadius: 100, Triggered: true, RevealedValue: 42},
			wantRevealed: 42,
			wantOK:       true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewGameEvent("event-1", tt.record)
			assert.Equal(t, "event-1", event.ID)
			assert.Equal(t, "event-1", event.EncryptedLocation)
			assert.Equal(t, tt.record.PublicRadius, event.PublicRadius)

			got, ok := event.Revealed()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRevealed, got)
		})
	}
}

func TestRevealedIgnoresValueWhenNotTriggered(t *testing.T) {
	event := GameEvent{ID: "event-1", RevealedValue: 7}
	_, ok := event.Revealed()
	assert.False(t, ok)
}
