package state

import (
	"sync"
	"time"
)

type HistoryEntry struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// History is the player's session-only activity log.
type History struct {
	lock    sync.RWMutex
	entries []HistoryEntry
	now     func() time.Time
}

func NewHistory() *History {
	return &History{now: time.Now}
}

func (h *History) Append(message string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.entries = append(h.entries, HistoryEntry{Message: message, At: h.now()})
}

func (h *History) Entries() []HistoryEntry {
	h.lock.RLock()
	defer h.lock.RUnlock()
	entries := make([]HistoryEntry, len(h.entries))
	copy(entries, h.entries)
	return entries
}

func (h *History) Clear() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.entries = nil
}
