package types

// GameEvent is the session copy of an on-chain event.
// The location itself never leaves the contract in the clear; only
// RevealedValue carries it, and only after a verified trigger.
type GameEvent struct {
	ID string `json:"id"`
	// Name is the display name given by the creator
	Name string `json:"name"`
	// EncryptedLocation references the ciphertext held by the contract.
	// The handle itself is fetched with GetEncryptedHandle.
	EncryptedLocation string `json:"encryptedLocation"`
	// PublicRadius is the trigger radius in meters
	PublicRadius int64  `json:"publicRadius"`
	Description  string `json:"description"`
	Creator      string `json:"creator"`
	// Timestamp is the creation time in unix seconds
	Timestamp int64 `json:"timestamp"`
	Triggered bool  `json:"triggered"`
	// RevealedValue is meaningless until Triggered is set. Use Revealed.
	RevealedValue int64 `json:"-"`
}

// Revealed returns the decrypted location code. ok is false until the
// event has been triggered.
func (e GameEvent) Revealed() (value int64, ok bool) {
	if !e.Triggered {
		return 0, false
	}
	return e.RevealedValue, true
}

// EventRecord is what the read-only contract view returns for one id.
type EventRecord struct {
	Name          string `json:"name"`
	PublicRadius  int64  `json:"publicRadius"`
	Description   string `json:"description"`
	Creator       string `json:"creator"`
	Timestamp     int64  `json:"timestamp"`
	Triggered     bool   `json:"triggered"`
	RevealedValue int64  `json:"revealedValue"`
}

// NewGameEvent builds the cached event for id from its on-chain record.
func NewGameEvent(id string, record *EventRecord) GameEvent {
	event := GameEvent{
		ID:                id,
		Name:              record.Name,
		EncryptedLocation: id,
		PublicRadius:      record.PublicRadius,
		Description:       record.Description,
		Creator:           record.Creator,
		Timestamp:         record.Timestamp,
		Triggered:         record.Triggered,
	}
	if record.Triggered {
		event.RevealedValue = record.RevealedValue
	}
	return event
}

// PlayerData comes from a non-authoritative ranking source.
type PlayerData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`
	// LastActive is in unix milliseconds
	LastActive int64 `json:"lastActive"`
}

type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
