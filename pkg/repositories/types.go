package repositories

import "fmt"

// ErrNotFound is returned when a player is not known to the source.
type ErrNotFound struct {
	PlayerID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("player %s not found", e.PlayerID)
}

func IsNotFound(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}
