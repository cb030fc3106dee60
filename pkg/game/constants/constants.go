package constants

import "time"

const (

	// MapCenterLat is the latitude players move around
	MapCenterLat float64 = 51.5
	// MapCenterLng is the longitude players move around
	MapCenterLng float64 = -0.09
	// MoveSpread is the full width of the square a move lands in, in degrees
	MoveSpread float64 = 0.1

	// ActivePlayerWindow is how recently a player must have been seen to count as active
	ActivePlayerWindow = 24 * time.Hour
	// OnlinePlayerWindow is how recently a player must have been seen to show as online
	OnlinePlayerWindow = 5 * time.Minute
)
