// Package types provides core data types for Groupcast.
package types

import "time"

// Event represents a single row in the mobile-game events table.
type Event struct {
	// UserID identifies the player who triggered the event.
	// Many events share one UserID.
	UserID int64 `json:"user_id"`

	// EventTime is when the event occurred. Source data is assumed
	// ascending per user but this is not validated.
	EventTime time.Time `json:"event_timestamp"`

	// Lat and Lon are the device coordinates at event time.
	// No range validation is applied.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// EventType categorizes the event (e.g., "login", "level_3",
	// "buy_coins", "megapack"). The vocabulary is open-ended.
	EventType string `json:"event_type"`
}

// Well-known event types. Any other value (including the parameterized
// "level_<n>" family) is valid but carries no monetary value.
const (
	EventTypeLogin    = "login"
	EventTypeBuyCoins = "buy_coins"
	EventTypeMegapack = "megapack"
)
