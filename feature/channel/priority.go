package channel

import (
	"strings"

	"rental-sync/core/storage/models"
)

// Manual is the synthetic pseudo-channel for operator-entered bookings and
// blocks. It always outranks every external channel.
const Manual = "manual"

// PriorityManual is the priority of the manual pseudo-channel. External
// channel priorities (including per-connection overrides) live in 0-100, so
// manual entries always win ties.
const PriorityManual = 1000

// PriorityDefault is the fallback priority for unknown channels.
const PriorityDefault = 10

// defaultPriorities maps normalized channel identifiers to their default
// priority. Higher wins ties during reconciliation.
var defaultPriorities = map[string]int{
	"booking":     90,
	"booking.com": 90,
	"expedia":     70,
	"vrbo":        60,
	"homeaway":    60,
	"airbnb":      50,
	"tripadvisor": 40,
	"ical":        20,
}

// Normalize canonicalizes a channel identifier for lookups.
func Normalize(channel string) string {
	return strings.ToLower(strings.TrimSpace(channel))
}

// Priority resolves a channel identifier to its numeric priority.
func Priority(channel string) int {
	name := Normalize(channel)
	if name == Manual {
		return PriorityManual
	}
	if p, ok := defaultPriorities[name]; ok {
		return p
	}
	return PriorityDefault
}

// ConnectionPriority resolves the effective priority for a connection,
// honoring its explicit override when set.
func ConnectionPriority(conn *models.ChannelConnection) int {
	if conn.Priority != nil {
		return *conn.Priority
	}
	return Priority(conn.Channel)
}
