package booking

import (
	"strings"

	"rental-sync/core/storage/models"
)

// guestPlaceholders is the closed set of strings that do not count as a real
// guest name. Matching is case- and whitespace-insensitive.
var guestPlaceholders = map[string]struct{}{
	"":            {},
	"guest":       {},
	"guest name":  {},
	"n/a":         {},
	"na":          {},
	"unknown":     {},
	"tbd":         {},
	"-":           {},
	"reserved":    {},
	"blocked":     {},
	"unavailable": {},
}

// HasRealGuest reports whether the name identifies an actual guest rather
// than a placeholder.
func HasRealGuest(name string) bool {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	_, placeholder := guestPlaceholders[normalized]
	return !placeholder
}

// HasPositiveAmount reports whether the amount is strictly positive.
func HasPositiveAmount(amount float64) bool {
	return amount > 0
}

// IsConfirmedBooking reports whether the record is a real reservation: not a
// block, not provisional, and carrying either a real guest or a positive
// amount.
func IsConfirmedBooking(b *models.CanonicalBooking) bool {
	return b.Kind != models.KindBlock &&
		b.Status != models.BookingProvisional &&
		(HasRealGuest(b.GuestName) || HasPositiveAmount(b.TotalPrice))
}

// IsProvisionalBlock reports the negation pattern: a block, a provisional
// record, or an entry with neither guest nor amount.
func IsProvisionalBlock(b *models.CanonicalBooking) bool {
	return b.Kind == models.KindBlock ||
		b.Status == models.BookingProvisional ||
		(!HasRealGuest(b.GuestName) && !HasPositiveAmount(b.TotalPrice))
}

// Overlaps reports whether two half-open date ranges [s1,e1) and [s2,e2)
// intersect. The checkout day is not counted as occupied, so back-to-back
// stays do not overlap.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && e1 > s2
}

// IsCovered reports whether the block's date range overlaps any confirmed
// booking in the set. Covered blocks are not actionable: the closure is
// explained by an existing reservation.
func IsCovered(block *models.CanonicalBooking, confirmed []models.CanonicalBooking) bool {
	for i := range confirmed {
		c := &confirmed[i]
		if c.ID == block.ID || c.Status == models.BookingCancelled {
			continue
		}
		if !IsConfirmedBooking(c) {
			continue
		}
		if Overlaps(block.CheckIn, block.CheckOut, c.CheckIn, c.CheckOut) {
			return true
		}
	}
	return false
}
