package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BookingField identifies one mergeable field of a canonical booking.
type BookingField string

const (
	FieldCheckIn    BookingField = "check_in"
	FieldCheckOut   BookingField = "check_out"
	FieldGuestName  BookingField = "guest_name"
	FieldGuestCount BookingField = "guest_count"
	FieldTotalPrice BookingField = "total_price"
	FieldStatus     BookingField = "status"
	FieldKind       BookingField = "kind"
	FieldSummary    BookingField = "summary"
	FieldSource     BookingField = "source"
)

// Origin is the two-state provenance tag for a booking field.
type Origin string

const (
	// OriginSystem marks a value written by the reconciliation engine.
	OriginSystem Origin = "SYSTEM"
	// OriginManual marks a value edited by a human. Manual values survive
	// every subsequent merge until the tag is cleared by an explicit user
	// action outside this engine.
	OriginManual Origin = "MANUAL"
)

// Provenance maps booking fields to their origin. Fields absent from the map
// are treated as SYSTEM.
type Provenance map[BookingField]Origin

// IsManual reports whether the given field is protected from merges.
func (p Provenance) IsManual(f BookingField) bool {
	return p != nil && p[f] == OriginManual
}

// Value implements driver.Valuer, serializing the map as JSON for storage.
func (p Provenance) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, deserializing the JSON column.
func (p *Provenance) Scan(value any) error {
	if value == nil {
		*p = Provenance{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported provenance column type %T", value)
	}

	if len(data) == 0 {
		*p = Provenance{}
		return nil
	}
	return json.Unmarshal(data, p)
}
