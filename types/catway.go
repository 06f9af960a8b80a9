package types

import "time"

// CatwayType is the length class of a berth.
type CatwayType string

const (
	CatwayShort CatwayType = "short"
	CatwayLong  CatwayType = "long"
)

// Valid reports whether t is one of the known catway types.
func (t CatwayType) Valid() bool {
	return t == CatwayShort || t == CatwayLong
}

// Catway represents a berth of the marina.
// Catways are addressed by their number, never by their ID.
type Catway struct {
	// ID is the opaque storage identifier.
	ID string `json:"id" db:"id"`

	// Number is the unique, immutable berth number painted on the pontoon.
	Number int `json:"catwayNumber" db:"catway_number"`

	// Type is the length class of the berth.
	Type CatwayType `json:"catwayType" db:"catway_type"`

	// State is a free-form description of the berth condition
	// (e.g. "bon état", "planches à changer").
	State string `json:"catwayState" db:"catway_state"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
