package types

import "time"

// Reservation assigns a boat to a catway for a date range.
//
// CatwayNumber refers to Catway.Number. The reference is not enforced:
// a reservation may outlive its catway, and two reservations may overlap.
type Reservation struct {
	// ID is the opaque identifier of the reservation.
	ID string `json:"id" db:"id"`

	// CatwayNumber is the number of the reserved berth.
	CatwayNumber int `json:"catwayNumber" db:"catway_number"`

	// ClientName is the name of the boat owner.
	ClientName string `json:"clientName" db:"client_name"`

	// BoatName is the name of the moored boat.
	BoatName string `json:"boatName" db:"boat_name"`

	// StartDate is the first instant of the stay.
	StartDate time.Time `json:"startDate" db:"start_date"`

	// EndDate is the last instant of the stay. It is never before StartDate.
	EndDate time.Time `json:"endDate" db:"end_date"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ActiveAt reports whether the reservation covers t, bounds included.
func (r Reservation) ActiveAt(t time.Time) bool {
	return !t.Before(r.StartDate) && !t.After(r.EndDate)
}
