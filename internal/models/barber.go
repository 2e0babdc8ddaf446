package models

type Barber struct {
	ID        *int64            `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	FullName  string            `json:"full_name,omitempty"`
	VenueID   *int64            `json:"venue_id"`
	Extra     map[string]string `json:"extra,omitempty"`
}

func (b Barber) DisplayName() string {
	return joinName(b.FirstName, b.LastName, b.FullName)
}
