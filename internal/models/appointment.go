package models

// Appointment keeps date and time as they arrived; parsing happens when the
// unified view is built.
type Appointment struct {
	ID        *int64            `json:"id"`
	ClientID  *int64            `json:"client_id"`
	BarberID  *int64            `json:"barber_id"`
	ServiceID *int64            `json:"service_id"`
	VenueID   *int64            `json:"venue_id"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	Extra     map[string]string `json:"extra,omitempty"`
}
