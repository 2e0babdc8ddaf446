package dto

import (
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
)

// ViewRowDTO is one row of the unified view as the console shows it.
// Appointment fields are null for clients without appointments.
type ViewRowDTO struct {
	AppointmentID *int64   `json:"appointment_id"`
	Date          *string  `json:"date"`
	Time          string   `json:"time"`
	ClientID      *int64   `json:"client_id"`
	ClientName    string   `json:"client_name"`
	Phone         string   `json:"phone"`
	BarberID      *int64   `json:"barber_id"`
	BarberName    string   `json:"barber_name"`
	ServiceID     *int64   `json:"service_id"`
	ServiceName   string   `json:"service_name"`
	VenueID       *int64   `json:"venue_id"`
	VenueName     string   `json:"venue_name"`
	Price         *float64 `json:"price"`
}

func NewViewRowDTO(r view.Row) ViewRowDTO {
	out := ViewRowDTO{
		Time:        r.Time(),
		ClientID:    r.ClientID(),
		ClientName:  r.ClientFullName,
		Phone:       r.Phone(),
		BarberID:    r.BarberID(),
		BarberName:  r.BarberFullName,
		ServiceID:   r.ServiceID(),
		ServiceName: r.ServiceName(),
		VenueID:     r.VenueID(),
		VenueName:   r.VenueName(),
		Price:       r.Price(),
	}
	if r.Appointment != nil {
		out.AppointmentID = r.Appointment.ID
	}
	if r.Date != nil {
		d := r.Date.Format("2006-01-02")
		out.Date = &d
	}
	return out
}

func NewViewRowDTOs(rows []view.Row) []ViewRowDTO {
	out := make([]ViewRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewViewRowDTO(r))
	}
	return out
}
