package view

import (
	"time"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

// Row is one line of the unified view. Any pointer may be nil when the
// relation had no match; Appointment is nil for clients without visits.
type Row struct {
	Appointment *models.Appointment
	Client      *models.Client
	Barber      *models.Barber
	Service     *models.Service
	Venue       *models.Venue

	ClientFullName string
	BarberFullName string
	// Date is nil when the source date was blank or unparseable.
	Date *time.Time
}

func (r Row) HasAppointment() bool { return r.Appointment != nil }

func (r Row) ClientID() *int64 {
	if r.Client != nil {
		return r.Client.ID
	}
	return nil
}

func (r Row) BarberID() *int64 {
	if r.Barber != nil {
		return r.Barber.ID
	}
	return nil
}

func (r Row) ServiceID() *int64 {
	if r.Service != nil {
		return r.Service.ID
	}
	return nil
}

func (r Row) VenueID() *int64 {
	if r.Venue != nil {
		return r.Venue.ID
	}
	return nil
}

func (r Row) ServiceName() string {
	if r.Service != nil {
		return r.Service.Name
	}
	return ""
}

func (r Row) VenueName() string {
	if r.Venue != nil {
		return r.Venue.Name
	}
	return ""
}

// Price is the service price of an actual appointment.
func (r Row) Price() *float64 {
	if r.Appointment == nil || r.Service == nil {
		return nil
	}
	return r.Service.Price
}

func (r Row) Time() string {
	if r.Appointment != nil {
		return r.Appointment.Time
	}
	return ""
}

func (r Row) Phone() string {
	if r.Client != nil {
		return r.Client.Phone
	}
	return ""
}
