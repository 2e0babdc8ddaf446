package models

// Entity names one of the five source relations.
type Entity string

const (
	EntityClients      Entity = "clients"
	EntityBarbers      Entity = "barbers"
	EntityServices     Entity = "services"
	EntityVenues       Entity = "venues"
	EntityAppointments Entity = "appointments"
)

// Entities lists every relation in load order.
var Entities = []Entity{
	EntityClients,
	EntityBarbers,
	EntityServices,
	EntityVenues,
	EntityAppointments,
}

func (e Entity) Valid() bool {
	for _, known := range Entities {
		if e == known {
			return true
		}
	}
	return false
}

// Relations holds the five tables already translated to the canonical schema.
type Relations struct {
	Clients      []Client      `json:"clients"`
	Barbers      []Barber      `json:"barbers"`
	Services     []Service     `json:"services"`
	Venues       []Venue       `json:"venues"`
	Appointments []Appointment `json:"appointments"`
}

func (r Relations) Count(e Entity) int {
	switch e {
	case EntityClients:
		return len(r.Clients)
	case EntityBarbers:
		return len(r.Barbers)
	case EntityServices:
		return len(r.Services)
	case EntityVenues:
		return len(r.Venues)
	case EntityAppointments:
		return len(r.Appointments)
	}
	return 0
}
