package view

import (
	"fmt"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

// Anchor is the relation every output row starts from.
type Anchor string

const (
	AnchorClients      Anchor = "clients"
	AnchorAppointments Anchor = "appointments"
)

// Policy decides what happens to a row whose key has no match.
type Policy string

const (
	PolicyLeft  Policy = "left"
	PolicyInner Policy = "inner"
)

type Options struct {
	Anchor Anchor
	Policy Policy
	// Required relations must be non-empty or Build returns ErrEmptyRelation.
	Required []models.Entity
}

// DefaultRequired leaves venues optional: a missing venues table null-fills.
var DefaultRequired = []models.Entity{
	models.EntityClients,
	models.EntityBarbers,
	models.EntityServices,
	models.EntityAppointments,
}

func DefaultOptions() Options {
	return Options{
		Anchor:   AnchorClients,
		Policy:   PolicyLeft,
		Required: DefaultRequired,
	}
}

func (o Options) withDefaults() (Options, error) {
	if o.Anchor == "" {
		o.Anchor = AnchorClients
	}
	if o.Policy == "" {
		o.Policy = PolicyLeft
	}
	if o.Required == nil {
		o.Required = DefaultRequired
	}

	switch o.Anchor {
	case AnchorClients, AnchorAppointments:
	default:
		return o, fmt.Errorf("view: unknown anchor %q", o.Anchor)
	}
	switch o.Policy {
	case PolicyLeft, PolicyInner:
	default:
		return o, fmt.Errorf("view: unknown join policy %q", o.Policy)
	}
	for _, e := range o.Required {
		if !e.Valid() {
			return o, fmt.Errorf("view: unknown required relation %q", e)
		}
	}
	return o, nil
}
