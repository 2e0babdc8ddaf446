package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
)

const dateLayout = "2006-01-02"

// FilterRequest is the filter as it arrives in JSON bodies.
type FilterRequest struct {
	VenueID   *int64 `json:"venue_id"`
	BarberID  *int64 `json:"barber_id"`
	ClientID  *int64 `json:"client_id"`
	ServiceID *int64 `json:"service_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

func (r FilterRequest) ToFilter() (view.Filter, bool) {
	f := view.Filter{
		VenueID:   r.VenueID,
		BarberID:  r.BarberID,
		ClientID:  r.ClientID,
		ServiceID: r.ServiceID,
	}
	var ok bool
	if f.From, ok = parseDay(r.From); !ok {
		return view.Filter{}, false
	}
	if f.To, ok = parseDay(r.To); !ok {
		return view.Filter{}, false
	}
	return f, true
}

// filterFromQuery reads venue_id, barber_id, client_id, service_id, from
// and to. ok is false when any present value is malformed.
func filterFromQuery(c *gin.Context) (view.Filter, bool) {
	var req FilterRequest
	for key, dst := range map[string]**int64{
		"venue_id":   &req.VenueID,
		"barber_id":  &req.BarberID,
		"client_id":  &req.ClientID,
		"service_id": &req.ServiceID,
	} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return view.Filter{}, false
		}
		*dst = &v
	}
	req.From = c.Query("from")
	req.To = c.Query("to")
	return req.ToFilter()
}

func parseDay(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
