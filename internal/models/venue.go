package models

// Sede
type Venue struct {
	ID    *int64            `json:"id"`
	Name  string            `json:"name"`
	Extra map[string]string `json:"extra,omitempty"`
}
