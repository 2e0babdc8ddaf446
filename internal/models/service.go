package models

type Service struct {
	ID          *int64            `json:"id"`
	Name        string            `json:"name"`
	Price       *float64          `json:"price"`
	DurationMin *float64          `json:"duration_min"`
	Extra       map[string]string `json:"extra,omitempty"`
}
