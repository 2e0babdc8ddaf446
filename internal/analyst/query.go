package analyst

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidQuery = errors.New("analyst: invalid query")

type Operation string

const (
	OpCount    Operation = "count"
	OpSum      Operation = "sum"
	OpAvg      Operation = "avg"
	OpMode     Operation = "mode"
	OpTop      Operation = "top"
	OpDistinct Operation = "distinct"
)

const (
	FieldPrice   = "price"
	FieldService = "service"
	FieldBarber  = "barber"
	FieldClient  = "client"
	FieldVenue   = "venue"
	FieldDay     = "day"
	FieldMonth   = "month"

	maxLimit     = 50
	defaultLimit = 5
)

var categorical = map[string]bool{
	FieldService: true,
	FieldBarber:  true,
	FieldClient:  true,
	FieldVenue:   true,
	FieldDay:     true,
	FieldMonth:   true,
}

// Query is the only thing the model may produce. It is data, never code.
type Query struct {
	Operation Operation `json:"operation"`
	Field     string    `json:"field,omitempty"`
	GroupBy   string    `json:"group_by,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Filter    Filter    `json:"filter,omitempty"`
}

// Filter matches labels case-insensitively; dates are inclusive.
type Filter struct {
	Service string `json:"service,omitempty"`
	Barber  string `json:"barber,omitempty"`
	Client  string `json:"client,omitempty"`
	Venue   string `json:"venue,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

// ParseQuery extracts the first JSON object from the model's text and
// validates it. Unknown fields are rejected.
func ParseQuery(text string) (Query, error) {
	raw, err := firstObject(text)
	if err != nil {
		return Query{}, err
	}

	var q Query
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		return Query{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (q *Query) Validate() error {
	q.Field = strings.ToLower(strings.TrimSpace(q.Field))
	q.GroupBy = strings.ToLower(strings.TrimSpace(q.GroupBy))

	if q.GroupBy != "" && !categorical[q.GroupBy] {
		return fmt.Errorf("%w: cannot group by %q", ErrInvalidQuery, q.GroupBy)
	}
	if q.Limit < 0 || q.Limit > maxLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidQuery, maxLimit)
	}

	switch q.Operation {
	case OpCount:
		if q.Field != "" {
			return fmt.Errorf("%w: count takes no field", ErrInvalidQuery)
		}
	case OpSum, OpAvg:
		if q.Field != FieldPrice {
			return fmt.Errorf("%w: %s only applies to %q", ErrInvalidQuery, q.Operation, FieldPrice)
		}
	case OpMode, OpDistinct:
		if !categorical[q.Field] {
			return fmt.Errorf("%w: %s needs a categorical field, got %q", ErrInvalidQuery, q.Operation, q.Field)
		}
		if q.GroupBy != "" {
			return fmt.Errorf("%w: %s cannot be grouped", ErrInvalidQuery, q.Operation)
		}
	case OpTop:
		if q.GroupBy == "" {
			return fmt.Errorf("%w: top needs group_by", ErrInvalidQuery)
		}
		if q.Field != "" && q.Field != FieldPrice {
			return fmt.Errorf("%w: top ranks by count or %q", ErrInvalidQuery, FieldPrice)
		}
		if q.Limit == 0 {
			q.Limit = defaultLimit
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidQuery, q.Operation)
	}
	return nil
}

// firstObject returns the first balanced {...} block, skipping braces
// inside strings. Models like to wrap JSON in prose or code fences.
func firstObject(text string) ([]byte, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object in answer", ErrInvalidQuery)
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return []byte(text[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unterminated JSON object", ErrInvalidQuery)
}
