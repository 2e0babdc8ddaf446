package schema

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// IsIdentifier reports whether a canonical column holds an entity key.
func IsIdentifier(column string) bool {
	return column == "id" || strings.HasSuffix(column, "_id")
}

// ParseID turns a raw cell into an integer key.
// Blank cells are a valid null (ok=true); anything non-integral is an
// invalid null (ok=false) so callers can count it.
func ParseID(raw string) (id *int64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return nil, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return &n, true
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, false
	}
	// "3.0" comes out of spreadsheets and float-typed JSON
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, false
	}
	// float64(math.MaxInt64) is 2^63, which does not fit
	if f >= 0x1p63 || f < -0x1p63 {
		return nil, false
	}
	n = int64(f)
	return &n, true
}

// ParseNumber reads prices and durations. Currency symbol, spaces and
// thousands commas are stripped; the dot is the decimal separator.
func ParseNumber(raw string) (v *float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return nil, true
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "").Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}
