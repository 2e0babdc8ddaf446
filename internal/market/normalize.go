package market

import (
	"regexp"
	"strings"
)

// Applied in order; a header containing the key becomes the value.
var headerReplacements = []struct{ old, new string }{
	{"razon social", "nombre del establecimiento"},
	{"nombre establecimiento", "nombre del establecimiento"},
	{"departamento domicilio", "departamento"},
	{"municipio domicilio", "municipio"},
	{"depto", "departamento"},
}

var trailingPunct = regexp.MustCompile(`[^a-z0-9\s]+$`)

// NormalizeHeader lowercases, turns _ and - into spaces, collapses
// whitespace, folds known synonyms and strips trailing punctuation.
func NormalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	for _, r := range headerReplacements {
		if strings.Contains(s, r.old) {
			s = r.new
		}
	}
	return strings.TrimSpace(trailingPunct.ReplaceAllString(s, ""))
}
