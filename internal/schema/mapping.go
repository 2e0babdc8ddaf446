package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

//go:embed mapping.yaml
var defaultMapping []byte

// Fields are the canonical columns each entity decodes into.
var Fields = map[models.Entity][]string{
	models.EntityClients:      {"id", "first_name", "last_name", "full_name", "phone", "email"},
	models.EntityBarbers:      {"id", "first_name", "last_name", "full_name", "venue_id"},
	models.EntityServices:     {"id", "name", "price", "duration_min"},
	models.EntityVenues:       {"id", "name"},
	models.EntityAppointments: {"id", "client_id", "barber_id", "service_id", "venue_id", "date", "time"},
}

type EntityMapping struct {
	File      string              `yaml:"file"`
	Endpoints []string            `yaml:"endpoints"`
	Required  []string            `yaml:"required"`
	Columns   map[string][]string `yaml:"columns"`

	exact      map[string]string
	normalized map[string]string
}

type Mapping struct {
	Entities map[models.Entity]*EntityMapping `yaml:"entities"`
}

// Default returns the embedded mapping. It panics only if the embedded file is
// broken, which the tests guard.
func Default() *Mapping {
	m, err := Parse(defaultMapping)
	if err != nil {
		panic(fmt.Sprintf("schema: embedded mapping is invalid: %v", err))
	}
	return m
}

// Load reads a mapping file; an empty path means the embedded default.
func Load(path string) (*Mapping, error) {
	if path == "" {
		return Parse(defaultMapping)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema mapping: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse schema mapping: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the mapping against the canonical field list and builds
// the alias indexes. Drift in the mapping fails here, not while joining.
func (m *Mapping) Validate() error {
	if len(m.Entities) == 0 {
		return fmt.Errorf("schema mapping: no entities declared")
	}
	for entity := range m.Entities {
		if !entity.Valid() {
			return fmt.Errorf("schema mapping: unknown entity %q", entity)
		}
	}

	for _, entity := range models.Entities {
		em, ok := m.Entities[entity]
		if !ok || em == nil {
			return fmt.Errorf("schema mapping: entity %q is missing", entity)
		}
		if strings.TrimSpace(em.File) == "" {
			return fmt.Errorf("schema mapping: %s: file is required", entity)
		}
		if len(em.Endpoints) == 0 {
			return fmt.Errorf("schema mapping: %s: at least one endpoint is required", entity)
		}

		known := make(map[string]bool, len(Fields[entity]))
		for _, f := range Fields[entity] {
			known[f] = true
		}

		em.exact = make(map[string]string)
		em.normalized = make(map[string]string)

		canonicals := make([]string, 0, len(em.Columns))
		for canonical := range em.Columns {
			canonicals = append(canonicals, canonical)
		}
		sort.Strings(canonicals)

		for _, canonical := range canonicals {
			if !known[canonical] {
				return fmt.Errorf("schema mapping: %s: unknown canonical column %q", entity, canonical)
			}
			aliases := append([]string{canonical}, em.Columns[canonical]...)
			for _, alias := range aliases {
				if prev, ok := em.exact[alias]; ok && prev != canonical {
					return fmt.Errorf("schema mapping: %s: alias %q claimed by %q and %q", entity, alias, prev, canonical)
				}
				em.exact[alias] = canonical

				key := Normalize(alias)
				if key == "" {
					return fmt.Errorf("schema mapping: %s: empty alias for %q", entity, canonical)
				}
				if prev, ok := em.normalized[key]; ok && prev != canonical {
					return fmt.Errorf("schema mapping: %s: alias %q (%s) claimed by %q and %q", entity, alias, key, prev, canonical)
				}
				em.normalized[key] = canonical
			}
		}

		// canonical names always match themselves
		for _, f := range Fields[entity] {
			if _, ok := em.exact[f]; !ok {
				em.exact[f] = f
				em.normalized[Normalize(f)] = f
			}
		}

		for _, req := range em.Required {
			if _, ok := em.Columns[req]; !ok {
				return fmt.Errorf("schema mapping: %s: required column %q has no aliases", entity, req)
			}
		}
	}
	return nil
}

// Normalize lowercases and keeps only letters and digits.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Header is a source header resolved against the canonical schema.
type Header struct {
	// Columns has one entry per source column: the canonical name, or the
	// original header when it is passed through.
	Columns []string
	// Canonical marks which entries of Columns were translated.
	Canonical []bool
	// Missing lists required canonical columns the source did not provide.
	Missing []string
	// Duplicates lists source headers that mapped to an already taken column.
	Duplicates []string
}

func (m *Mapping) Resolve(entity models.Entity, headers []string) Header {
	em := m.Entities[entity]
	h := Header{
		Columns:   make([]string, len(headers)),
		Canonical: make([]bool, len(headers)),
	}
	taken := make(map[string]bool)

	for i, raw := range headers {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		canonical, ok := em.exact[name]
		if !ok {
			canonical, ok = em.normalized[Normalize(name)]
		}
		if ok && !taken[canonical] {
			taken[canonical] = true
			h.Columns[i] = canonical
			h.Canonical[i] = true
			continue
		}
		if ok {
			h.Duplicates = append(h.Duplicates, name)
		}
		h.Columns[i] = name
	}

	for _, req := range em.Required {
		if !taken[req] {
			h.Missing = append(h.Missing, req)
		}
	}
	return h
}

func (m *Mapping) File(entity models.Entity) string {
	return m.Entities[entity].File
}

func (m *Mapping) Endpoints(entity models.Entity) []string {
	return m.Entities[entity].Endpoints
}
