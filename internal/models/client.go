package models

import "strings"

// Cliente da barbearia, somente leitura (vem do CSV ou da API)
type Client struct {
	ID        *int64            `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	FullName  string            `json:"full_name,omitempty"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// DisplayName is first + " " + last, or the source full name when both are blank.
func (c Client) DisplayName() string {
	return joinName(c.FirstName, c.LastName, c.FullName)
}

func joinName(first, last, full string) string {
	name := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if name == "" {
		return strings.TrimSpace(full)
	}
	return name
}
