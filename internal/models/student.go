package models

import "strings"

// Student is a roster entry taking part in a seating allocation. Group is the
// branch/department that must not repeat on adjacent seats.
type Student struct {
	Name    string `json:"name" validate:"required"`
	ID      string `json:"id" validate:"required"`
	Group   string `json:"group"`
	Contact string `json:"contact,omitempty"`
}

// Key returns the identity used for duplicate detection and lookups.
func (s Student) Key() string {
	return normalizeID(s.ID)
}

// NormalizeID trims and upper-cases an identifier so hall tickets match
// regardless of how they were typed.
func NormalizeID(id string) string {
	return normalizeID(id)
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
