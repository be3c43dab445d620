package models

// FacultyMember is an entry of the faculty directory allowed to sign in.
type FacultyMember struct {
	ID   string   `json:"id" validate:"required"`
	Name string   `json:"name"`
	Role UserRole `json:"role" validate:"omitempty,oneof=ADMIN FACULTY"`
}

// FacultyDirectory is the authorization document: one shared secure key hash
// and the faculty ids permitted to use it.
type FacultyDirectory struct {
	SecureKeyHash string          `json:"secureKeyHash" validate:"required"`
	Faculty       []FacultyMember `json:"faculty" validate:"required,min=1,dive"`
}

// Lookup returns the member with the given id, compared case-insensitively
// after trimming.
func (d FacultyDirectory) Lookup(id string) (FacultyMember, bool) {
	id = normalizeID(id)
	for _, member := range d.Faculty {
		if normalizeID(member.ID) == id {
			return member, true
		}
	}
	return FacultyMember{}, false
}
