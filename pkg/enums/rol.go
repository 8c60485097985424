package enums

import "fmt"

// Rol identifies one of the four fixed platform roles. Permission checks are
// set-membership tests against the caller's role set, never string matching
// on free-form names.
type Rol string

const (
	RolAdministrador  Rol = "Administrador"
	RolPersonalVivero Rol = "Personal Vivero"
	RolTecnicoCampo   Rol = "Tecnico Campo"
	RolAgricultor     Rol = "Agricultor"
)

var validRoles = []Rol{
	RolAdministrador,
	RolPersonalVivero,
	RolTecnicoCampo,
	RolAgricultor,
}

// String implements fmt.Stringer.
func (r Rol) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Rol.
func (r Rol) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRol converts raw input into a Rol.
func ParseRol(value string) (Rol, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rol %q", value)
}

// RolSet is a capability set used for endpoint authorization.
type RolSet map[Rol]struct{}

// NewRolSet builds a set from the provided roles, skipping invalid values.
func NewRolSet(roles ...Rol) RolSet {
	set := make(RolSet, len(roles))
	for _, r := range roles {
		if r.IsValid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// ParseRolSet builds a set from raw role names, skipping unknown values.
func ParseRolSet(values []string) RolSet {
	set := make(RolSet, len(values))
	for _, v := range values {
		if r, err := ParseRol(v); err == nil {
			set[r] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the role belongs to the set.
func (s RolSet) Contains(r Rol) bool {
	_, ok := s[r]
	return ok
}

// ContainsAny reports whether any of the given roles belongs to the set.
func (s RolSet) ContainsAny(roles ...Rol) bool {
	for _, r := range roles {
		if s.Contains(r) {
			return true
		}
	}
	return false
}

// Slice returns the set members in declaration order.
func (s RolSet) Slice() []Rol {
	out := make([]Rol, 0, len(s))
	for _, candidate := range validRoles {
		if s.Contains(candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

// Strings returns the set members as raw names in declaration order.
func (s RolSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
