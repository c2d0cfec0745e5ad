package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles. Wire values follow the original
// Portuguese API.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleClinician    Role = "medico"
	RoleReceptionist Role = "recepcionista"
)

var AllRoles = []Role{RoleAdmin, RoleClinician, RoleReceptionist}

// ParseRole validates a raw role string. An empty value is rejected; callers
// apply their own default first.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleClinician, RoleReceptionist:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q: must be admin, medico or recepcionista", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }
