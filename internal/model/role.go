package model

import "strings"

// Role is the closed set of account roles.  The zero value is not a valid role.
type Role string

const (
    RoleSuperAdmin Role = "SUPER_ADMIN"
    RoleAdmin      Role = "ADMIN"
    RoleStaff      Role = "STAFF"
    RoleCoach      Role = "COACH"
    RolePlayer     Role = "PLAYER"
)

// Roles lists every role, most privileged first.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleStaff, RoleCoach, RolePlayer}

// ParseRole normalizes s (trim, upper-case) and reports whether it names a role.
func ParseRole(s string) (Role, bool) {
    r := Role(strings.ToUpper(strings.TrimSpace(s)))
    return r, r.Valid()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleSuperAdmin, RoleAdmin, RoleStaff, RoleCoach, RolePlayer:
        return true
    }
    return false
}

// IsAdministrative reports whether r is ADMIN or SUPER_ADMIN.
func (r Role) IsAdministrative() bool { return r == RoleAdmin || r == RoleSuperAdmin }

func (r Role) String() string { return string(r) }
