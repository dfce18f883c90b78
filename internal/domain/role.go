package domain

import "strings"

// Role enumerates the platform roles. The zero value means "not recognized".
type Role string

const (
	RoleAdmin      Role = "administrador"
	RoleTechnician Role = "tecnico"
	RoleEndUser    Role = "usuario_final"
)

var roleAliases = map[string]Role{
	"administrador":   RoleAdmin,
	"admin":           RoleAdmin,
	"tecnico":         RoleTechnician,
	"tecnico_soporte": RoleTechnician,
	"usuario_final":   RoleEndUser,
	"usuario":         RoleEndUser,
}

// ParseRole normalizes a stored or token-supplied role name. It is the only place
// aliases are resolved.
func ParseRole(raw string) (Role, bool) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	return role, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleEndUser:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID int64
	Role   Role
}
