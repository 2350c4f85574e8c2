package registry

// Role is an on-chain user role. Values mirror the contract enum.
type Role uint8

const (
	RoleStudent Role = iota
	RoleProfessor
	RolePregradeCoordinator
	RolePostgradeCoordinator
	RoleCareerCoordinator
	RoleAdministrator
)

// Valid reports whether the value is a defined role.
func (r Role) Valid() bool {
	return r <= RoleAdministrator
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleProfessor:
		return "professor"
	case RolePregradeCoordinator:
		return "pregrade-coordinator"
	case RolePostgradeCoordinator:
		return "postgrade-coordinator"
	case RoleCareerCoordinator:
		return "career-coordinator"
	case RoleAdministrator:
		return "administrator"
	default:
		return "unknown"
	}
}

// HasRole reports whether roles contains want.
func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
