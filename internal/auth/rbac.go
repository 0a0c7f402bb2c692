package auth

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleUser      Role = "user"
)

// AllRoles lists every role a caller may hold.
var AllRoles = []Role{RoleAdmin, RoleOrganizer, RoleUser}

// ParseRole maps a claim value onto a known role. Unknown values report ok=false.
func ParseRole(role string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleOrganizer):
		return RoleOrganizer, true
	case string(RoleUser):
		return RoleUser, true
	default:
		return "", false
	}
}

func HasRole(role Role, allowed ...Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role Role) bool {
	return role == RoleAdmin
}
