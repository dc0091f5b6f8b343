package domain

// Role is a board role a champion is eligible for, derived from upstream
// play-rate data.
type Role string

const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleBot     Role = "BOT"
	RoleSupport Role = "SUPPORT"
)

// AllRoles contains all valid roles in board order.
var AllRoles = []Role{RoleTop, RoleJungle, RoleMid, RoleBot, RoleSupport}

// IsValid checks if a role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleTop, RoleJungle, RoleMid, RoleBot, RoleSupport:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
