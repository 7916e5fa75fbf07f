package domain

// Principal is the opaque, externally-verified caller identity handed
// to the backend on every call. The backend never authenticates it,
// only compares it and maps it to a role.
type Principal string

func (p Principal) IsZero() bool {
	return p == ""
}

// Role is the single authorization axis. Every principal holds exactly
// one role at any time; principals never assigned one are guests.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleGuest:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
