package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// ActorContext is the already-authenticated caller of an operation.
type ActorContext struct {
	ID   uint
	Role Role
}

func (a ActorContext) Valid() bool { return a.ID != 0 && a.Role.Valid() }
