package database

type Role string

const (
	RoleAnon          Role = "anon"
	RoleAuthenticated Role = "authenticated"
	RoleService       Role = "service"
)

// Principal is the identity row-level policies are evaluated against.
type Principal struct {
	Role   Role
	UserID string
}

func Anon() Principal {
	return Principal{Role: RoleAnon}
}

func User(userID string) Principal {
	if userID == "" {
		return Anon()
	}
	return Principal{Role: RoleAuthenticated, UserID: userID}
}

func Service() Principal {
	return Principal{Role: RoleService}
}

func (p Principal) IsAnon() bool {
	return p.Role == RoleAnon
}

func (p Principal) IsService() bool {
	return p.Role == RoleService
}
