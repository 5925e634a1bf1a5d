package entities

// Role is the access profile carried by an authenticated principal.

type Role string

const (
	RoleOperador      Role = "operador"
	RoleAprovador     Role = "aprovador"
	RoleAdministrador Role = "administrador"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOperador, RoleAprovador, RoleAdministrador:
		return true
	}
	return false
}

// Principal is the already-authenticated actor performing an operation.
// Token verification happens upstream; the domain trusts these fields.
type Principal struct {
	ID   string
	Name string
	Role Role
}
