// Package access is the single authorization gate for budget operations.
//
// Every mutation consults the permission table here instead of re-checking
// roles inside route handlers. Denials carry no information about whether the
// target resource exists.
package access

import (
	"errors"

	"vitta_logistica/internal/domain/entities"
)

// ErrAccessDenied is intentionally generic: the same error is returned for
// every denied (role, action) pair.
var ErrAccessDenied = errors.New("access denied")

// Action is a budget operation subject to authorization.

type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
)

// permissions maps each action to the roles allowed to perform it.
// Pairs absent from this table are denied.
var permissions = map[Action]map[entities.Role]bool{
	ActionCreate: {
		entities.RoleOperador:      true,
		entities.RoleAprovador:     true,
		entities.RoleAdministrador: true,
	},
	ActionRead: {
		entities.RoleOperador:      true,
		entities.RoleAprovador:     true,
		entities.RoleAdministrador: true,
	},
	ActionUpdate: {
		entities.RoleOperador:      true,
		entities.RoleAprovador:     true,
		entities.RoleAdministrador: true,
	},
	ActionSubmit: {
		entities.RoleOperador:      true,
		entities.RoleAprovador:     true,
		entities.RoleAdministrador: true,
	},
	ActionApprove: {
		entities.RoleAprovador:     true,
		entities.RoleAdministrador: true,
	},
	ActionReject: {
		entities.RoleAprovador:     true,
		entities.RoleAdministrador: true,
	},
	ActionDelete: {
		entities.RoleAdministrador: true,
	},
}

// Authorize returns nil when the principal's role may perform the action and
// ErrAccessDenied otherwise.
func Authorize(p entities.Principal, a Action) error {
	if permissions[a][p.Role] {
		return nil
	}
	return ErrAccessDenied
}
