package entities

import "strings"

type ActorRole string

const (
	ActorRoleBrand      ActorRole = "brand"
	ActorRoleCreator    ActorRole = "creator"
	ActorRoleOperations ActorRole = "operations"
	ActorRoleSystem     ActorRole = "system"
)

// Actor is the acting identity passed explicitly into every operation.
type Actor struct {
	ActorID string
	Role    ActorRole
}

func SystemActor(id string) Actor {
	if strings.TrimSpace(id) == "" {
		id = "system"
	}
	return Actor{ActorID: id, Role: ActorRoleSystem}
}

func (a Actor) Valid() bool {
	if strings.TrimSpace(a.ActorID) == "" {
		return false
	}
	return IsSupportedActorRole(a.Role)
}

// IsStaff reports whether the actor acts on behalf of operations/finance.
func (a Actor) IsStaff() bool {
	return a.Role == ActorRoleOperations || a.Role == ActorRoleSystem
}

func IsSupportedActorRole(role ActorRole) bool {
	switch role {
	case ActorRoleBrand, ActorRoleCreator, ActorRoleOperations, ActorRoleSystem:
		return true
	default:
		return false
	}
}
