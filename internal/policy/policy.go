// Package policy decides which account actions a caller may perform on which users.
package policy

import "github.com/eventdesk/event-ticketing/internal/domain"

// Action names an operation guarded by the policy table.
type Action string

const (
	ApproveUser     Action = "approve_user"
	SuspendUser     Action = "suspend_user"
	ListEventOwners Action = "list_event_owners"
	ListBaseUsers   Action = "list_base_users"
)

// Actor is the caller as seen by the policy: the token identity plus its company link.
type Actor struct {
	ID        string
	Role      domain.Role
	CompanyID string
}

// Rule reports whether actor may act on target. Target is nil for listing actions.
type Rule func(actor Actor, target *domain.User) bool

func always(Actor, *domain.User) bool { return true }

// ownsBaseUser allows an event owner to act on base users of its own company.
func ownsBaseUser(actor Actor, target *domain.User) bool {
	return target != nil &&
		target.Role == domain.RoleBaseUser &&
		actor.CompanyID != "" &&
		target.CompanyID == actor.CompanyID
}

func hasCompany(actor Actor, _ *domain.User) bool { return actor.CompanyID != "" }

var table = map[Action]map[domain.Role]Rule{
	ApproveUser: {
		domain.RoleSuperAdmin: always,
		domain.RoleEventOwner: ownsBaseUser,
	},
	SuspendUser: {
		domain.RoleSuperAdmin: always,
		domain.RoleEventOwner: ownsBaseUser,
	},
	ListEventOwners: {
		domain.RoleSuperAdmin: always,
	},
	ListBaseUsers: {
		domain.RoleSuperAdmin: always,
		domain.RoleEventOwner: hasCompany,
	},
}

// Allowed reports whether actor may perform action on target.
func Allowed(action Action, actor Actor, target *domain.User) bool {
	rule, ok := table[action][actor.Role]
	if !ok {
		return false
	}
	return rule(actor, target)
}

// NeedsCompany reports whether evaluating action for role depends on the actor's company link.
func NeedsCompany(role domain.Role) bool {
	return role == domain.RoleEventOwner
}

// Scope restricts a listing to a subset of users.
type Scope struct {
	All       bool
	CompanyID string
}

// BaseUserScope returns which base users actor may list.
func BaseUserScope(actor Actor) (Scope, bool) {
	if !Allowed(ListBaseUsers, actor, nil) {
		return Scope{}, false
	}
	if actor.Role == domain.RoleSuperAdmin {
		return Scope{All: true}, true
	}
	return Scope{CompanyID: actor.CompanyID}, true
}
