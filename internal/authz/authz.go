// Package authz decides what a member may do. The evaluator is pure:
// callers pass the acting account and the target resource in
// explicitly, and denials come back as decisions with a reason
// instead of errors.
package authz

// Role is one of the closed set of grant names. Names outside this
// set never match a rule.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleModerator     Role = "moderator"
	RoleLibrarian     Role = "librarian"
)

// ParseRole maps a stored role name onto the closed set.
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleAdministrator, RoleModerator, RoleLibrarian:
		return Role(name), true
	}
	return "", false
}

// Action names every permission-checked operation.
type Action string

const (
	ActionEditArticle   Action = "article.edit"
	ActionEditNews      Action = "news.edit"
	ActionApproveNews   Action = "news.approve"
	ActionEditTip       Action = "tip.edit"
	ActionEditTerm      Action = "term.edit"
	ActionDeleteComment Action = "comment.delete"
)

// RoleSet is a membership set over role identifiers.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether any of the given roles is in the set.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller as the evaluator sees it.
type Actor struct {
	ID    uint
	Roles RoleSet
}

// NewActor builds an actor from stored role names, dropping names
// outside the closed set.
func NewActor(id uint, roleNames ...string) *Actor {
	set := make(RoleSet, len(roleNames))
	for _, name := range roleNames {
		if role, ok := ParseRole(name); ok {
			set[role] = struct{}{}
		}
	}
	return &Actor{ID: id, Roles: set}
}

// Owned is any resource with a single owning account.
type Owned interface {
	OwnedBy() uint
}

// Reason says why a decision denied.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbidden       Reason = "forbidden"
)

// Decision is the evaluator's answer.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// ownerMayAct marks the actions where owning the resource is enough.
var ownerMayAct = map[Action]bool{
	ActionEditArticle:   true,
	ActionEditNews:      true,
	ActionEditTip:       true,
	ActionDeleteComment: true,
}

// elevatedRoles lists the roles that may perform an action on
// resources they do not own. Actions without an entry deny.
var elevatedRoles = map[Action][]Role{
	ActionEditArticle:   {RoleAdministrator},
	ActionEditNews:      {RoleAdministrator, RoleModerator},
	ActionApproveNews:   {RoleAdministrator, RoleModerator},
	ActionEditTip:       {RoleAdministrator, RoleLibrarian},
	ActionDeleteComment: {RoleAdministrator, RoleModerator},
}

// CanPerform decides whether actor may apply action to resource.
// A nil actor is anonymous and denies everything here. A nil
// resource skips the ownership gate, leaving only role grants.
func CanPerform(actor *Actor, action Action, resource Owned) Decision {
	if actor == nil {
		return deny(ReasonUnauthenticated)
	}

	// Glossary edits are open to every signed-in member.
	if action == ActionEditTerm {
		return allow
	}

	if ownerMayAct[action] && resource != nil && resource.OwnedBy() == actor.ID {
		return allow
	}

	if actor.Roles.HasAny(elevatedRoles[action]...) {
		return allow
	}

	return deny(ReasonForbidden)
}
