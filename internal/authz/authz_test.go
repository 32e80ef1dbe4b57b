package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ownedResource struct {
	ownerID uint
}

func (r ownedResource) OwnedBy() uint { return r.ownerID }

func TestCanPerform(t *testing.T) {
	owner := NewActor(1)
	stranger := NewActor(2)
	admin := NewActor(3, "administrator")
	moderator := NewActor(4, "moderator")
	librarian := NewActor(5, "librarian")
	article := ownedResource{ownerID: 1}

	tests := []struct {
		name     string
		actor    *Actor
		action   Action
		resource Owned
		allowed  bool
		reason   Reason
	}{
		{"anonymous denies with unauthenticated", nil, ActionEditArticle, article, false, ReasonUnauthenticated},
		{"anonymous denies even role-free actions", nil, ActionEditTerm, nil, false, ReasonUnauthenticated},
		{"owner edits own article", owner, ActionEditArticle, article, true, ""},
		{"stranger cannot edit foreign article", stranger, ActionEditArticle, article, false, ReasonForbidden},
		{"administrator edits any article", admin, ActionEditArticle, article, true, ""},
		{"moderator cannot edit foreign article", moderator, ActionEditArticle, article, false, ReasonForbidden},
		{"owner edits own news item", owner, ActionEditNews, ownedResource{ownerID: 1}, true, ""},
		{"moderator edits foreign news item", moderator, ActionEditNews, ownedResource{ownerID: 1}, true, ""},
		{"moderator approves news", moderator, ActionApproveNews, ownedResource{ownerID: 1}, true, ""},
		{"administrator approves news", admin, ActionApproveNews, nil, true, ""},
		{"author cannot approve own submission", owner, ActionApproveNews, article, false, ReasonForbidden},
		{"librarian cannot approve news", librarian, ActionApproveNews, nil, false, ReasonForbidden},
		{"librarian curates foreign tip", librarian, ActionEditTip, ownedResource{ownerID: 9}, true, ""},
		{"stranger cannot edit foreign tip", stranger, ActionEditTip, ownedResource{ownerID: 9}, false, ReasonForbidden},
		{"any member edits glossary terms", stranger, ActionEditTerm, nil, true, ""},
		{"comment author deletes own comment", owner, ActionDeleteComment, ownedResource{ownerID: 1}, true, ""},
		{"moderator deletes foreign comment", moderator, ActionDeleteComment, ownedResource{ownerID: 1}, true, ""},
		{"stranger cannot delete foreign comment", stranger, ActionDeleteComment, ownedResource{ownerID: 1}, false, ReasonForbidden},
		{"ownership gate needs a resource", stranger, ActionEditArticle, nil, false, ReasonForbidden},
		{"unknown action denies by default", admin, Action("server.reboot"), nil, false, ReasonForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanPerform(tt.actor, tt.action, tt.resource)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestRolesComposeByUnion(t *testing.T) {
	// Any one matching role grants access, extra roles never subtract.
	actor := NewActor(7, "librarian", "moderator")

	assert.True(t, CanPerform(actor, ActionApproveNews, nil).Allowed)
	assert.True(t, CanPerform(actor, ActionEditTip, ownedResource{ownerID: 1}).Allowed)
	assert.False(t, CanPerform(actor, ActionEditArticle, ownedResource{ownerID: 1}).Allowed)
}

func TestNewActorDropsUnknownRoleNames(t *testing.T) {
	actor := NewActor(8, "superuser", "root")

	assert.Empty(t, actor.Roles)
	d := CanPerform(actor, ActionApproveNews, nil)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonForbidden, d.Reason)
}

func TestRoleSetMembership(t *testing.T) {
	set := NewRoleSet(RoleModerator)

	assert.True(t, set.Has(RoleModerator))
	assert.False(t, set.Has(RoleAdministrator))
	assert.True(t, set.HasAny(RoleAdministrator, RoleModerator))
	assert.False(t, set.HasAny())
}
