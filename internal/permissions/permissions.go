// Package permissions decides whether an actor may perform an action on a
// resource. Checks are pure functions over the actor and the resource author
// so the same rules apply identically in handlers and services.
package permissions

import (
	"github.com/critics-hub/yamdb/internal/models"
)

// IsAdminOrSuperuser gates catalog writes and user management.
func IsAdminOrSuperuser(actor *models.User) bool {
	return actor != nil && actor.IsAdmin()
}

// CanModify reports whether the actor may update or delete a review or
// comment written by authorID: the author themselves, any moderator, any
// admin or a superuser.
func CanModify(actor *models.User, authorID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.IsModerator() || actor.IsAdmin()
}

// CanAssignRole reports whether the actor may change a role field at all.
// Plain users get their requested role silently coerced back to "user".
func CanAssignRole(actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.IsModerator() || actor.IsAdmin()
}
