// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorID parses the session user's id. ok is false for anonymous or
// malformed sessions.
func actorID(su *auth.SessionUser) (primitive.ObjectID, bool) {
	if su == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// CanView reports whether the session user may read the group:
// - Supervisors always can
// - Anyone holding a role in the group (owner or member) can
func CanView(g *models.Group, su *auth.SessionUser) bool {
	id, ok := actorID(su)
	if !ok {
		return false
	}
	if su.IsSupervisor {
		return true
	}
	_, has := g.Role(id)
	return has
}

// CanRename reports whether the session user may rename the group. Only
// owners can; the supervisor flag grants nothing here.
func CanRename(g *models.Group, su *auth.SessionUser) bool {
	id, ok := actorID(su)
	return ok && g.IsOwner(id)
}
