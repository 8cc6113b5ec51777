// internal/app/features/groups/manage.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

var (
	errTargetDeleted = errors.New("user account is deleted")
	errNoRole        = errors.New("user holds no role in the group")
)

// roleChange applies one role operation to g on behalf of actor.
type roleChange func(g *models.Group, actor, target *models.User) error

// userRefInput is the body of the assign endpoints.
type userRefInput struct {
	UserID string `json:"user_id"`
}

// changeRole loads the group and both users, runs change, saves under the
// version check and records the attempt in the audit log whatever its
// outcome. rawTarget is a user id or "me".
func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request, eventType, rawTarget string, assign bool, change roleChange) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, ok := h.loadActor(ctx, w, r)
	if !ok {
		return
	}
	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}
	target, ok := h.resolveTarget(ctx, w, r, rawTarget, actor)
	if !ok {
		return
	}
	if assign && target.IsDeleted() {
		h.ErrLog.LogBadRequest(w, r, "assign role to deleted user", errTargetDeleted, "User account is deleted.")
		return
	}
	// Unassigning someone without a role would only bump the version. Non-owners
	// acting on others fall through to the domain's authorization error.
	if !assign && (target == actor || g.IsOwner(actor.ID())) {
		if _, has := g.Role(target.ID()); !has {
			h.Audit.GroupRoleChanged(ctx, r, eventType, actor.ID(), g.ID(), target.ID(), errNoRole)
			uierrors.NotFound(w, "User holds no role in this group.")
			return
		}
	}

	err := change(g, actor, target)
	if err == nil {
		err = h.Groups.Save(ctx, g)
	}
	h.Audit.GroupRoleChanged(ctx, r, eventType, actor.ID(), g.ID(), target.ID(), err)
	if err != nil {
		h.ErrLog.HandleError(w, r, "group role change failed", err)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, g)
}

// readUserRef decodes the target user id from an assign request.
func (h *Handler) readUserRef(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in userRefInput
	if err := uierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode user ref failed", err, "Invalid JSON body.")
		return "", false
	}
	if in.UserID == "" {
		h.ErrLog.LogBadRequest(w, r, "user_id missing", nil, "user_id is required.")
		return "", false
	}
	return in.UserID, true
}

// HandleAssignOwner makes a user an owner of the group.
// POST /groups/{id}/owners {"user_id": "..."}
func (h *Handler) HandleAssignOwner(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readUserRef(w, r)
	if !ok {
		return
	}
	h.changeRole(w, r, audit.EventOwnershipAssigned, raw, true,
		func(g *models.Group, actor, target *models.User) error {
			return g.AssignGroupOwnership(actor, target)
		})
}

// HandleUnassignOwner downgrades an owner to a member. "me" steps down.
// DELETE /groups/{id}/owners/{userID}
func (h *Handler) HandleUnassignOwner(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, audit.EventOwnershipUnassigned, chi.URLParam(r, "userID"), false,
		func(g *models.Group, actor, target *models.User) error {
			if target == actor {
				return g.UnassignOwnGroupOwnership(actor)
			}
			return g.UnassignGroupOwnership(actor, target)
		})
}

// HandleAssignMember adds a user to the group as a member, or sets an
// existing role to member.
// POST /groups/{id}/members {"user_id": "..."}
func (h *Handler) HandleAssignMember(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readUserRef(w, r)
	if !ok {
		return
	}
	h.changeRole(w, r, audit.EventMembershipAssigned, raw, true,
		func(g *models.Group, actor, target *models.User) error {
			return g.AssignGroupMembership(actor, target)
		})
}

// HandleUnassignMember removes a user from the group. "me" leaves it.
// DELETE /groups/{id}/members/{userID}
func (h *Handler) HandleUnassignMember(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, audit.EventMembershipUnassigned, chi.URLParam(r, "userID"), false,
		func(g *models.Group, actor, target *models.User) error {
			if target == actor {
				return g.UnassignOwnGroupMembership(actor)
			}
			return g.UnassignGroupMembership(actor, target)
		})
}
