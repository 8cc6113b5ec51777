// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/policy/grouppolicy"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// roleView is one row of the group's role list, with the user's display data.
type roleView struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsOwner    bool   `json:"is_owner"`
	IsDeleted  bool   `json:"is_deleted"`
	AssignedBy string `json:"assigned_by"`
}

type groupView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Version   int64      `json:"version"`
	Roles     []roleView `json:"roles"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ServeGroupView shows a group and its roles to members and supervisors.
// GET /groups/{id}
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}
	su, _ := auth.CurrentUser(r)
	if !grouppolicy.CanView(g, su) {
		uierrors.Forbidden(w, "You do not have access to this group.")
		return
	}

	roles := g.UserRoles()
	ids := make([]primitive.ObjectID, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.UserID())
	}
	users, err := h.Users.GetMany(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group users failed", err, "A database error occurred.")
		return
	}
	type who struct {
		name, email string
		deleted     bool
	}
	byID := make(map[primitive.ObjectID]who, len(users))
	for _, u := range users {
		byID[u.ID()] = who{u.Name(), u.Email(), u.IsDeleted()}
	}

	view := groupView{
		ID:        g.ID().Hex(),
		Name:      g.Name(),
		Version:   g.Version(),
		Roles:     make([]roleView, 0, len(roles)),
		CreatedAt: g.CreatedAt(),
		UpdatedAt: g.UpdatedAt(),
	}
	for _, role := range roles {
		u := byID[role.UserID()]
		view.Roles = append(view.Roles, roleView{
			UserID:     role.UserID().Hex(),
			Name:       u.name,
			Email:      u.email,
			IsOwner:    role.IsOwner(),
			IsDeleted:  u.deleted,
			AssignedBy: role.AssignedBy().Hex(),
		})
	}

	uierrors.WriteJSON(w, http.StatusOK, view)
}
