// internal/app/features/users/profile.go
package users

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/system/inputval"
	"github.com/dalemusser/stratagroups/internal/app/system/normalize"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
)

// ServeMe returns the signed-in user.
// GET /users/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.loadActor(ctx, w, r)
	if !ok {
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, u)
}

type renameInput struct {
	Name string `json:"name" validate:"required,max=200" label:"Name"`
}

// HandleRenameMe changes the signed-in user's display name.
// PATCH /users/me
func (h *Handler) HandleRenameMe(w http.ResponseWriter, r *http.Request) {
	var in renameInput
	if err := uierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode rename failed", err, "Invalid JSON body.")
		return
	}
	in.Name = normalize.Name(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "rename validation failed", nil, res.First())
		return
	}
	name := in.Name

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.loadActor(ctx, w, r)
	if !ok {
		return
	}
	u.Rename(name)
	if err := h.Users.Save(ctx, u); err != nil {
		h.ErrLog.HandleError(w, r, "save user failed", err)
		return
	}
	h.AuditLog.UserRenamed(ctx, r, u.ID(), name)

	uierrors.WriteJSON(w, http.StatusOK, u)
}
