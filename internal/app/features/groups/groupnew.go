// internal/app/features/groups/groupnew.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/system/inputval"
	"github.com/dalemusser/stratagroups/internal/app/system/normalize"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"github.com/dalemusser/stratagroups/internal/domain/models"
)

var errBadName = errors.New("invalid group name")

// groupNameInput is the body of create and rename requests.
type groupNameInput struct {
	Name string `json:"name" validate:"required,max=200" label:"Name"`
}

// readName decodes and normalizes the group name from the request body.
func (h *Handler) readName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in groupNameInput
	if err := uierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode group name failed", err, "Invalid JSON body.")
		return "", false
	}
	in.Name = normalize.Name(in.Name)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.LogBadRequest(w, r, "group name invalid", errBadName, res.First())
		return "", false
	}
	return in.Name, true
}

// HandleCreateGroup founds a new group with the signed-in user as its owner.
// POST /groups
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	name, ok := h.readName(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, ok := h.loadActor(ctx, w, r)
	if !ok {
		return
	}

	g := models.NewGroup(actor, name)
	if err := h.Groups.Create(ctx, g); err != nil {
		h.ErrLog.HandleError(w, r, "create group failed", err)
		return
	}
	h.Audit.GroupCreated(ctx, r, actor.ID(), g.ID(), g.Name())

	uierrors.WriteJSON(w, http.StatusCreated, g)
}
