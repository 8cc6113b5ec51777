// internal/app/features/groups/groupedit.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/policy/grouppolicy"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
)

var errRenameDenied = errors.New("only an owner can rename the group")

// HandleRenameGroup renames a group. Owners only.
// PATCH /groups/{id}
func (h *Handler) HandleRenameGroup(w http.ResponseWriter, r *http.Request) {
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
	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}

	su, _ := auth.CurrentUser(r)
	if !grouppolicy.CanRename(g, su) {
		h.Audit.GroupRenamed(ctx, r, actor.ID(), g.ID(), name, errRenameDenied)
		uierrors.Forbidden(w, errRenameDenied.Error())
		return
	}

	g.Rename(name)
	err := h.Groups.Save(ctx, g)
	h.Audit.GroupRenamed(ctx, r, actor.ID(), g.ID(), name, err)
	if err != nil {
		h.ErrLog.HandleError(w, r, "rename group failed", err)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, g)
}
