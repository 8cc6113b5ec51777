// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"github.com/dalemusser/stratagroups/internal/domain/models"
)

type listResponse struct {
	Groups []*models.Group `json:"groups"`
}

// ServeGroupsList lists the groups the signed-in user holds a role in.
// GET /groups
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	actor, ok := h.loadActor(ctx, w, r)
	if !ok {
		return
	}

	groups, err := h.Groups.ListByUser(ctx, actor.ID())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "A database error occurred.")
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{Groups: groups})
}
