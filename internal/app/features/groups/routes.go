// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST + CREATE
		pr.Get("/", h.ServeGroupsList)
		pr.Post("/", h.HandleCreateGroup)

		// VIEW + RENAME
		pr.Get("/{id}", h.ServeGroupView)
		pr.Patch("/{id}", h.HandleRenameGroup)

		// OWNERS
		pr.Post("/{id}/owners", h.HandleAssignOwner)
		pr.Delete("/{id}/owners/{userID}", h.HandleUnassignOwner)

		// MEMBERS
		pr.Post("/{id}/members", h.HandleAssignMember)
		pr.Delete("/{id}/members/{userID}", h.HandleUnassignMember)
	})

	return r
}
