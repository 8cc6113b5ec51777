// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Sign-up is open.
	r.Post("/", h.HandleSignUp)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
		pr.Patch("/me", h.HandleRenameMe)
		pr.Delete("/{id}", h.HandleDeleteUser)
	})

	return r
}
