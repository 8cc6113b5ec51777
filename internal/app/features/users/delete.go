// internal/app/features/users/delete.go
package users

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"github.com/dalemusser/stratagroups/internal/app/system/txn"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeleteUser marks an account deleted. A user may delete their own
// account ("me"); a supervisor may delete anyone else's.
// DELETE /users/{id}
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor, ok := h.loadActor(ctx, w, r)
	if !ok {
		return
	}

	raw := chi.URLParam(r, "id")
	target := actor
	if raw != "me" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Bad user id.")
			return
		}
		if id != actor.ID() {
			if target, err = h.Users.GetByID(ctx, id); err != nil {
				h.ErrLog.HandleError(w, r, "load user failed", err)
				return
			}
		}
	}

	err := target.DeleteOwnAccount(actor)
	if err == nil {
		// The user document stays as a tombstone; its credentials go with it.
		err = txn.Run(ctx, h.Client, h.Log, func(ctx context.Context) error {
			if err := h.Users.Save(ctx, target); err != nil {
				return err
			}
			return h.Secrets.Delete(ctx, target.ID())
		})
	}
	h.AuditLog.UserDeleted(ctx, r, actor.ID(), target.ID(), err)
	if err != nil {
		h.ErrLog.HandleError(w, r, "delete user failed", err)
		return
	}

	if target == actor {
		h.signOut(w, r, target)
	}

	uierrors.WriteJSON(w, http.StatusOK, target)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request, u *models.User) {
	if h.SessionMgr == nil {
		return
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("delete user: sign out failed", zap.Error(err), zap.String("user_id", u.ID().Hex()))
	}
}
