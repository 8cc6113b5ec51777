// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	groupstore "github.com/dalemusser/stratagroups/internal/app/store/groups"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/app/system/auditlog"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// Every handler loads the group aggregate, asks it to change, and saves it
// back under the version check.
type Handler struct {
	Groups *groupstore.Store
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Groups: groupstore.New(db),
		Users:  userstore.New(db),
		ErrLog: errLog,
		Audit:  audit,
		Log:    logger,
	}
}

// loadActor resolves the signed-in user to a stored, active User.
// On failure it has already written the response.
func (h *Handler) loadActor(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Unauthorized(w)
		return nil, false
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		uierrors.Unauthorized(w)
		return nil, false
	}
	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.Unauthorized(w)
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load acting user failed", err, "A database error occurred.")
		return nil, false
	}
	if u.IsDeleted() {
		uierrors.Unauthorized(w)
		return nil, false
	}
	return u, true
}

// loadGroup loads the group named by the {id} URL parameter.
func (h *Handler) loadGroup(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Group, bool) {
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad group id", err, "Bad group id.")
		return nil, false
	}
	g, err := h.Groups.GetByID(ctx, gid)
	if err != nil {
		h.ErrLog.HandleError(w, r, "load group failed", err)
		return nil, false
	}
	return g, true
}

// resolveTarget returns the user named by raw. "me" and the actor's own id
// both resolve to actor.
func (h *Handler) resolveTarget(ctx context.Context, w http.ResponseWriter, r *http.Request, raw string, actor *models.User) (*models.User, bool) {
	if raw == "me" {
		return actor, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Bad user id.")
		return nil, false
	}
	if id == actor.ID() {
		return actor, true
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.HandleError(w, r, "load target user failed", err)
		return nil, false
	}
	return u, true
}
