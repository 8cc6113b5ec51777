// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	secretstore "github.com/dalemusser/stratagroups/internal/app/store/secrets"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/app/system/auditlog"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Client     *mongo.Client
	Users      *userstore.Store
	Secrets    *secretstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

// NewHandler constructs a users feature handler bound to the given Mongo
// database and logger.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Client:     db.Client(),
		Users:      userstore.New(db),
		Secrets:    secretstore.New(db),
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

// loadActor resolves the signed-in user from storage. Deleted accounts are
// treated as signed out.
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
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && u.IsDeleted()) {
		uierrors.Unauthorized(w)
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load acting user failed", err, "A database error occurred.")
		return nil, false
	}
	return u, true
}
