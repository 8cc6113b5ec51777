// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/stratagroups/internal/app/system/auditlog"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /logout. The cookie is expired even when it
// could not be decoded.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if su, ok := auth.CurrentUser(r); ok {
		if id, err := primitive.ObjectIDFromHex(su.ID); err == nil {
			h.AuditLog.Logout(r.Context(), r, id)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
