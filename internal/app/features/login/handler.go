// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	secretstore "github.com/dalemusser/stratagroups/internal/app/store/secrets"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/app/system/auditlog"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/app/system/normalize"
	"github.com/dalemusser/stratagroups/internal/app/system/ratelimit"
	"github.com/dalemusser/stratagroups/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	Secrets    *secretstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Secrets:    secretstore.New(db),
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Limiter:    ratelimit.NewLoginLimiter(),
		Log:        logger,
	}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// badCredentials answers both unknown emails and wrong passwords.
const badCredentials = "Invalid email or password."

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := uierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login failed", err, "Invalid JSON body.")
		return
	}
	email := normalize.Email(in.Email)
	if email == "" || in.Password == "" {
		h.ErrLog.LogBadRequest(w, r, "login missing fields", nil, "Email and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if d := h.Limiter.Check(r, email); !d.Allowed {
		h.AuditLog.LoginFailedRateLimit(ctx, r, email, d.LimitType)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
		uierrors.WriteJSON(w, http.StatusTooManyRequests, map[string]string{"error": d.Message})
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		uierrors.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": badCredentials})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.")
		return
	}

	/*── deleted accounts cannot log in ─────────────────────────────────────*/

	if u.IsDeleted() {
		h.AuditLog.LoginFailedUserDeleted(ctx, r, u.ID(), email)
		uierrors.Forbidden(w, "This account has been deleted.")
		return
	}

	/*── check password ─────────────────────────────────────────────────────*/

	if err := h.Secrets.Verify(ctx, u.ID(), in.Password); err != nil {
		if errors.Is(err, secretstore.ErrWrongPassword) || errors.Is(err, secretstore.ErrNoPassword) {
			h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID(), email)
			uierrors.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": badCredentials})
			return
		}
		h.ErrLog.LogServerError(w, r, "verify password", err, "A server error occurred.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID().Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.")
		return
	}
	h.Limiter.ResetEmail(email)
	h.AuditLog.LoginSuccess(ctx, r, u.ID(), email)

	uierrors.WriteJSON(w, http.StatusOK, u)
}
