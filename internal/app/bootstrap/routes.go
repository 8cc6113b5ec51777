// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/stratagroups/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/stratagroups/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/stratagroups/internal/app/features/groups"
	healthfeature "github.com/dalemusser/stratagroups/internal/app/features/health"
	loginfeature "github.com/dalemusser/stratagroups/internal/app/features/login"
	logoutfeature "github.com/dalemusser/stratagroups/internal/app/features/logout"
	usersfeature "github.com/dalemusser/stratagroups/internal/app/features/users"
	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/app/system/auditlog"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// StrataGroups applies session middleware and mounts the JSON feature
// routers: health, login, logout, users, groups and the supervisor-only
// audit log.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so a
	// deletion or supervisor change takes effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// Client IPs feed the login limiter and the audit log; proxy headers
	// are honoured only when configured.
	if appCfg.TrustProxy {
		r.Use(middleware.RealIP)
	}

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, auditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Accounts
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	// Groups and their roles
	groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, errLog, auditLog, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Audit log (supervisors only)
	auditHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		errorsfeature.NotFound(w, "not found")
	})

	return r, nil
}
