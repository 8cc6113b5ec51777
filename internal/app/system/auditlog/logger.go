// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	"github.com/dalemusser/stratagroups/internal/app/system/ratelimit"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for user and group change events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func getClientIP(r *http.Request) string {
	return ratelimit.ClientIP(r)
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("correlation_id", event.CorrelationID),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.GroupID != nil {
		fields = append(fields, zap.String("group_id", event.GroupID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers can run without auditing in tests.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if event.CorrelationID == "" {
		event.CorrelationID = uuid.NewString()
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
				zap.String("correlation_id", event.CorrelationID),
			)
		}
	}
}

func idPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// outcome fills Success and FailureReason from the operation's error.
func outcome(e *audit.Event, err error) {
	e.Success = err == nil
	if err != nil {
		e.FailureReason = err.Error()
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    idPtr(userID),
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailedUserNotFound logs a failed login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	})
}

// LoginFailedWrongPassword logs a failed login due to a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        idPtr(userID),
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedUserDeleted logs a login attempt against a deleted account.
func (l *Logger) LoginFailedUserDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserDeleted,
		UserID:        idPtr(userID),
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "user deleted",
		Details:       map[string]string{"email": email},
	})
}

// LoginFailedRateLimit logs a login attempt refused by the login limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email, limitType string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		FailureReason: "rate limit exceeded",
		Details: map[string]string{
			"email":      email,
			"limit_type": limitType,
		},
	})
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    idPtr(userID),
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- User and Group Events ---

// UserCreated logs a sign-up.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserCreated,
		UserID:    idPtr(userID),
		ActorID:   idPtr(userID),
		IP:        getClientIP(r),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// UserRenamed logs a display-name change.
func (l *Logger) UserRenamed(ctx context.Context, r *http.Request, userID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserRenamed,
		UserID:    idPtr(userID),
		ActorID:   idPtr(userID),
		IP:        getClientIP(r),
		Success:   true,
		Details:   map[string]string{"name": name},
	})
}

// UserDeleted logs an account deletion attempt; err is the domain outcome.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, err error) {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		UserID:    idPtr(userID),
		ActorID:   idPtr(actorID),
		IP:        getClientIP(r),
	}
	outcome(&e, err)
	l.Log(ctx, e)
}

// GroupCreated logs the founding of a group.
func (l *Logger) GroupCreated(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, name string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventGroupCreated,
		ActorID:   idPtr(actorID),
		GroupID:   idPtr(groupID),
		IP:        getClientIP(r),
		Success:   true,
		Details:   map[string]string{"name": name},
	})
}

// GroupRenamed logs a group rename attempt.
func (l *Logger) GroupRenamed(ctx context.Context, r *http.Request, actorID, groupID primitive.ObjectID, name string, err error) {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventGroupRenamed,
		ActorID:   idPtr(actorID),
		GroupID:   idPtr(groupID),
		IP:        getClientIP(r),
		Details:   map[string]string{"name": name},
	}
	outcome(&e, err)
	l.Log(ctx, e)
}

// GroupRoleChanged logs an ownership or membership change attempt.
// eventType is one of the audit.EventOwnership* / audit.EventMembership* constants.
func (l *Logger) GroupRoleChanged(ctx context.Context, r *http.Request, eventType string, actorID, groupID, userID primitive.ObjectID, err error) {
	e := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserID:    idPtr(userID),
		ActorID:   idPtr(actorID),
		GroupID:   idPtr(groupID),
		IP:        getClientIP(r),
	}
	outcome(&e, err)
	l.Log(ctx, e)
}
