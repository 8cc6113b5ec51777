package login_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/stratagroups/internal/app/features/errors"
	"github.com/dalemusser/stratagroups/internal/app/features/login"
	"github.com/dalemusser/stratagroups/internal/app/store/audit"
	"github.com/dalemusser/stratagroups/internal/app/system/auditlog"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"github.com/dalemusser/stratagroups/internal/app/system/ratelimit"
	"github.com/dalemusser/stratagroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	// Create a session manager for testing (dev mode, weak key allowed)
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db", Admin: "db"})

	handler := login.NewHandler(db, sessionMgr, errLog, auditLog, logger)
	fixtures := testutil.NewFixtures(t, db)
	return handler, fixtures
}

func sessionCookie(rec *testutil.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	return nil
}

func TestHandleLoginPost_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUserWithPassword(ctx, "Test User", "user@example.com", "correct horse")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "  USER@example.com ",
		"password": "correct horse",
	})
	rec := testutil.NewRecorder()
	handler.HandleLoginPost(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, u.ID().Hex())

	if sessionCookie(rec) == nil {
		t.Error("expected a session cookie")
	}

	n, err := fixtures.DB().Collection("audit_events").CountDocuments(ctx, bson.M{
		"event_type": audit.EventLoginSuccess,
		"user_id":    u.ID(),
	})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 login_success event, got %d", n)
	}
}

func TestHandleLoginPost_Failures(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUserWithPassword(ctx, "Test User", "user@example.com", "correct horse")
	fixtures.CreateUser(ctx, "No Password", "nopass@example.com")
	gone := fixtures.CreateUserWithPassword(ctx, "Gone", "gone@example.com", "correct horse")
	if _, err := fixtures.DB().Collection("users").UpdateByID(ctx, gone.ID(), bson.M{"$set": bson.M{"is_deleted": true}}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}

	tests := []struct {
		name      string
		email     string
		password  string
		want      int
		wantEvent string
	}{
		{"unknown email", "who@example.com", "correct horse", http.StatusUnauthorized, audit.EventLoginFailedUserNotFound},
		{"wrong password", "user@example.com", "battery staple", http.StatusUnauthorized, audit.EventLoginFailedWrongPassword},
		{"no password set", "nopass@example.com", "anything1", http.StatusUnauthorized, audit.EventLoginFailedWrongPassword},
		{"deleted account", "gone@example.com", "correct horse", http.StatusForbidden, audit.EventLoginFailedUserDeleted},
		{"missing password", "user@example.com", "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			rec := testutil.NewRecorder()
			handler.HandleLoginPost(rec, req)

			rec.AssertStatus(t, tt.want)
			if sessionCookie(rec) != nil {
				t.Error("failed login must not set a session cookie")
			}
			if tt.wantEvent == "" {
				return
			}
			n, err := fixtures.DB().Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": tt.wantEvent})
			if err != nil {
				t.Fatalf("CountDocuments failed: %v", err)
			}
			if n == 0 {
				t.Errorf("expected a %s event", tt.wantEvent)
			}
		})
	}
}

func TestHandleLoginPost_RateLimited(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	handler.Limiter = ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUserWithPassword(ctx, "Test User", "user@example.com", "correct horse")

	attempt := func(password string) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/login", map[string]string{
			"email":    "user@example.com",
			"password": password,
		})
		rec := testutil.NewRecorder()
		handler.HandleLoginPost(rec, req)
		return rec
	}

	attempt("wrong one").AssertStatus(t, http.StatusUnauthorized)
	attempt("wrong two").AssertStatus(t, http.StatusUnauthorized)

	// The right password is refused once the window is used up.
	rec := attempt("correct horse")
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if sessionCookie(rec) != nil {
		t.Error("rate-limited login must not set a session cookie")
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}

	n, err := fixtures.DB().Collection("audit_events").CountDocuments(ctx, bson.M{"event_type": audit.EventLoginFailedRateLimit})
	if err != nil {
		t.Fatalf("count audit events: %v", err)
	}
	if n != 1 {
		t.Errorf("rate limit audit events = %d, want 1", n)
	}
}
