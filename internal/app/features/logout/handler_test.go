package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stratagroups/internal/app/features/logout"
	"github.com/dalemusser/stratagroups/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sessionMgr
}

func TestHandleLogout_ClearsSessionCookie(t *testing.T) {
	// Pass nil for the audit logger in tests (it is nil-safe)
	handler := logout.NewHandler(newSessionManager(t), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Name: "U"})
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestHandleLogout_WithExistingSession(t *testing.T) {
	sessionMgr := newSessionManager(t)
	handler := logout.NewHandler(sessionMgr, nil, zap.NewNop())

	userID := primitive.NewObjectID().Hex()
	req1 := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec1 := httptest.NewRecorder()
	if err := sessionMgr.SignIn(rec1, req1, userID); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()
	handler.HandleLogout(rec2, req2)

	// A request carrying the expired cookie is anonymous again.
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec2.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req3.AddCookie(c)
	}
	sess, _ := sessionMgr.GetSession(req3)
	if id, _ := sess.Values["user_id"].(string); id != "" {
		t.Errorf("expected no user in session after logout, got %q", id)
	}
}
