package secretstore_test

import (
	"errors"
	"strings"
	"testing"

	secretstore "github.com/dalemusser/stratagroups/internal/app/store/secrets"
	"github.com/dalemusser/stratagroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_SetAndVerify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := secretstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.SetPassword(ctx, userID, "correct horse"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"correct", "correct horse", nil},
		{"wrong", "battery staple", secretstore.ErrWrongPassword},
		{"empty", "", secretstore.ErrWrongPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Verify(ctx, userID, tt.password); !errors.Is(err, tt.want) {
				t.Errorf("Verify: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_StoresHashNotPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := secretstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.SetPassword(ctx, userID, "correct horse"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	var sec secretstore.Secret
	if err := db.Collection("user_secrets").FindOne(ctx, bson.M{"_id": userID}).Decode(&sec); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if sec.PasswordHash == "" || sec.PasswordHash == "correct horse" {
		t.Errorf("expected a bcrypt hash, got %q", sec.PasswordHash)
	}
}

func TestStore_SetPassword_Replaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := secretstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.SetPassword(ctx, userID, "first password"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := store.SetPassword(ctx, userID, "second password"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}

	if err := store.Verify(ctx, userID, "first password"); !errors.Is(err, secretstore.ErrWrongPassword) {
		t.Errorf("old password: got %v", err)
	}
	if err := store.Verify(ctx, userID, "second password"); err != nil {
		t.Errorf("new password: got %v", err)
	}
}

func TestStore_SetPassword_Policy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := secretstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		pw   string
		want error
	}{
		{"too short", "short", secretstore.ErrPasswordTooShort},
		{"too long", strings.Repeat("x", 73), secretstore.ErrPasswordTooLong},
		{"common", "Password1", secretstore.ErrPasswordCommon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := primitive.NewObjectID()
			if err := store.SetPassword(ctx, userID, tt.pw); !errors.Is(err, tt.want) {
				t.Errorf("SetPassword(%q) = %v, want %v", tt.pw, err, tt.want)
			}
			if err := store.Verify(ctx, userID, tt.pw); !errors.Is(err, secretstore.ErrNoPassword) {
				t.Errorf("rejected password was stored: %v", err)
			}
		})
	}
}

func TestStore_VerifyAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := secretstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Verify(ctx, userID, "whatever1"); !errors.Is(err, secretstore.ErrNoPassword) {
		t.Errorf("expected ErrNoPassword before set, got %v", err)
	}
	if err := store.SetPassword(ctx, userID, "whatever1"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := store.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Verify(ctx, userID, "whatever1"); !errors.Is(err, secretstore.ErrNoPassword) {
		t.Errorf("expected ErrNoPassword after delete, got %v", err)
	}
}
