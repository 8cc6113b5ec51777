// internal/app/store/secrets/secretstore.go
package secretstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratagroups/internal/app/system/authutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MinPasswordLength is the shortest password SetPassword accepts.
const MinPasswordLength = authutil.MinPasswordLength

var (
	// ErrNoPassword is returned when the user has no stored password.
	ErrNoPassword = errors.New("no password set for user")
	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = errors.New("wrong password")

	// Policy violations from SetPassword.
	ErrPasswordTooShort = authutil.ErrPasswordTooShort
	ErrPasswordTooLong  = authutil.ErrPasswordTooLong
	ErrPasswordCommon   = authutil.ErrPasswordCommon
)

// Secret holds the credential for one user. It lives apart from the user
// document so that user reads never carry the hash.
type Secret struct {
	UserID       primitive.ObjectID `bson:"_id"`
	PasswordHash string             `bson:"password_hash"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_secrets")}
}

// SetPassword hashes password and stores it for userID, replacing any
// previous one.
func (s *Store) SetPassword(ctx context.Context, userID primitive.ObjectID, password string) error {
	if err := authutil.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	sec := Secret{
		UserID:       userID,
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
	}
	_, err = s.c.ReplaceOne(ctx, bson.M{"_id": userID}, sec, options.Replace().SetUpsert(true))
	return err
}

// Verify checks password against the stored hash for userID.
func (s *Store) Verify(ctx context.Context, userID primitive.ObjectID, password string) error {
	var sec Secret
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&sec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNoPassword
		}
		return err
	}
	if !authutil.CheckPassword(password, sec.PasswordHash) {
		return ErrWrongPassword
	}
	return nil
}

// Delete removes the credential for userID.
func (s *Store) Delete(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
