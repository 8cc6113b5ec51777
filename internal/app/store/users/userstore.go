// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratagroups/internal/app/system/normalize"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	errEmailNeeded = errors.New("email is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// document renders u in its stored form plus the derived search fields.
func document(u *models.User) (bson.D, error) {
	raw, err := bson.Marshal(u)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return append(d, bson.E{Key: "name_ci", Value: text.Fold(u.Name())}), nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID. Deleted users are returned too; callers
// decide what a deleted account may still do.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetMany loads the users with the given ids. Missing ids are skipped.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.User
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

// CountExisting returns how many of ids name a stored user.
func (s *Store) CountExisting(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// Create inserts a new user after normalizing its email.
func (s *Store) Create(ctx context.Context, email, name string) (*models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return nil, errEmailNeeded
	}
	u := models.NewUser(email, normalize.Name(name))

	doc, err := document(u)
	if err != nil {
		return nil, err
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// Save writes back the fields a User may change on its own: the display
// name and the deletion latch. Email and the supervisor flag are never
// written through this path.
func (s *Store) Save(ctx context.Context, u *models.User) error {
	set := bson.M{
		"name":       u.Name(),
		"name_ci":    text.Fold(u.Name()),
		"is_deleted": u.IsDeleted(),
		"updated_at": u.UpdatedAt(),
	}
	if u.DeletedAt() != nil {
		set["deleted_at"] = *u.DeletedAt()
	}
	res, err := s.c.UpdateByID(ctx, u.ID(), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSupervisor grants or revokes the supervisor flag. This is the
// administrative path; it is used by startup bootstrap, never by a request.
func (s *Store) SetSupervisor(ctx context.Context, id primitive.ObjectID, on bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_supervisor": on,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
