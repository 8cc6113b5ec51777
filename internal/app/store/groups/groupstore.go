// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no group matches the lookup.
	ErrNotFound = errors.New("group not found")
	// ErrConcurrentUpdate is returned by Save when the stored group changed
	// after it was loaded.
	ErrConcurrentUpdate = errors.New("group was modified concurrently")
	// ErrDanglingReference is returned when a role refers to a user that
	// does not exist.
	ErrDanglingReference = errors.New("group role refers to an unknown user")
	// ErrNoOwner is returned when a group holds no owner role. Such a
	// group is never written.
	ErrNoOwner = errors.New("group would be left without an owner")
)

// userCounter answers how many of a set of user ids are stored.
type userCounter interface {
	CountExisting(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type Store struct {
	c     *mongo.Collection
	users userCounter
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups"), users: userstore.New(db)}
}

// document renders g in its stored form plus the derived search fields.
func document(g *models.Group) (bson.D, error) {
	raw, err := bson.Marshal(g)
	if err != nil {
		return nil, err
	}
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return append(d, bson.E{Key: "name_ci", Value: text.Fold(g.Name())}), nil
}

// checkReferences verifies that every user id carried by the roles, in every
// field listed by models.GroupUserRoleRefs, names a stored user.
func (s *Store) checkReferences(ctx context.Context, g *models.Group) error {
	set := map[primitive.ObjectID]struct{}{}
	for _, r := range g.UserRoles() {
		for _, ref := range models.GroupUserRoleRefs {
			if ref.Collection != "users" {
				return fmt.Errorf("unsupported role reference collection %q", ref.Collection)
			}
			switch ref.Field {
			case "user_id":
				set[r.UserID()] = struct{}{}
			case "assigned_by":
				set[r.AssignedBy()] = struct{}{}
			default:
				return fmt.Errorf("unknown role reference field %q", ref.Field)
			}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	n, err := s.users.CountExisting(ctx, ids)
	if err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return ErrDanglingReference
	}
	return nil
}

// checkWritable runs the checks every write needs before touching the
// collection.
func (s *Store) checkWritable(ctx context.Context, g *models.Group) error {
	if !g.HasOwner() {
		return ErrNoOwner
	}
	return s.checkReferences(ctx, g)
}

// Create inserts a new group. Its version starts at 1.
func (s *Store) Create(ctx context.Context, g *models.Group) error {
	if err := s.checkWritable(ctx, g); err != nil {
		return err
	}
	g.SetVersion(1)
	doc, err := document(g)
	if err != nil {
		return err
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		g.SetVersion(0)
		return err
	}
	return nil
}

// GetByID loads a group by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Save replaces the stored group with g, provided nobody else saved it since
// g was loaded and it still has an owner. On success g carries the new
// version.
func (s *Store) Save(ctx context.Context, g *models.Group) error {
	if err := s.checkWritable(ctx, g); err != nil {
		return err
	}

	loaded := g.Version()
	g.SetVersion(loaded + 1)
	doc, err := document(g)
	if err != nil {
		g.SetVersion(loaded)
		return err
	}

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID(), "version": loaded}, doc)
	if err != nil {
		g.SetVersion(loaded)
		return err
	}
	if res.MatchedCount == 0 {
		g.SetVersion(loaded)
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": g.ID()})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrConcurrentUpdate
	}
	return nil
}

// ListByUser returns the groups in which userID holds any role, ordered by name.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"user_roles.user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Group
	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, cur.Err()
}
