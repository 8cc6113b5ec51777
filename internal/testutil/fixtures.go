package testutil

import (
	"context"
	"net/http"
	"testing"

	groupstore "github.com/dalemusser/stratagroups/internal/app/store/groups"
	secretstore "github.com/dalemusser/stratagroups/internal/app/store/secrets"
	userstore "github.com/dalemusser/stratagroups/internal/app/store/users"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParams adds chi URL parameters (key, value pairs) to the request context.
// Use this in handler tests that call handlers directly instead of through a router.
func WithChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser stores an active, non-supervisor user.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) *models.User {
	f.t.Helper()
	u, err := userstore.New(f.db).Create(ctx, email, name)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUserWithPassword stores a user together with a login password.
func (f *Fixtures) CreateUserWithPassword(ctx context.Context, name, email, password string) *models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, name, email)
	if err := secretstore.New(f.db).SetPassword(ctx, u.ID(), password); err != nil {
		f.t.Fatalf("failed to set test password: %v", err)
	}
	return u
}

// CreateSupervisor stores a user and promotes them through the
// administrative path, returning the reloaded supervisor.
func (f *Fixtures) CreateSupervisor(ctx context.Context, name, email string) *models.User {
	f.t.Helper()
	users := userstore.New(f.db)
	u := f.CreateUser(ctx, name, email)
	if err := users.SetSupervisor(ctx, u.ID(), true); err != nil {
		f.t.Fatalf("failed to promote test supervisor: %v", err)
	}
	sup, err := users.GetByID(ctx, u.ID())
	if err != nil {
		f.t.Fatalf("failed to reload test supervisor: %v", err)
	}
	return sup
}

// CreateGroup stores a group founded by founder.
func (f *Fixtures) CreateGroup(ctx context.Context, founder *models.User, name string) *models.Group {
	f.t.Helper()
	g := models.NewGroup(founder, name)
	if err := groupstore.New(f.db).Create(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// AddMember assigns member to g as a plain member on behalf of owner and saves it.
func (f *Fixtures) AddMember(ctx context.Context, g *models.Group, owner, member *models.User) {
	f.t.Helper()
	if err := g.AssignGroupMembership(owner, member); err != nil {
		f.t.Fatalf("failed to assign test membership: %v", err)
	}
	if err := groupstore.New(f.db).Save(ctx, g); err != nil {
		f.t.Fatalf("failed to save test group: %v", err)
	}
}

// AddOwner assigns member to g as an owner on behalf of owner and saves it.
func (f *Fixtures) AddOwner(ctx context.Context, g *models.Group, owner, member *models.User) {
	f.t.Helper()
	if err := g.AssignGroupOwnership(owner, member); err != nil {
		f.t.Fatalf("failed to assign test ownership: %v", err)
	}
	if err := groupstore.New(f.db).Save(ctx, g); err != nil {
		f.t.Fatalf("failed to save test group: %v", err)
	}
}
