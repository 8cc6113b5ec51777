package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/stratagroups/internal/app/store/groups"
	"github.com/dalemusser/stratagroups/internal/domain/models"
	"github.com/dalemusser/stratagroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	founder := fixtures.CreateUser(ctx, "Founder", "founder@example.com")
	g := models.NewGroup(founder, "Test Group")

	if err := store.Create(ctx, g); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Version() != 1 {
		t.Errorf("Version: got %d, want 1", g.Version())
	}

	got, err := store.GetByID(ctx, g.ID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name() != "Test Group" || got.Version() != 1 {
		t.Errorf("unexpected group: %q v%d", got.Name(), got.Version())
	}
	if !got.IsOwner(founder.ID()) || len(got.UserRoles()) != 1 {
		t.Error("expected founder to be the only owner")
	}

	// name_ci is stored alongside the aggregate for sorting.
	var raw bson.M
	if err := db.Collection("groups").FindOne(ctx, bson.M{"_id": g.ID()}).Decode(&raw); err != nil {
		t.Fatalf("raw FindOne failed: %v", err)
	}
	if raw["name_ci"] != "test group" {
		t.Errorf("name_ci: got %v", raw["name_ci"])
	}
}

func TestStore_Create_DanglingReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ghost := models.NewUser("ghost@example.com", "Ghost")
	err := groupstore.New(db).Create(ctx, models.NewGroup(ghost, "Orphan"))
	if !errors.Is(err, groupstore.ErrDanglingReference) {
		t.Errorf("expected ErrDanglingReference, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "U", "u@example.com")
	g := models.NewGroup(u, "Never stored")

	if _, err := groupstore.New(db).GetByID(ctx, g.ID()); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Save_PersistsRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	g := fixtures.CreateGroup(ctx, owner, "Team")

	if err := g.AssignGroupMembership(owner, member); err != nil {
		t.Fatalf("AssignGroupMembership: %v", err)
	}
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if g.Version() != 2 {
		t.Errorf("Version after save: got %d, want 2", g.Version())
	}

	got, err := store.GetByID(ctx, g.ID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	role, ok := got.Role(member.ID())
	if !ok || role.IsOwner() || role.AssignedBy() != owner.ID() {
		t.Errorf("member role not persisted: %+v ok=%v", role, ok)
	}
}

func TestStore_Save_ConcurrentUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	a := fixtures.CreateUser(ctx, "A", "a@example.com")
	b := fixtures.CreateUser(ctx, "B", "b@example.com")
	g := fixtures.CreateGroup(ctx, owner, "Team")

	first, err := store.GetByID(ctx, g.ID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	second, err := store.GetByID(ctx, g.ID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if err := first.AssignGroupMembership(owner, a); err != nil {
		t.Fatalf("AssignGroupMembership: %v", err)
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	if err := second.AssignGroupMembership(owner, b); err != nil {
		t.Fatalf("AssignGroupMembership: %v", err)
	}
	err = store.Save(ctx, second)
	if !errors.Is(err, groupstore.ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
	if second.Version() != 1 {
		t.Errorf("failed save should keep loaded version, got %d", second.Version())
	}

	got, err := store.GetByID(ctx, g.ID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if _, ok := got.Role(b.ID()); ok {
		t.Error("losing write must not be stored")
	}
	if _, ok := got.Role(a.ID()); !ok {
		t.Error("winning write must be stored")
	}
}

func TestStore_Save_Deleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	g := fixtures.CreateGroup(ctx, owner, "Team")

	if _, err := db.Collection("groups").DeleteOne(ctx, bson.M{"_id": g.ID()}); err != nil {
		t.Fatalf("DeleteOne: %v", err)
	}
	g.Rename("Renamed")
	if err := store.Save(ctx, g); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Save_RefusesGroupWithoutOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	g := fixtures.CreateGroup(ctx, owner, "Team")

	// Demoting the only owner is allowed by the aggregate but not storable.
	if err := g.AssignGroupMembership(owner, owner); err != nil {
		t.Fatalf("AssignGroupMembership: %v", err)
	}
	if err := store.Save(ctx, g); !errors.Is(err, groupstore.ErrNoOwner) {
		t.Fatalf("expected ErrNoOwner, got %v", err)
	}
	if g.Version() != 1 {
		t.Errorf("Version: got %d, want 1", g.Version())
	}

	got, err := store.GetByID(ctx, g.ID())
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IsOwner(owner.ID()) || got.Version() != 1 {
		t.Error("stored group must keep its owner and version")
	}
}

func TestStore_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	outsider := fixtures.CreateUser(ctx, "Outsider", "outsider@example.com")

	zeta := fixtures.CreateGroup(ctx, owner, "zeta")
	alpha := fixtures.CreateGroup(ctx, owner, "Alpha")
	fixtures.CreateGroup(ctx, outsider, "Elsewhere")
	fixtures.AddMember(ctx, zeta, owner, member)

	tests := []struct {
		name string
		user *models.User
		want []string
	}{
		{"owner sees both, sorted case-insensitively", owner, []string{alpha.Name(), zeta.Name()}},
		{"member sees the group they joined", member, []string{"zeta"}},
		{"outsider sees only their own", outsider, []string{"Elsewhere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := store.ListByUser(ctx, tt.user.ID())
			if err != nil {
				t.Fatalf("ListByUser failed: %v", err)
			}
			if len(groups) != len(tt.want) {
				t.Fatalf("got %d groups, want %d", len(groups), len(tt.want))
			}
			for i, g := range groups {
				if g.Name() != tt.want[i] {
					t.Errorf("groups[%d]: got %q, want %q", i, g.Name(), tt.want[i])
				}
			}
		})
	}
}
