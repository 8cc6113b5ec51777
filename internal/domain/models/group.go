// internal/domain/models/group.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is the aggregate root for a membership group. It owns the set of
// GroupUserRole entries and keeps two rules about it:
//   - at most one role per user id (the set is indexed by user id)
//   - at least one role with IsOwner() == true, which every unassign
//     operation enforces; AssignGroupMembership can still demote the last
//     owner, and such a group is refused by the store
//
// Every mutating method checks authorization against the current role set
// first and only then swaps in a freshly built set. A method that returns an
// error leaves the group exactly as it was.
//
// A Group is not safe for concurrent use; callers serialize access per
// instance (the group store does this with an optimistic version check).
type Group struct {
	id        primitive.ObjectID
	name      string
	roles     map[primitive.ObjectID]GroupUserRole
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewGroup creates a group whose only role is the founder as owner.
func NewGroup(founder *User, name string) *Group {
	now := time.Now().UTC()
	role := founderRole(founder)
	return &Group{
		id:        primitive.NewObjectID(),
		name:      name,
		roles:     map[primitive.ObjectID]GroupUserRole{role.userID: role},
		createdAt: now,
		updatedAt: now,
	}
}

func (g *Group) ID() primitive.ObjectID { return g.id }
func (g *Group) Name() string           { return g.name }
func (g *Group) CreatedAt() time.Time   { return g.createdAt }
func (g *Group) UpdatedAt() time.Time   { return g.updatedAt }

// Version is the persistence version the group was loaded with.
func (g *Group) Version() int64 { return g.version }

// SetVersion records the version written by the store after a successful save.
func (g *Group) SetVersion(v int64) { g.version = v }

// Rename changes the display name.
func (g *Group) Rename(name string) {
	g.name = name
	g.updatedAt = time.Now().UTC()
}

// UserRoles returns a copy of the role set ordered by user id.
func (g *Group) UserRoles() []GroupUserRole {
	out := make([]GroupUserRole, 0, len(g.roles))
	for _, r := range g.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].userID[:], out[j].userID[:]) < 0
	})
	return out
}

// Role returns the role held by userID, if any.
func (g *Group) Role(userID primitive.ObjectID) (GroupUserRole, bool) {
	r, ok := g.roles[userID]
	return r, ok
}

// IsOwner reports whether userID holds an owner role.
func (g *Group) IsOwner(userID primitive.ObjectID) bool {
	r, ok := g.roles[userID]
	return ok && r.isOwner
}

// HasOwner reports whether any role is an owner role.
func (g *Group) HasOwner() bool {
	for _, r := range g.roles {
		if r.isOwner {
			return true
		}
	}
	return false
}

// HasAnotherOwner reports whether some user other than userID holds an owner role.
func (g *Group) HasAnotherOwner(userID primitive.ObjectID) bool {
	for id, r := range g.roles {
		if id != userID && r.isOwner {
			return true
		}
	}
	return false
}

func (g *Group) checkOwnership(userID primitive.ObjectID) error {
	if !g.IsOwner(userID) {
		return errAuthorization("user %s isn't an owner of group %s", userID.Hex(), g.id.Hex())
	}
	return nil
}

func (g *Group) checkAnotherOwnership(userID primitive.ObjectID) error {
	if !g.HasAnotherOwner(userID) {
		return errInvariant("user %s is the single owner of group %s", userID.Hex(), g.id.Hex())
	}
	return nil
}

// setRole swaps in a new role set with role inserted or replaced.
func (g *Group) setRole(role GroupUserRole) {
	next := make(map[primitive.ObjectID]GroupUserRole, len(g.roles)+1)
	for id, r := range g.roles {
		next[id] = r
	}
	next[role.userID] = role
	g.roles = next
	g.updatedAt = time.Now().UTC()
}

// unsetRole swaps in a new role set without userID.
func (g *Group) unsetRole(userID primitive.ObjectID) {
	next := make(map[primitive.ObjectID]GroupUserRole, len(g.roles))
	for id, r := range g.roles {
		if id != userID {
			next[id] = r
		}
	}
	g.roles = next
	g.updatedAt = time.Now().UTC()
}

// AssignGroupOwnership makes member an owner. owner must already be one.
func (g *Group) AssignGroupOwnership(owner, member *User) error {
	if err := g.checkOwnership(owner.ID()); err != nil {
		return err
	}
	g.setRole(NewGroupUserRole(member.ID(), owner.ID(), true))
	return nil
}

// UnassignGroupOwnership downgrades member to a plain member. owner must be
// an owner and member must not be the only one.
func (g *Group) UnassignGroupOwnership(owner, member *User) error {
	if err := g.checkOwnership(owner.ID()); err != nil {
		return err
	}
	if err := g.checkAnotherOwnership(member.ID()); err != nil {
		return err
	}
	g.setRole(NewGroupUserRole(member.ID(), owner.ID(), false))
	return nil
}

// UnassignOwnGroupOwnership lets an owner step down while another owner remains.
func (g *Group) UnassignOwnGroupOwnership(owner *User) error {
	return g.UnassignGroupOwnership(owner, owner)
}

// AssignGroupMembership adds member (or replaces their role) as a non-owner.
// An existing owner is demoted without checking for another owner, so this
// is the one operation that can leave the group with none; see HasOwner.
func (g *Group) AssignGroupMembership(owner, member *User) error {
	if err := g.checkOwnership(owner.ID()); err != nil {
		return err
	}
	g.setRole(NewGroupUserRole(member.ID(), owner.ID(), false))
	return nil
}

// UnassignGroupMembership removes member from the group.
func (g *Group) UnassignGroupMembership(owner, member *User) error {
	if err := g.checkOwnership(owner.ID()); err != nil {
		return err
	}
	if err := g.checkAnotherOwnership(member.ID()); err != nil {
		return err
	}
	g.unsetRole(member.ID())
	return nil
}

// UnassignOwnGroupMembership removes member from the group on their own
// request. No ownership is needed, only that another owner remains.
func (g *Group) UnassignOwnGroupMembership(member *User) error {
	if err := g.checkAnotherOwnership(member.ID()); err != nil {
		return err
	}
	g.unsetRole(member.ID())
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Stored form                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// groupDoc is the document shape of a group in the "groups" collection.
// Roles are embedded so the whole aggregate is written and read in one go.
type groupDoc struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	UserRoles []groupUserRoleDoc `bson:"user_roles" json:"user_roles"`
	Version   int64              `bson:"version" json:"version"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (g *Group) doc() groupDoc {
	roles := g.UserRoles()
	docs := make([]groupUserRoleDoc, 0, len(roles))
	for _, r := range roles {
		docs = append(docs, r.doc())
	}
	return groupDoc{
		ID:        g.id,
		Name:      g.name,
		UserRoles: docs,
		Version:   g.version,
		CreatedAt: g.createdAt,
		UpdatedAt: g.updatedAt,
	}
}

// fromDoc rebuilds the aggregate, rejecting states it could never reach itself.
func (g *Group) fromDoc(d groupDoc) error {
	roles := make(map[primitive.ObjectID]GroupUserRole, len(d.UserRoles))
	owners := 0
	for _, rd := range d.UserRoles {
		if _, dup := roles[rd.UserID]; dup {
			return fmt.Errorf("group %s: duplicate role for user %s", d.ID.Hex(), rd.UserID.Hex())
		}
		roles[rd.UserID] = rd.role()
		if rd.IsOwner {
			owners++
		}
	}
	if owners == 0 {
		return fmt.Errorf("group %s: stored without an owner", d.ID.Hex())
	}
	*g = Group{
		id:        d.ID,
		name:      d.Name,
		roles:     roles,
		version:   d.Version,
		createdAt: d.CreatedAt,
		updatedAt: d.UpdatedAt,
	}
	return nil
}

// MarshalBSON implements bson.Marshaler.
func (g *Group) MarshalBSON() ([]byte, error) {
	return bson.Marshal(g.doc())
}

// UnmarshalBSON implements bson.Unmarshaler.
func (g *Group) UnmarshalBSON(data []byte) error {
	var d groupDoc
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	return g.fromDoc(d)
}

// MarshalJSON implements json.Marshaler.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.doc())
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Group) UnmarshalJSON(data []byte) error {
	var d groupDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	return g.fromDoc(d)
}
