// internal/domain/models/groupuserrole.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupUserRole binds one user to a group. It is a value: a role change
// always replaces the whole GroupUserRole, never a field of it.
type GroupUserRole struct {
	userID     primitive.ObjectID
	assignedBy primitive.ObjectID
	isOwner    bool
}

// NewGroupUserRole builds a role for userID granted by assignedBy.
func NewGroupUserRole(userID, assignedBy primitive.ObjectID, isOwner bool) GroupUserRole {
	return GroupUserRole{userID: userID, assignedBy: assignedBy, isOwner: isOwner}
}

// founderRole is the owner role a group starts with; the founder assigns it to themselves.
func founderRole(founder *User) GroupUserRole {
	return GroupUserRole{userID: founder.ID(), assignedBy: founder.ID(), isOwner: true}
}

func (r GroupUserRole) UserID() primitive.ObjectID     { return r.userID }
func (r GroupUserRole) AssignedBy() primitive.ObjectID { return r.assignedBy }
func (r GroupUserRole) IsOwner() bool                  { return r.isOwner }

// groupUserRoleDoc is the stored shape of a GroupUserRole, embedded in the
// group document.
type groupUserRoleDoc struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	AssignedBy primitive.ObjectID `bson:"assigned_by" json:"assigned_by"`
	IsOwner    bool               `bson:"is_owner" json:"is_owner"`
}

func (r GroupUserRole) doc() groupUserRoleDoc {
	return groupUserRoleDoc{UserID: r.userID, AssignedBy: r.assignedBy, IsOwner: r.isOwner}
}

func (d groupUserRoleDoc) role() GroupUserRole {
	return GroupUserRole{userID: d.UserID, assignedBy: d.AssignedBy, isOwner: d.IsOwner}
}

// Reference describes a field of a stored document that holds the id of
// another entity. Persistence code uses it to check referential integrity;
// the domain never consults it.
type Reference struct {
	Field      string // bson field name inside the document
	Collection string // collection holding the referenced entity
}

// GroupUserRoleRefs lists the user references carried by every role entry.
var GroupUserRoleRefs = []Reference{
	{Field: "user_id", Collection: "users"},
	{Field: "assigned_by", Collection: "users"},
}
