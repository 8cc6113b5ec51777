// internal/domain/models/user.go
package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account identity.
//
// NOTE:
//   - The supervisor flag is granted out of band (the administrative store
//     path). It is only ever read here and arrives by decoding a stored user.
//   - Deletion is a one-way latch; a deleted user is never undeleted.
type User struct {
	id           primitive.ObjectID
	email        string
	name         string
	isSupervisor bool
	isDeleted    bool
	deletedAt    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates an active, non-supervisor user with a fresh id.
func NewUser(email, name string) *User {
	now := time.Now().UTC()
	return &User{
		id:        primitive.NewObjectID(),
		email:     email,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() primitive.ObjectID { return u.id }
func (u *User) Email() string          { return u.email }
func (u *User) Name() string           { return u.name }
func (u *User) IsSupervisor() bool     { return u.isSupervisor }
func (u *User) IsDeleted() bool        { return u.isDeleted }
func (u *User) DeletedAt() *time.Time  { return u.deletedAt }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }

// Rename changes the display name.
func (u *User) Rename(name string) {
	u.name = name
	u.updatedAt = time.Now().UTC()
}

// DeleteOwnAccount marks this account deleted on behalf of acting.
//
// A supervisor may delete any account except their own. Everyone else may
// delete only their own account.
func (u *User) DeleteOwnAccount(acting *User) error {
	if acting.isSupervisor {
		if u.id == acting.id {
			return errDomain("supervisor can't delete own user account")
		}
	} else if u.id != acting.id {
		return errDomain("user can't delete other user account")
	}

	if u.isDeleted {
		return nil
	}
	now := time.Now().UTC()
	u.isDeleted = true
	u.deletedAt = &now
	u.updatedAt = now
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Stored form                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// userDoc is the document shape of a user in the "users" collection.
type userDoc struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	IsSupervisor bool               `bson:"is_supervisor" json:"is_supervisor"`
	IsDeleted    bool               `bson:"is_deleted" json:"is_deleted"`
	DeletedAt    *time.Time         `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (u *User) doc() userDoc {
	return userDoc{
		ID:           u.id,
		Email:        u.email,
		Name:         u.name,
		IsSupervisor: u.isSupervisor,
		IsDeleted:    u.isDeleted,
		DeletedAt:    u.deletedAt,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
	}
}

func (u *User) fromDoc(d userDoc) {
	*u = User{
		id:           d.ID,
		email:        d.Email,
		name:         d.Name,
		isSupervisor: d.IsSupervisor,
		isDeleted:    d.IsDeleted,
		deletedAt:    d.DeletedAt,
		createdAt:    d.CreatedAt,
		updatedAt:    d.UpdatedAt,
	}
}

// MarshalBSON implements bson.Marshaler.
func (u *User) MarshalBSON() ([]byte, error) {
	return bson.Marshal(u.doc())
}

// UnmarshalBSON implements bson.Unmarshaler.
func (u *User) UnmarshalBSON(data []byte) error {
	var d userDoc
	if err := bson.Unmarshal(data, &d); err != nil {
		return err
	}
	u.fromDoc(d)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.doc())
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *User) UnmarshalJSON(data []byte) error {
	var d userDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	u.fromDoc(d)
	return nil
}
