package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Admin is an administrative account, looked up by email.
type Admin struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password,omitempty" bson:"password"`
	Role      string             `json:"role" bson:"role"` // "admin" or "user"
	Tokens    []IssuedToken      `json:"-" bson:"tokens,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (a *Admin) PrincipalID() primitive.ObjectID { return a.ID }

func (a *Admin) PrincipalRole() string { return a.Role }
