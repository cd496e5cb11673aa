package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Principal is an authenticated identity: either an Admin or a User. Both
// kinds share one token format, so a resolved principal only needs to expose
// its id and role; the concrete type carries everything else.
type Principal interface {
	PrincipalID() primitive.ObjectID
	PrincipalRole() string
}
