package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkhata/shopkhata_backend/models"
)

var (
	// ErrNotFound is returned when a store holds no record for the given key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a create collides with the store's
	// unique index (email for admins, phone for users).
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrPrincipalNotFound is returned when neither account store owns an id.
	ErrPrincipalNotFound = errors.New("principal not found")
)

// AdminStore is the administrative-account collection, keyed by email.
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	AppendToken(ctx context.Context, id primitive.ObjectID, token models.IssuedToken) error
	RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokens(ctx context.Context, id primitive.ObjectID) error
}

// PhoneAccountStore is the phone-account collection, keyed by phone number.
// Challenge mutations are single atomic updates on the owning document, so
// concurrent requests for the same phone resolve last-writer-wins.
type PhoneAccountStore interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// UpsertChallenge stores a fresh OTP on the account owning phone,
	// creating a placeholder account when none exists yet, and overwriting
	// any prior pending challenge.
	UpsertChallenge(ctx context.Context, phone string, otp models.OTPInfo) (*models.User, error)
	// MarkVerified clears the pending challenge and sets the verification
	// flags, making the consumed code unreplayable.
	MarkVerified(ctx context.Context, phone string) error
	CompleteProfile(ctx context.Context, id primitive.ObjectID, profile models.CompleteProfileRequest, passwordHash string) error
	AppendToken(ctx context.Context, id primitive.ObjectID, token models.IssuedToken) error
	RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearTokens(ctx context.Context, id primitive.ObjectID) error
}

// Resolver loads the principal owning an id. One token format is shared by
// both account kinds and the payload carries no kind tag, so resolution
// tries the admin store first and falls back to the phone-account store;
// the two stores draw ids from disjoint spaces.
type Resolver struct {
	Admins AdminStore
	Users  PhoneAccountStore
}

func NewResolver(admins AdminStore, users PhoneAccountStore) *Resolver {
	return &Resolver{Admins: admins, Users: users}
}

// Resolve returns the Admin or User owning id, or ErrPrincipalNotFound when
// neither store holds it.
func (r *Resolver) Resolve(ctx context.Context, id primitive.ObjectID) (models.Principal, error) {
	admin, err := r.Admins.FindByID(ctx, id)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user, err := r.Users.FindByID(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return nil, ErrPrincipalNotFound
}

// RemoveToken deletes one issued-token record from the store owning the
// principal.
func (r *Resolver) RemoveToken(ctx context.Context, p models.Principal, token string) error {
	switch p.(type) {
	case *models.Admin:
		return r.Admins.RemoveToken(ctx, p.PrincipalID(), token)
	case *models.User:
		return r.Users.RemoveToken(ctx, p.PrincipalID(), token)
	}
	return ErrPrincipalNotFound
}

// ClearTokens empties the principal's session list.
func (r *Resolver) ClearTokens(ctx context.Context, p models.Principal) error {
	switch p.(type) {
	case *models.Admin:
		return r.Admins.ClearTokens(ctx, p.PrincipalID())
	case *models.User:
		return r.Users.ClearTokens(ctx, p.PrincipalID())
	}
	return ErrPrincipalNotFound
}
