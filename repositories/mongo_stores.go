package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopkhata/shopkhata_backend/config"
	"github.com/shopkhata/shopkhata_backend/models"
)

// MongoAdminStore implements AdminStore over the "admins" collection.
type MongoAdminStore struct {
	collection *mongo.Collection
}

func NewMongoAdminStore(db *mongo.Client) *MongoAdminStore {
	return &MongoAdminStore{collection: config.GetCollection(db, "admins")}
}

func (s *MongoAdminStore) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	_, err := s.collection.InsertOne(ctx, admin)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (s *MongoAdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *MongoAdminStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (s *MongoAdminStore) AppendToken(ctx context.Context, id primitive.ObjectID, token models.IssuedToken) error {
	return appendToken(ctx, s.collection, id, token)
}

func (s *MongoAdminStore) RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return removeToken(ctx, s.collection, id, token)
}

func (s *MongoAdminStore) ClearTokens(ctx context.Context, id primitive.ObjectID) error {
	return clearTokens(ctx, s.collection, id)
}

// MongoUserStore implements PhoneAccountStore over the "users" collection.
type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Client) *MongoUserStore {
	return &MongoUserStore{collection: config.GetCollection(db, "users")}
}

func (s *MongoUserStore) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertChallenge stores the new code in a single find-and-update so two
// concurrent challenge requests for the same phone cannot interleave; the
// later writer wins. A placeholder account is created when the phone has
// never been seen, so a challenge can precede registration.
func (s *MongoUserStore) UpsertChallenge(ctx context.Context, phone string, otp models.OTPInfo) (*models.User, error) {
	now := time.Now()
	filter := bson.M{"phone": phone}
	update := bson.M{
		"$set": bson.M{
			"otp":       otp,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"phone":         phone,
			"type":          "customer",
			"role":          "customer",
			"phoneVerified": false,
			"isVerified":    false,
			"createdAt":     now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	err := s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) MarkVerified(ctx context.Context, phone string) error {
	filter := bson.M{"phone": phone}
	update := bson.M{
		"$unset": bson.M{"otp": ""},
		"$set": bson.M{
			"phoneVerified": true,
			"isVerified":    true,
			"updatedAt":     time.Now(),
		},
	}

	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) CompleteProfile(ctx context.Context, id primitive.ObjectID, profile models.CompleteProfileRequest, passwordHash string) error {
	set := bson.M{
		"fullName":  profile.FullName,
		"type":      profile.Type,
		"role":      profile.Type,
		"updatedAt": time.Now(),
	}
	if profile.Pincode != "" {
		set["pincode"] = profile.Pincode
	}
	if profile.Email != "" {
		set["email"] = profile.Email
	}
	if passwordHash != "" {
		set["password"] = passwordHash
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) AppendToken(ctx context.Context, id primitive.ObjectID, token models.IssuedToken) error {
	return appendToken(ctx, s.collection, id, token)
}

func (s *MongoUserStore) RemoveToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return removeToken(ctx, s.collection, id, token)
}

func (s *MongoUserStore) ClearTokens(ctx context.Context, id primitive.ObjectID) error {
	return clearTokens(ctx, s.collection, id)
}

func appendToken(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, token models.IssuedToken) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$push": bson.M{"tokens": token},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func removeToken(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, token string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	return err
}

func clearTokens(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{"tokens": []models.IssuedToken{}, "updatedAt": time.Now()},
	}

	_, err := collection.UpdateOne(ctx, filter, update)
	return err
}
