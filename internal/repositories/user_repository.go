package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/white/lead-management/internal/models"
	"github.com/white/lead-management/internal/services"
	"github.com/white/lead-management/internal/tenant"
	"github.com/white/lead-management/pkg/mongodb"
	"github.com/white/lead-management/pkg/uuid"
)

// MongoUserRepository handles user (admin/agent) data access with MongoDB.
type MongoUserRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

var _ services.UserRepository = (*MongoUserRepository)(nil)

func NewMongoUserRepository(client *mongodb.Client) *MongoUserRepository {
	return &MongoUserRepository{
		client:     client,
		collection: client.Collection("users"),
	}
}

func (r *MongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID == "" {
		user.ID = uuid.MustNewUUID()
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("%w: user with email %s already exists", ErrDuplicateEmail, user.Email)
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// FindByID is the unscoped root lookup; used to load a tenant's admin record.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrUserNotFound)
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &user, nil
}

// FindTenantUser resolves a user visible inside the scope: either the tenant's
// admin itself or an agent created under it.
func (r *MongoUserRepository) FindTenantUser(ctx context.Context, scope tenant.Scope, id string) (*models.User, error) {
	filter := bson.M{
		"_id": id,
		"$or": []bson.M{
			{"adminId": scope.TenantID()},
			{"_id": scope.TenantID()},
		},
	}

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrUserNotFound)
		}
		return nil, fmt.Errorf("error finding tenant user: %w", err)
	}

	return &user, nil
}

func (r *MongoUserRepository) ListAgents(ctx context.Context, scope tenant.Scope) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, scope.Filter(bson.M{"role": models.RoleAgent}), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing agents: %w", err)
	}
	defer cursor.Close(ctx)

	var agents []*models.User
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("error decoding agents: %w", err)
	}

	return agents, nil
}

func (r *MongoUserRepository) CountAgents(ctx context.Context, scope tenant.Scope) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, scope.Filter(bson.M{"role": models.RoleAgent}))
	if err != nil {
		return 0, fmt.Errorf("error counting agents: %w", err)
	}
	return count, nil
}

func (r *MongoUserRepository) SetStatus(ctx context.Context, scope tenant.Scope, id string, status models.UserStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, scope.Filter(bson.M{"_id": id}), update)
	if err != nil {
		return fmt.Errorf("error updating user status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteAgents removes every agent of a tenant (teardown path).
func (r *MongoUserRepository) DeleteAgents(ctx context.Context, scope tenant.Scope) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(bson.M{"role": models.RoleAgent}))
	if err != nil {
		return 0, fmt.Errorf("error deleting agents: %w", err)
	}
	return result.DeletedCount, nil
}

// Delete removes a single user document; the final step of tenant teardown.
func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the required indexes for the users collection.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "role", Value: 1},
			},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating user indexes: %w", err)
	}
	return nil
}
