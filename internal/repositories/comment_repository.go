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

// MongoCommentRepository handles lead comment data access with MongoDB.
type MongoCommentRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

var _ services.CommentRepository = (*MongoCommentRepository)(nil)

func NewMongoCommentRepository(client *mongodb.Client) *MongoCommentRepository {
	return &MongoCommentRepository{
		client:     client,
		collection: client.Collection("comments"),
	}
}

func (r *MongoCommentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.ID == "" {
		comment.ID = uuid.MustNewUUID()
	}

	if _, err := r.collection.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

func (r *MongoCommentRepository) FindByID(ctx context.Context, scope tenant.Scope, leadRef, commentID string) (*models.Comment, error) {
	var comment models.Comment

	filter := scope.Filter(bson.M{"_id": commentID, "leadId": leadRef})
	err := r.collection.FindOne(ctx, filter).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrCommentNotFound)
		}
		return nil, fmt.Errorf("error finding comment: %w", err)
	}

	return &comment, nil
}

func (r *MongoCommentRepository) ListByLead(ctx context.Context, scope tenant.Scope, leadRef string) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, scope.Filter(bson.M{"leadId": leadRef}), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("error decoding comments: %w", err)
	}

	return comments, nil
}

func (r *MongoCommentRepository) UpdateContent(ctx context.Context, scope tenant.Scope, leadRef, commentID, content string, at time.Time) (*models.Comment, error) {
	filter := scope.Filter(bson.M{"_id": commentID, "leadId": leadRef})
	update := bson.M{
		"$set": bson.M{
			"content":   content,
			"updatedAt": at,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrCommentNotFound)
		}
		return nil, fmt.Errorf("error updating comment: %w", err)
	}

	return &comment, nil
}

func (r *MongoCommentRepository) Delete(ctx context.Context, scope tenant.Scope, leadRef, commentID string) error {
	filter := scope.Filter(bson.M{"_id": commentID, "leadId": leadRef})

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting comment: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *MongoCommentRepository) DeleteByLeads(ctx context.Context, scope tenant.Scope, leadRefs []string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(bson.M{"leadId": bson.M{"$in": leadRefs}}))
	if err != nil {
		return 0, fmt.Errorf("error deleting lead comments: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *MongoCommentRepository) DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(nil))
	if err != nil {
		return 0, fmt.Errorf("error deleting tenant comments: %w", err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates the required indexes for the comments collection.
func (r *MongoCommentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "leadId", Value: 1},
				{Key: "createdAt", Value: 1},
			},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating comment indexes: %w", err)
	}
	return nil
}
