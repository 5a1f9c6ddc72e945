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

// MongoActivityRepository persists the append-only audit trail.
// There is no update method on purpose; the only mutations are the delete
// cascades for lead bulk-delete and tenant teardown.
type MongoActivityRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

var _ services.ActivityRepository = (*MongoActivityRepository)(nil)

func NewMongoActivityRepository(client *mongodb.Client) *MongoActivityRepository {
	return &MongoActivityRepository{
		client:     client,
		collection: client.Collection("activities"),
	}
}

func (r *MongoActivityRepository) Insert(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.MustNewUUID()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("error appending activity: %w", err)
	}
	return nil
}

func (r *MongoActivityRepository) ListByLead(ctx context.Context, scope tenant.Scope, leadRef string, limit int64) ([]*models.Activity, error) {
	return r.list(ctx, scope.Filter(bson.M{"leadId": leadRef}), limit)
}

func (r *MongoActivityRepository) ListByTenant(ctx context.Context, scope tenant.Scope, limit int64) ([]*models.Activity, error) {
	return r.list(ctx, scope.Filter(nil), limit)
}

func (r *MongoActivityRepository) ListByUser(ctx context.Context, scope tenant.Scope, userID string, limit int64) ([]*models.Activity, error) {
	return r.list(ctx, scope.Filter(bson.M{"userId": userID}), limit)
}

func (r *MongoActivityRepository) list(ctx context.Context, filter bson.M, limit int64) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "timestamp", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("error decoding activities: %w", err)
	}

	return activities, nil
}

// AggregateByDay groups activity counts by day and type for the dashboard
// sparkline.
func (r *MongoActivityRepository) AggregateByDay(ctx context.Context, scope tenant.Scope, days int) ([]models.ActivityDayCount, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: scope.Filter(bson.M{"timestamp": bson.M{"$gte": since}})}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"day":  bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp"}},
				"type": "$type",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"day":   "$_id.day",
			"type":  "$_id.type",
			"count": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "day", Value: 1}, {Key: "type", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating activities: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []models.ActivityDayCount
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("error decoding activity buckets: %w", err)
	}

	return buckets, nil
}

func (r *MongoActivityRepository) DeleteByLeads(ctx context.Context, scope tenant.Scope, leadRefs []string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(bson.M{"leadId": bson.M{"$in": leadRefs}}))
	if err != nil {
		return 0, fmt.Errorf("error deleting lead activities: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *MongoActivityRepository) DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(nil))
	if err != nil {
		return 0, fmt.Errorf("error deleting tenant activities: %w", err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates the required indexes for the activities collection.
func (r *MongoActivityRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "leadId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "userId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating activity indexes: %w", err)
	}
	return nil
}
