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

// MongoReminderRepository handles reminder data access with MongoDB.
type MongoReminderRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

var _ services.ReminderRepository = (*MongoReminderRepository)(nil)

func NewMongoReminderRepository(client *mongodb.Client) *MongoReminderRepository {
	return &MongoReminderRepository{
		client:     client,
		collection: client.Collection("reminders"),
	}
}

func (r *MongoReminderRepository) Insert(ctx context.Context, reminder *models.Reminder) error {
	now := time.Now()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now
	if reminder.ID == "" {
		reminder.ID = uuid.MustNewUUID()
	}

	if _, err := r.collection.InsertOne(ctx, reminder); err != nil {
		return fmt.Errorf("error creating reminder: %w", err)
	}
	return nil
}

func (r *MongoReminderRepository) FindByID(ctx context.Context, scope tenant.Scope, id string) (*models.Reminder, error) {
	var reminder models.Reminder

	err := r.collection.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&reminder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrReminderNotFound)
		}
		return nil, fmt.Errorf("error finding reminder: %w", err)
	}

	return &reminder, nil
}

func (r *MongoReminderRepository) ListOpen(ctx context.Context, scope tenant.Scope, assignedTo string) ([]*models.Reminder, error) {
	extra := bson.M{
		"status": bson.M{"$in": []models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}},
	}
	if assignedTo != "" {
		extra["assignedTo"] = assignedTo
	}

	opts := options.Find().SetSort(bson.D{{Key: "reminderDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, scope.Filter(extra), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var reminders []*models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("error decoding reminders: %w", err)
	}

	return reminders, nil
}

func (r *MongoReminderRepository) SetStatus(ctx context.Context, scope tenant.Scope, id string, status models.ReminderStatus, snoozedUntil *time.Time) (*models.Reminder, error) {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	update := bson.M{"$set": set}
	if snoozedUntil != nil {
		set["snoozedUntil"] = *snoozedUntil
	} else {
		update["$unset"] = bson.M{"snoozedUntil": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var reminder models.Reminder
	err := r.collection.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), update, opts).Decode(&reminder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrReminderNotFound)
		}
		return nil, fmt.Errorf("error updating reminder: %w", err)
	}

	return &reminder, nil
}

func (r *MongoReminderRepository) DeleteByLeads(ctx context.Context, scope tenant.Scope, leadRefs []string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(bson.M{"leadId": bson.M{"$in": leadRefs}}))
	if err != nil {
		return 0, fmt.Errorf("error deleting lead reminders: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *MongoReminderRepository) DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(nil))
	if err != nil {
		return 0, fmt.Errorf("error deleting tenant reminders: %w", err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates the required indexes for the reminders collection.
func (r *MongoReminderRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "reminderDate", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "assignedTo", Value: 1},
			},
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating reminder indexes: %w", err)
	}
	return nil
}
