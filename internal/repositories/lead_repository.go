package repositories

import (
	"context"
	"fmt"
	"strings"
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

// MongoLeadRepository handles lead data access with MongoDB.
type MongoLeadRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
}

var _ services.LeadRepository = (*MongoLeadRepository)(nil)

func NewMongoLeadRepository(client *mongodb.Client) *MongoLeadRepository {
	return &MongoLeadRepository{
		client:     client,
		collection: client.Collection("leads"),
	}
}

// Insert persists a new lead document. The unique indexes on (email, adminId)
// and leadId are the final authority on uniqueness under concurrent writes.
func (r *MongoLeadRepository) Insert(ctx context.Context, lead *models.Lead) error {
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.ID == "" {
		lead.ID = uuid.MustNewUUID()
	}

	_, err := r.collection.InsertOne(ctx, lead)
	if err != nil {
		if IsDuplicateKey(err) {
			if strings.Contains(err.Error(), "leadId") {
				return ErrDuplicateLeadID
			}
			return ErrDuplicateEmail
		}
		return fmt.Errorf("error creating lead: %w", err)
	}
	return nil
}

func (r *MongoLeadRepository) FindByID(ctx context.Context, scope tenant.Scope, id string) (*models.Lead, error) {
	var lead models.Lead

	err := r.collection.FindOne(ctx, scope.Filter(bson.M{"_id": id})).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrLeadNotFound)
		}
		return nil, fmt.Errorf("error finding lead: %w", err)
	}

	return &lead, nil
}

func (r *MongoLeadRepository) List(ctx context.Context, scope tenant.Scope, q services.LeadQuery) ([]*models.Lead, error) {
	extra := bson.M{}
	if q.Status != "" {
		extra["status"] = q.Status
	}
	if q.Unassigned {
		extra["assignedTo"] = nil
	} else if q.AssignedTo != "" {
		extra["assignedTo"] = q.AssignedTo
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetLimit(limit).
		SetSkip(q.Offset).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, scope.Filter(extra), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing leads: %w", err)
	}
	defer cursor.Close(ctx)

	var leads []*models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("error decoding leads: %w", err)
	}

	return leads, nil
}

// Update applies a diff patch: only fields present in the patch are written.
func (r *MongoLeadRepository) Update(ctx context.Context, scope tenant.Scope, id string, patch models.LeadPatch) (*models.Lead, error) {
	set := bson.M{"updatedAt": time.Now()}
	for field, value := range patch.Fields() {
		set[field] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lead models.Lead
	err := r.collection.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), bson.M{"$set": set}, opts).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrLeadNotFound)
		}
		if IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error updating lead: %w", err)
	}

	return &lead, nil
}

// SetAssignment is the atomic per-lead assignment write. A nil assignee clears
// both the reference and the assignedAt timestamp.
func (r *MongoLeadRepository) SetAssignment(ctx context.Context, scope tenant.Scope, id string, assignee *string, at time.Time) (*models.Lead, error) {
	update := bson.M{}
	if assignee != nil {
		update["$set"] = bson.M{
			"assignedTo": *assignee,
			"assignedAt": at,
			"updatedAt":  at,
		}
	} else {
		update["$set"] = bson.M{
			"assignedTo": nil,
			"updatedAt":  at,
		}
		update["$unset"] = bson.M{"assignedAt": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lead models.Lead
	err := r.collection.FindOneAndUpdate(ctx, scope.Filter(bson.M{"_id": id}), update, opts).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, WrapNotFound(err, ErrLeadNotFound)
		}
		return nil, fmt.Errorf("error setting assignment: %w", err)
	}

	return &lead, nil
}

func (r *MongoLeadRepository) DeleteMany(ctx context.Context, scope tenant.Scope, ids []string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(bson.M{"_id": bson.M{"$in": ids}}))
	if err != nil {
		return 0, fmt.Errorf("error deleting leads: %w", err)
	}
	return result.DeletedCount, nil
}

// DeleteByTenant removes every lead of a tenant (teardown path).
func (r *MongoLeadRepository) DeleteByTenant(ctx context.Context, scope tenant.Scope) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, scope.Filter(nil))
	if err != nil {
		return 0, fmt.Errorf("error deleting tenant leads: %w", err)
	}
	return result.DeletedCount, nil
}

// ListIDs returns the storage ids of every lead in the scope, used by the
// teardown cascade to remove dependent documents first.
func (r *MongoLeadRepository) ListIDs(ctx context.Context, scope tenant.Scope) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, scope.Filter(nil), opts)
	if err != nil {
		return nil, fmt.Errorf("error listing lead ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding lead ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *MongoLeadRepository) EmailExists(ctx context.Context, scope tenant.Scope, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, scope.Filter(bson.M{"email": email}), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return count > 0, nil
}

// LeadIDExists checks the numeric id space. The query is intentionally
// unscoped: leadId is unique across all tenants.
func (r *MongoLeadRepository) LeadIDExists(ctx context.Context, leadID int) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"leadId": leadID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking leadId: %w", err)
	}
	return count > 0, nil
}

func (r *MongoLeadRepository) Count(ctx context.Context, scope tenant.Scope) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, scope.Filter(nil))
	if err != nil {
		return 0, fmt.Errorf("error counting leads: %w", err)
	}
	return count, nil
}

// EnsureIndexes creates the required indexes for the leads collection.
func (r *MongoLeadRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			// email uniqueness is per tenant
			Keys: bson.D{
				{Key: "email", Value: 1},
				{Key: "adminId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// leadId uniqueness is global; sparse because the field may be
			// absent right after creation until assigned
			Keys:    bson.D{{Key: "leadId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{
				{Key: "adminId", Value: 1},
				{Key: "status", Value: 1},
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
		return fmt.Errorf("error creating lead indexes: %w", err)
	}
	return nil
}
