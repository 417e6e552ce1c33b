package mongo

import (
	"context"
	"errors"
	"time"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/query"
	"coachapp/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dietPlanCollectionName = "diet_plans"

// mongoDietPlanRepository implements repository.DietPlanRepository
type mongoDietPlanRepository struct {
	collection *mongo.Collection
	descriptor query.Descriptor
}

// NewMongoDietPlanRepository creates a new DietPlan repository backed by MongoDB.
func NewMongoDietPlanRepository(db *mongo.Database) repository.DietPlanRepository {
	return &mongoDietPlanRepository{
		collection: db.Collection(dietPlanCollectionName),
		descriptor: query.DietPlans(),
	}
}

func (r *mongoDietPlanRepository) Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	if plan.Name == "" || plan.TrainerID == primitive.NilObjectID || plan.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan name, trainer ID and client ID are required")
	}

	plan.ID = primitive.NewObjectID()
	plan.NameKey = domain.NameKey(plan.Name)
	plan.Restrictions = domain.DedupTags(plan.Restrictions)
	plan.Allergens = domain.DedupTags(plan.Allergens)
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.LastActivityAt.IsZero() {
		plan.LastActivityAt = now
	}
	if plan.Entries == nil {
		plan.Entries = []domain.TrackingEntry{}
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoDietPlanRepository) GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.DietPlan, error) {
	filter := scope(trainerID)
	filter["_id"] = id

	var plan domain.DietPlan
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	normalizePlan(&plan)
	return &plan, nil
}

func (r *mongoDietPlanRepository) List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.DietPlan], error) {
	filter := buildFilter(trainerID, r.descriptor, q)
	page, err := findPage[domain.DietPlan](ctx, r.collection, filter, q)
	if err != nil {
		return page, err
	}
	for i := range page.Items {
		normalizePlan(&page.Items[i])
	}
	return page, nil
}

func (r *mongoDietPlanRepository) ListByClient(ctx context.Context, trainerID, clientID primitive.ObjectID, status domain.PlanStatus) ([]domain.DietPlan, error) {
	filter := scope(trainerID)
	filter["clientId"] = clientID
	if status != "" {
		if status == domain.PlanPaused {
			filter["status"] = bson.M{"$in": domain.PausedSpellings()}
		} else {
			filter["status"] = status
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.DietPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	for i := range plans {
		normalizePlan(&plans[i])
	}
	return plans, nil
}

func (r *mongoDietPlanRepository) Update(ctx context.Context, plan *domain.DietPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	filter := scope(plan.TrainerID)
	filter["_id"] = plan.ID

	plan.NameKey = domain.NameKey(plan.Name)
	plan.Restrictions = domain.DedupTags(plan.Restrictions)
	plan.Allergens = domain.DedupTags(plan.Allergens)
	plan.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, filter, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDietPlanRepository) SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error {
	filter := scope(trainerID)
	filter["_id"] = id

	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoDietPlanRepository) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.DietPlanStats, error) {
	var stats repository.DietPlanStats
	base := scope(trainerID)

	var err error
	if stats.Total, err = countWhere(ctx, r.collection, base, bson.M{}); err != nil {
		return stats, err
	}
	if stats.Active, err = countWhere(ctx, r.collection, base, bson.M{"status": domain.PlanActive}); err != nil {
		return stats, err
	}
	if stats.Paused, err = countWhere(ctx, r.collection, base, bson.M{"status": bson.M{"$in": domain.PausedSpellings()}}); err != nil {
		return stats, err
	}
	if stats.Completed, err = countWhere(ctx, r.collection, base, bson.M{"status": domain.PlanCompleted}); err != nil {
		return stats, err
	}

	ongoing := scope(trainerID)
	ongoing["status"] = bson.M{"$in": domain.OngoingStatuses()}
	if stats.AvgAdherence, err = averageWhere(ctx, r.collection, ongoing, "adherence"); err != nil {
		return stats, err
	}

	if stats.ByObjective, err = groupCount(ctx, r.collection, base, "objective"); err != nil {
		return stats, err
	}
	if stats.ByDietType, err = groupCount(ctx, r.collection, base, "dietType"); err != nil {
		return stats, err
	}
	return stats, nil
}

// normalizePlan collapses the legacy paused spelling on the way out so
// callers only ever see canonical statuses.
func normalizePlan(plan *domain.DietPlan) {
	if s, ok := domain.NormalizePlanStatus(plan.Status); ok {
		plan.Status = s
	}
}

// EnsureDietPlanIndexes creates the indexes for the diet plans collection.
func EnsureDietPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "startDate", Value: -1}}},
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "nameKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
