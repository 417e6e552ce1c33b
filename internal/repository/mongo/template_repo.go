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

const (
	dietTemplateCollectionName    = "diet_templates"
	workoutTemplateCollectionName = "workout_templates"
)

// accessibleFilter matches a template the trainer may read: their own, or
// anyone's public one.
func accessibleFilter(trainerID, id primitive.ObjectID) bson.M {
	return bson.M{
		"_id":       id,
		"isDeleted": false,
		"$or": bson.A{
			bson.M{"trainerId": trainerID},
			bson.M{"isPublic": true},
		},
	}
}

func templateStats(ctx context.Context, coll *mongo.Collection, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	var stats repository.TemplateStats
	base := scope(trainerID)

	var err error
	if stats.Total, err = countWhere(ctx, coll, base, bson.M{}); err != nil {
		return stats, err
	}
	if stats.Public, err = countWhere(ctx, coll, base, bson.M{"isPublic": true}); err != nil {
		return stats, err
	}
	if stats.Favorites, err = countWhere(ctx, coll, base, bson.M{"isFavorite": true}); err != nil {
		return stats, err
	}
	if stats.ByObjective, err = groupCount(ctx, coll, base, "objective"); err != nil {
		return stats, err
	}
	return stats, nil
}

// --- Diet templates ---

// mongoDietTemplateRepository implements repository.DietTemplateRepository
type mongoDietTemplateRepository struct {
	collection *mongo.Collection
	descriptor query.Descriptor
}

// NewMongoDietTemplateRepository creates a new DietTemplate repository backed by MongoDB.
func NewMongoDietTemplateRepository(db *mongo.Database) repository.DietTemplateRepository {
	return &mongoDietTemplateRepository{
		collection: db.Collection(dietTemplateCollectionName),
		descriptor: query.DietTemplates(),
	}
}

func (r *mongoDietTemplateRepository) Create(ctx context.Context, tpl *domain.DietTemplate) (primitive.ObjectID, error) {
	if tpl.Name == "" || tpl.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and trainer ID are required")
	}

	tpl.ID = primitive.NewObjectID()
	tpl.NameKey = domain.NameKey(tpl.Name)
	tpl.Tags = domain.DedupTags(tpl.Tags)
	tpl.Restrictions = domain.DedupTags(tpl.Restrictions)
	tpl.Allergens = domain.DedupTags(tpl.Allergens)
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
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

func (r *mongoDietTemplateRepository) GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.DietTemplate, error) {
	filter := scope(trainerID)
	filter["_id"] = id
	return decodeDietTemplate(r.collection.FindOne(ctx, filter))
}

func (r *mongoDietTemplateRepository) GetAccessible(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.DietTemplate, error) {
	return decodeDietTemplate(r.collection.FindOne(ctx, accessibleFilter(trainerID, id)))
}

func decodeDietTemplate(res *mongo.SingleResult) (*domain.DietTemplate, error) {
	var tpl domain.DietTemplate
	if err := res.Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *mongoDietTemplateRepository) List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.DietTemplate], error) {
	filter := buildFilter(trainerID, r.descriptor, q)
	return findPage[domain.DietTemplate](ctx, r.collection, filter, q)
}

func (r *mongoDietTemplateRepository) Update(ctx context.Context, tpl *domain.DietTemplate) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}

	filter := scope(tpl.TrainerID)
	filter["_id"] = tpl.ID

	tpl.NameKey = domain.NameKey(tpl.Name)
	tpl.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, filter, tpl)
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

func (r *mongoDietTemplateRepository) SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error {
	return softDelete(ctx, r.collection, trainerID, id)
}

func (r *mongoDietTemplateRepository) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	return templateStats(ctx, r.collection, trainerID)
}

// --- Workout templates ---

// mongoWorkoutTemplateRepository implements repository.WorkoutTemplateRepository
type mongoWorkoutTemplateRepository struct {
	collection *mongo.Collection
	descriptor query.Descriptor
}

// NewMongoWorkoutTemplateRepository creates a new WorkoutTemplate repository backed by MongoDB.
func NewMongoWorkoutTemplateRepository(db *mongo.Database) repository.WorkoutTemplateRepository {
	return &mongoWorkoutTemplateRepository{
		collection: db.Collection(workoutTemplateCollectionName),
		descriptor: query.WorkoutTemplates(),
	}
}

func (r *mongoWorkoutTemplateRepository) Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if tpl.Name == "" || tpl.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and trainer ID are required")
	}

	tpl.ID = primitive.NewObjectID()
	tpl.NameKey = domain.NameKey(tpl.Name)
	tpl.Tags = domain.DedupTags(tpl.Tags)
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
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

func (r *mongoWorkoutTemplateRepository) GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	filter := scope(trainerID)
	filter["_id"] = id
	return decodeWorkoutTemplate(r.collection.FindOne(ctx, filter))
}

func (r *mongoWorkoutTemplateRepository) GetAccessible(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	return decodeWorkoutTemplate(r.collection.FindOne(ctx, accessibleFilter(trainerID, id)))
}

func decodeWorkoutTemplate(res *mongo.SingleResult) (*domain.WorkoutTemplate, error) {
	var tpl domain.WorkoutTemplate
	if err := res.Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *mongoWorkoutTemplateRepository) List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.WorkoutTemplate], error) {
	filter := buildFilter(trainerID, r.descriptor, q)
	return findPage[domain.WorkoutTemplate](ctx, r.collection, filter, q)
}

func (r *mongoWorkoutTemplateRepository) Update(ctx context.Context, tpl *domain.WorkoutTemplate) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}

	filter := scope(tpl.TrainerID)
	filter["_id"] = tpl.ID

	tpl.NameKey = domain.NameKey(tpl.Name)
	tpl.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, filter, tpl)
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

func (r *mongoWorkoutTemplateRepository) SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error {
	return softDelete(ctx, r.collection, trainerID, id)
}

func (r *mongoWorkoutTemplateRepository) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	return templateStats(ctx, r.collection, trainerID)
}

func softDelete(ctx context.Context, coll *mongo.Collection, trainerID, id primitive.ObjectID) error {
	filter := scope(trainerID)
	filter["_id"] = id

	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}}
	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTemplateIndexes creates the indexes shared by both template
// collections.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "nameKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
