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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
	descriptor query.Descriptor
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
		descriptor: query.Exercises(),
	}
}

// Create inserts a new exercise. The partial unique index on
// (trainerId, nameKey) makes the name-uniqueness check atomic; a duplicate
// surfaces as ErrConflict.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and trainer ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	exercise.NameKey = domain.NameKey(exercise.Name)
	exercise.Tags = domain.DedupTags(exercise.Tags)
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
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

func (r *mongoExerciseRepository) GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.Exercise, error) {
	filter := scope(trainerID)
	filter["_id"] = id

	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *mongoExerciseRepository) List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.Exercise], error) {
	filter := buildFilter(trainerID, r.descriptor, q)
	return findPage[domain.Exercise](ctx, r.collection, filter, q)
}

func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	filter := scope(exercise.TrainerID)
	filter["_id"] = exercise.ID

	exercise.NameKey = domain.NameKey(exercise.Name)
	exercise.Tags = domain.DedupTags(exercise.Tags)
	exercise.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, filter, exercise)
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

func (r *mongoExerciseRepository) SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error {
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

func (r *mongoExerciseRepository) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.ExerciseStats, error) {
	var stats repository.ExerciseStats
	base := scope(trainerID)

	var err error
	if stats.Total, err = countWhere(ctx, r.collection, base, bson.M{}); err != nil {
		return stats, err
	}
	if stats.ByCategory, err = groupCount(ctx, r.collection, base, "category"); err != nil {
		return stats, err
	}
	if stats.ByMuscleGroup, err = groupCount(ctx, r.collection, base, "muscleGroup"); err != nil {
		return stats, err
	}
	return stats, nil
}

// EnsureExerciseIndexes creates the indexes for the exercises collection,
// including the partial unique name index that backs the Conflict check.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "nameKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": false}),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
