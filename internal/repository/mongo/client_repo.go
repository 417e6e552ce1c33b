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

const clientCollectionName = "clients"

// mongoClientRepository implements repository.ClientRepository
type mongoClientRepository struct {
	collection *mongo.Collection
	descriptor query.Descriptor
}

// NewMongoClientRepository creates a new Client repository backed by MongoDB.
func NewMongoClientRepository(db *mongo.Database) repository.ClientRepository {
	return &mongoClientRepository{
		collection: db.Collection(clientCollectionName),
		descriptor: query.Clients(),
	}
}

func (r *mongoClientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.Name == "" || client.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("client name and trainer ID are required")
	}

	client.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if client.JoinedAt.IsZero() {
		client.JoinedAt = now
	}
	if client.LastActivityAt.IsZero() {
		client.LastActivityAt = now
	}
	client.Tags = domain.DedupTags(client.Tags)

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoClientRepository) GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.Client, error) {
	filter := scope(trainerID)
	filter["_id"] = id

	var client domain.Client
	err := r.collection.FindOne(ctx, filter).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *mongoClientRepository) List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.Client], error) {
	filter := buildFilter(trainerID, r.descriptor, q)
	return findPage[domain.Client](ctx, r.collection, filter, q)
}

func (r *mongoClientRepository) Update(ctx context.Context, client *domain.Client) error {
	if client.ID == primitive.NilObjectID {
		return errors.New("client ID is required for update")
	}

	filter := scope(client.TrainerID)
	filter["_id"] = client.ID

	client.UpdatedAt = time.Now().UTC()
	client.Tags = domain.DedupTags(client.Tags)

	result, err := r.collection.ReplaceOne(ctx, filter, client)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoClientRepository) SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error {
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

// AddTags appends tags with set semantics ($addToSet) and returns the
// updated client.
func (r *mongoClientRepository) AddTags(ctx context.Context, trainerID, id primitive.ObjectID, tags []string) (*domain.Client, error) {
	filter := scope(trainerID)
	filter["_id"] = id

	now := time.Now().UTC()
	update := bson.M{
		"$addToSet": bson.M{"tags": bson.M{"$each": domain.DedupTags(tags)}},
		"$set":      bson.M{"lastActivityAt": now, "updatedAt": now},
	}

	var client domain.Client
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&client)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *mongoClientRepository) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.ClientStats, error) {
	var stats repository.ClientStats
	base := scope(trainerID)

	var err error
	if stats.Total, err = countWhere(ctx, r.collection, base, bson.M{}); err != nil {
		return stats, err
	}
	if stats.Active, err = countWhere(ctx, r.collection, base, bson.M{"status": domain.ClientActive}); err != nil {
		return stats, err
	}
	if stats.Inactive, err = countWhere(ctx, r.collection, base, bson.M{"status": domain.ClientInactive}); err != nil {
		return stats, err
	}
	return stats, nil
}

// EnsureClientIndexes creates the indexes for the clients collection.
func EnsureClientIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "lastActivityAt", Value: -1}}},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
