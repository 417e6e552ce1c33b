package repository

import (
	"context"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("duplicate name")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Page is one page of a tenant-scoped listing. Pages is always at least 1.
type Page[T any] struct {
	Items []T
	Total int
	Pages int
}

// ClientStats is the filter-independent client summary for one trainer.
type ClientStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ExerciseStats is the filter-independent exercise summary for one trainer.
type ExerciseStats struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"byCategory"`
	ByMuscleGroup map[string]int `json:"byMuscleGroup"`
}

// DietPlanStats is the filter-independent diet-plan summary for one
// trainer. Paused buckets both stored spellings; AvgAdherence averages
// over ongoing (active or paused) plans and is 0 when there are none.
type DietPlanStats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Paused       int            `json:"paused"`
	Completed    int            `json:"completed"`
	AvgAdherence int            `json:"avgAdherence"`
	ByObjective  map[string]int `json:"byObjective"`
	ByDietType   map[string]int `json:"byDietType"`
}

// TemplateStats is the filter-independent template summary for one trainer.
type TemplateStats struct {
	Total       int            `json:"total"`
	Public      int            `json:"public"`
	Favorites   int            `json:"favorites"`
	ByObjective map[string]int `json:"byObjective"`
}

// UserRepository stores trainer accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ClientRepository stores coached clients. Every read and write is scoped
// by (trainerId, isDeleted=false); an id owned by another trainer behaves
// exactly like a missing one.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.Client, error)
	List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (Page[domain.Client], error)
	Update(ctx context.Context, client *domain.Client) error
	SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error
	AddTags(ctx context.Context, trainerID, id primitive.ObjectID, tags []string) (*domain.Client, error)
	Stats(ctx context.Context, trainerID primitive.ObjectID) (ClientStats, error)
}

// ExerciseRepository stores the per-trainer exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (Page[domain.Exercise], error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error
	Stats(ctx context.Context, trainerID primitive.ObjectID) (ExerciseStats, error)
}

// DietPlanRepository stores diet plans with their embedded tracking
// entries.
type DietPlanRepository interface {
	Create(ctx context.Context, plan *domain.DietPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.DietPlan, error)
	List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (Page[domain.DietPlan], error)
	ListByClient(ctx context.Context, trainerID, clientID primitive.ObjectID, status domain.PlanStatus) ([]domain.DietPlan, error)
	Update(ctx context.Context, plan *domain.DietPlan) error
	SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error
	Stats(ctx context.Context, trainerID primitive.ObjectID) (DietPlanStats, error)
}

// DietTemplateRepository stores diet templates. GetAccessible also matches
// public templates owned by other trainers.
type DietTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.DietTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.DietTemplate, error)
	GetAccessible(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.DietTemplate, error)
	List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (Page[domain.DietTemplate], error)
	Update(ctx context.Context, tpl *domain.DietTemplate) error
	SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error
	Stats(ctx context.Context, trainerID primitive.ObjectID) (TemplateStats, error)
}

// WorkoutTemplateRepository stores workout templates.
type WorkoutTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetAccessible(ctx context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	List(ctx context.Context, trainerID primitive.ObjectID, q query.ListQuery) (Page[domain.WorkoutTemplate], error)
	Update(ctx context.Context, tpl *domain.WorkoutTemplate) error
	SoftDelete(ctx context.Context, trainerID, id primitive.ObjectID) error
	Stats(ctx context.Context, trainerID primitive.ObjectID) (TemplateStats, error)
}
