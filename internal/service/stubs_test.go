package service

import (
	"context"
	"time"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/query"
	"coachapp/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository stubs. They implement only as much filtering as the
// service tests exercise; listing returns everything owned by the trainer.

type stubClientRepo struct {
	clients map[primitive.ObjectID]*domain.Client
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: map[primitive.ObjectID]*domain.Client{}}
}

func (r *stubClientRepo) Create(_ context.Context, client *domain.Client) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	client.ID = id
	if client.JoinedAt.IsZero() {
		client.JoinedAt = time.Now().UTC()
	}
	cp := *client
	r.clients[id] = &cp
	return id, nil
}

func (r *stubClientRepo) GetByID(_ context.Context, trainerID, id primitive.ObjectID) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok || c.TrainerID != trainerID || c.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClientRepo) List(_ context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.Client], error) {
	var items []domain.Client
	for _, c := range r.clients {
		if c.TrainerID == trainerID && !c.IsDeleted {
			items = append(items, *c)
		}
	}
	return repository.Page[domain.Client]{Items: items, Total: len(items), Pages: query.Pages(len(items), q.PageSize)}, nil
}

func (r *stubClientRepo) Update(_ context.Context, client *domain.Client) error {
	stored, ok := r.clients[client.ID]
	if !ok || stored.TrainerID != client.TrainerID || stored.IsDeleted {
		return repository.ErrNotFound
	}
	cp := *client
	r.clients[client.ID] = &cp
	return nil
}

func (r *stubClientRepo) SoftDelete(_ context.Context, trainerID, id primitive.ObjectID) error {
	c, ok := r.clients[id]
	if !ok || c.TrainerID != trainerID || c.IsDeleted {
		return repository.ErrNotFound
	}
	c.IsDeleted = true
	return nil
}

func (r *stubClientRepo) AddTags(_ context.Context, trainerID, id primitive.ObjectID, tags []string) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok || c.TrainerID != trainerID || c.IsDeleted {
		return nil, repository.ErrNotFound
	}
	c.Tags = domain.DedupTags(append(c.Tags, tags...))
	cp := *c
	return &cp, nil
}

func (r *stubClientRepo) Stats(_ context.Context, trainerID primitive.ObjectID) (repository.ClientStats, error) {
	var stats repository.ClientStats
	for _, c := range r.clients {
		if c.TrainerID != trainerID || c.IsDeleted {
			continue
		}
		stats.Total++
		if c.Status == domain.ClientActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
	}
	return stats, nil
}

type stubDietPlanRepo struct {
	plans map[primitive.ObjectID]*domain.DietPlan
}

func newStubDietPlanRepo() *stubDietPlanRepo {
	return &stubDietPlanRepo{plans: map[primitive.ObjectID]*domain.DietPlan{}}
}

func (r *stubDietPlanRepo) Create(_ context.Context, plan *domain.DietPlan) (primitive.ObjectID, error) {
	key := domain.NameKey(plan.Name)
	for _, p := range r.plans {
		if p.TrainerID == plan.TrainerID && !p.IsDeleted && p.NameKey == key {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	id := primitive.NewObjectID()
	plan.ID = id
	plan.NameKey = key
	cp := clonePlan(plan)
	r.plans[id] = cp
	return id, nil
}

func (r *stubDietPlanRepo) GetByID(_ context.Context, trainerID, id primitive.ObjectID) (*domain.DietPlan, error) {
	p, ok := r.plans[id]
	if !ok || p.TrainerID != trainerID || p.IsDeleted {
		return nil, repository.ErrNotFound
	}
	return clonePlan(p), nil
}

func (r *stubDietPlanRepo) List(_ context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.DietPlan], error) {
	var items []domain.DietPlan
	for _, p := range r.plans {
		if p.TrainerID == trainerID && !p.IsDeleted {
			items = append(items, *clonePlan(p))
		}
	}
	return repository.Page[domain.DietPlan]{Items: items, Total: len(items), Pages: query.Pages(len(items), q.PageSize)}, nil
}

func (r *stubDietPlanRepo) ListByClient(_ context.Context, trainerID, clientID primitive.ObjectID, status domain.PlanStatus) ([]domain.DietPlan, error) {
	var items []domain.DietPlan
	for _, p := range r.plans {
		if p.TrainerID != trainerID || p.ClientID != clientID || p.IsDeleted {
			continue
		}
		if status != "" {
			normalized, _ := domain.NormalizePlanStatus(p.Status)
			if normalized != status {
				continue
			}
		}
		items = append(items, *clonePlan(p))
	}
	return items, nil
}

func (r *stubDietPlanRepo) Update(_ context.Context, plan *domain.DietPlan) error {
	stored, ok := r.plans[plan.ID]
	if !ok || stored.TrainerID != plan.TrainerID || stored.IsDeleted {
		return repository.ErrNotFound
	}
	plan.NameKey = domain.NameKey(plan.Name)
	r.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r *stubDietPlanRepo) SoftDelete(_ context.Context, trainerID, id primitive.ObjectID) error {
	p, ok := r.plans[id]
	if !ok || p.TrainerID != trainerID || p.IsDeleted {
		return repository.ErrNotFound
	}
	p.IsDeleted = true
	return nil
}

func (r *stubDietPlanRepo) Stats(_ context.Context, trainerID primitive.ObjectID) (repository.DietPlanStats, error) {
	stats := repository.DietPlanStats{
		ByObjective: map[string]int{},
		ByDietType:  map[string]int{},
	}
	sum, ongoing := 0, 0
	for _, p := range r.plans {
		if p.TrainerID != trainerID || p.IsDeleted {
			continue
		}
		stats.Total++
		normalized, _ := domain.NormalizePlanStatus(p.Status)
		switch normalized {
		case domain.PlanActive:
			stats.Active++
		case domain.PlanPaused:
			stats.Paused++
		case domain.PlanCompleted:
			stats.Completed++
		}
		if normalized == domain.PlanActive || normalized == domain.PlanPaused {
			sum += p.Adherence
			ongoing++
		}
		if p.Objective != "" {
			stats.ByObjective[p.Objective]++
		}
		if p.DietType != "" {
			stats.ByDietType[p.DietType]++
		}
	}
	if ongoing > 0 {
		stats.AvgAdherence = (sum + ongoing/2) / ongoing
	}
	return stats, nil
}

func clonePlan(p *domain.DietPlan) *domain.DietPlan {
	cp := *p
	if p.Entries != nil {
		cp.Entries = make([]domain.TrackingEntry, len(p.Entries))
		copy(cp.Entries, p.Entries)
	}
	return &cp
}

type stubDietTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.DietTemplate
}

func newStubDietTemplateRepo() *stubDietTemplateRepo {
	return &stubDietTemplateRepo{templates: map[primitive.ObjectID]*domain.DietTemplate{}}
}

func (r *stubDietTemplateRepo) Create(_ context.Context, tpl *domain.DietTemplate) (primitive.ObjectID, error) {
	key := domain.NameKey(tpl.Name)
	for _, t := range r.templates {
		if t.TrainerID == tpl.TrainerID && !t.IsDeleted && t.NameKey == key {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	id := primitive.NewObjectID()
	tpl.ID = id
	tpl.NameKey = key
	cp := *tpl
	r.templates[id] = &cp
	return id, nil
}

func (r *stubDietTemplateRepo) GetByID(_ context.Context, trainerID, id primitive.ObjectID) (*domain.DietTemplate, error) {
	t, ok := r.templates[id]
	if !ok || t.TrainerID != trainerID || t.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubDietTemplateRepo) GetAccessible(_ context.Context, trainerID, id primitive.ObjectID) (*domain.DietTemplate, error) {
	t, ok := r.templates[id]
	if !ok || t.IsDeleted || (t.TrainerID != trainerID && !t.IsPublic) {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubDietTemplateRepo) List(_ context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.DietTemplate], error) {
	var items []domain.DietTemplate
	for _, t := range r.templates {
		if t.TrainerID == trainerID && !t.IsDeleted {
			items = append(items, *t)
		}
	}
	return repository.Page[domain.DietTemplate]{Items: items, Total: len(items), Pages: query.Pages(len(items), q.PageSize)}, nil
}

func (r *stubDietTemplateRepo) Update(_ context.Context, tpl *domain.DietTemplate) error {
	stored, ok := r.templates[tpl.ID]
	if !ok || stored.IsDeleted {
		return repository.ErrNotFound
	}
	cp := *tpl
	r.templates[tpl.ID] = &cp
	return nil
}

func (r *stubDietTemplateRepo) SoftDelete(_ context.Context, trainerID, id primitive.ObjectID) error {
	t, ok := r.templates[id]
	if !ok || t.TrainerID != trainerID || t.IsDeleted {
		return repository.ErrNotFound
	}
	t.IsDeleted = true
	return nil
}

func (r *stubDietTemplateRepo) Stats(_ context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	stats := repository.TemplateStats{ByObjective: map[string]int{}}
	for _, t := range r.templates {
		if t.TrainerID != trainerID || t.IsDeleted {
			continue
		}
		stats.Total++
		if t.IsPublic {
			stats.Public++
		}
		if t.IsFavorite {
			stats.Favorites++
		}
		if t.Objective != "" {
			stats.ByObjective[t.Objective]++
		}
	}
	return stats, nil
}

type stubWorkoutTemplateRepo struct {
	templates map[primitive.ObjectID]*domain.WorkoutTemplate
}

func newStubWorkoutTemplateRepo() *stubWorkoutTemplateRepo {
	return &stubWorkoutTemplateRepo{templates: map[primitive.ObjectID]*domain.WorkoutTemplate{}}
}

func (r *stubWorkoutTemplateRepo) Create(_ context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	key := domain.NameKey(tpl.Name)
	for _, t := range r.templates {
		if t.TrainerID == tpl.TrainerID && !t.IsDeleted && t.NameKey == key {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	id := primitive.NewObjectID()
	tpl.ID = id
	tpl.NameKey = key
	cp := *tpl
	r.templates[id] = &cp
	return id, nil
}

func (r *stubWorkoutTemplateRepo) GetByID(_ context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	t, ok := r.templates[id]
	if !ok || t.TrainerID != trainerID || t.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubWorkoutTemplateRepo) GetAccessible(_ context.Context, trainerID, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	t, ok := r.templates[id]
	if !ok || t.IsDeleted || (t.TrainerID != trainerID && !t.IsPublic) {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubWorkoutTemplateRepo) List(_ context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.WorkoutTemplate], error) {
	var items []domain.WorkoutTemplate
	for _, t := range r.templates {
		if t.TrainerID == trainerID && !t.IsDeleted {
			items = append(items, *t)
		}
	}
	return repository.Page[domain.WorkoutTemplate]{Items: items, Total: len(items), Pages: query.Pages(len(items), q.PageSize)}, nil
}

func (r *stubWorkoutTemplateRepo) Update(_ context.Context, tpl *domain.WorkoutTemplate) error {
	stored, ok := r.templates[tpl.ID]
	if !ok || stored.IsDeleted {
		return repository.ErrNotFound
	}
	cp := *tpl
	r.templates[tpl.ID] = &cp
	return nil
}

func (r *stubWorkoutTemplateRepo) SoftDelete(_ context.Context, trainerID, id primitive.ObjectID) error {
	t, ok := r.templates[id]
	if !ok || t.TrainerID != trainerID || t.IsDeleted {
		return repository.ErrNotFound
	}
	t.IsDeleted = true
	return nil
}

func (r *stubWorkoutTemplateRepo) Stats(_ context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	stats := repository.TemplateStats{ByObjective: map[string]int{}}
	for _, t := range r.templates {
		if t.TrainerID != trainerID || t.IsDeleted {
			continue
		}
		stats.Total++
		if t.IsPublic {
			stats.Public++
		}
		if t.IsFavorite {
			stats.Favorites++
		}
		if t.Objective != "" {
			stats.ByObjective[t.Objective]++
		}
	}
	return stats, nil
}

type stubExerciseRepo struct {
	exercises map[primitive.ObjectID]*domain.Exercise
}

func newStubExerciseRepo() *stubExerciseRepo {
	return &stubExerciseRepo{exercises: map[primitive.ObjectID]*domain.Exercise{}}
}

func (r *stubExerciseRepo) Create(_ context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	key := domain.NameKey(exercise.Name)
	for _, e := range r.exercises {
		if e.TrainerID == exercise.TrainerID && !e.IsDeleted && e.NameKey == key {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	id := primitive.NewObjectID()
	exercise.ID = id
	exercise.NameKey = key
	cp := *exercise
	r.exercises[id] = &cp
	return id, nil
}

func (r *stubExerciseRepo) GetByID(_ context.Context, trainerID, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok || e.TrainerID != trainerID || e.IsDeleted {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubExerciseRepo) List(_ context.Context, trainerID primitive.ObjectID, q query.ListQuery) (repository.Page[domain.Exercise], error) {
	var items []domain.Exercise
	for _, e := range r.exercises {
		if e.TrainerID == trainerID && !e.IsDeleted {
			items = append(items, *e)
		}
	}
	return repository.Page[domain.Exercise]{Items: items, Total: len(items), Pages: query.Pages(len(items), q.PageSize)}, nil
}

func (r *stubExerciseRepo) Update(_ context.Context, exercise *domain.Exercise) error {
	stored, ok := r.exercises[exercise.ID]
	if !ok || stored.TrainerID != exercise.TrainerID || stored.IsDeleted {
		return repository.ErrNotFound
	}
	exercise.NameKey = domain.NameKey(exercise.Name)
	cp := *exercise
	r.exercises[exercise.ID] = &cp
	return nil
}

func (r *stubExerciseRepo) SoftDelete(_ context.Context, trainerID, id primitive.ObjectID) error {
	e, ok := r.exercises[id]
	if !ok || e.TrainerID != trainerID || e.IsDeleted {
		return repository.ErrNotFound
	}
	e.IsDeleted = true
	return nil
}

func (r *stubExerciseRepo) Stats(_ context.Context, trainerID primitive.ObjectID) (repository.ExerciseStats, error) {
	stats := repository.ExerciseStats{
		ByCategory:    map[string]int{},
		ByMuscleGroup: map[string]int{},
	}
	for _, e := range r.exercises {
		if e.TrainerID != trainerID || e.IsDeleted {
			continue
		}
		stats.Total++
		if e.Category != "" {
			stats.ByCategory[e.Category]++
		}
		if e.MuscleGroup != "" {
			stats.ByMuscleGroup[e.MuscleGroup]++
		}
	}
	return stats, nil
}

// stubFileStorage records the last object key it signed so tests can
// assert key layout without a real bucket.
type stubFileStorage struct {
	lastUploadKey   string
	lastDownloadKey string
	deleted         []string
}

func (s *stubFileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	s.lastUploadKey = objectKey
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *stubFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	s.lastDownloadKey = objectKey
	return "https://storage.test/download/" + objectKey, nil
}

func (s *stubFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

type stubUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	id := primitive.NewObjectID()
	user.ID = id
	cp := *user
	r.users[id] = &cp
	return id, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
