package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/query"
	"coachapp/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DietTemplateInput carries caller-supplied fields for a diet template.
type DietTemplateInput struct {
	Name          string
	Description   string
	Objective     string
	DietType      string
	Calories      float64
	Macros        *domain.Macros
	DurationWeeks int
	Restrictions  []string
	Allergens     []string
	Tags          []string
	IsPublic      bool
}

// DietTemplatePatch carries partial updates; nil fields are left unchanged.
type DietTemplatePatch struct {
	Name          *string
	Description   *string
	Objective     *string
	DietType      *string
	Calories      *float64
	Macros        *domain.Macros
	DurationWeeks *int
	Restrictions  []string
	Allergens     []string
	Tags          []string
	IsPublic      *bool
}

// WorkoutTemplateInput carries caller-supplied fields for a workout template.
type WorkoutTemplateInput struct {
	Name            string
	Description     string
	Objective       string
	Level           string
	Modality        string
	WeeksCount      int
	SessionsPerWeek int
	Tags            []string
	IsPublic        bool
}

// WorkoutTemplatePatch carries partial updates; nil fields are left unchanged.
type WorkoutTemplatePatch struct {
	Name            *string
	Description     *string
	Objective       *string
	Level           *string
	Modality        *string
	WeeksCount      *int
	SessionsPerWeek *int
	Tags            []string
	IsPublic        *bool
}

// DietTemplateList is a page of diet templates with the stats summary.
type DietTemplateList = ListResult[domain.DietTemplate]

// WorkoutTemplateList is a page of workout templates with the stats summary.
type WorkoutTemplateList = ListResult[domain.WorkoutTemplate]

type DietTemplateService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, input DietTemplateInput) (*domain.DietTemplate, error)
	Get(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.DietTemplate, error)
	List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*DietTemplateList, error)
	Update(ctx context.Context, trainerID, templateID primitive.ObjectID, patch DietTemplatePatch) (*domain.DietTemplate, error)
	Delete(ctx context.Context, trainerID, templateID primitive.ObjectID) error
	Duplicate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.DietTemplate, error)
	Rate(ctx context.Context, trainerID, templateID primitive.ObjectID, points int) (*domain.DietTemplate, error)
	ToggleFavorite(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.DietTemplate, error)
	SetVisibility(ctx context.Context, trainerID, templateID primitive.ObjectID, public bool) (*domain.DietTemplate, error)
	Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error)
}

type WorkoutTemplateService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, input WorkoutTemplateInput) (*domain.WorkoutTemplate, error)
	Get(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error)
	List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*WorkoutTemplateList, error)
	Update(ctx context.Context, trainerID, templateID primitive.ObjectID, patch WorkoutTemplatePatch) (*domain.WorkoutTemplate, error)
	Delete(ctx context.Context, trainerID, templateID primitive.ObjectID) error
	Duplicate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error)
	Rate(ctx context.Context, trainerID, templateID primitive.ObjectID, points int) (*domain.WorkoutTemplate, error)
	ToggleFavorite(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error)
	SetVisibility(ctx context.Context, trainerID, templateID primitive.ObjectID, public bool) (*domain.WorkoutTemplate, error)
	Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error)
}

// dietTemplateService implements DietTemplateService.
type dietTemplateService struct {
	repo repository.DietTemplateRepository
}

// NewDietTemplateService creates a new instance of dietTemplateService.
func NewDietTemplateService(repo repository.DietTemplateRepository) DietTemplateService {
	return &dietTemplateService{repo: repo}
}

func (s *dietTemplateService) Create(ctx context.Context, trainerID primitive.ObjectID, input DietTemplateInput) (*domain.DietTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidf("template name is required")
	}
	if input.Objective != "" && !domain.ValidObjective(input.Objective) {
		return nil, invalidf("unknown objective %q", input.Objective)
	}
	if input.DietType != "" && !domain.ValidDietType(input.DietType) {
		return nil, invalidf("unknown diet type %q", input.DietType)
	}

	tpl := &domain.DietTemplate{
		TrainerID:     trainerID,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Objective:     input.Objective,
		DietType:      input.DietType,
		Calories:      input.Calories,
		DurationWeeks: input.DurationWeeks,
		Restrictions:  input.Restrictions,
		Allergens:     input.Allergens,
		Tags:          domain.DedupTags(input.Tags),
	}
	if input.Macros != nil {
		tpl.Macros = *input.Macros
	}
	tpl.IsPublic = input.IsPublic

	id, err := s.repo.Create(ctx, tpl)
	if err != nil {
		return nil, classify(err, "diet template")
	}
	created, err := s.repo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "diet template")
	}
	return created, nil
}

// Get also resolves public templates owned by other trainers.
func (s *dietTemplateService) Get(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.DietTemplate, error) {
	tpl, err := s.repo.GetAccessible(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "diet template")
	}
	return tpl, nil
}

func (s *dietTemplateService) List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*DietTemplateList, error) {
	q := query.Parse(raw, query.DietTemplates(), time.Now().UTC())

	page, err := s.repo.List(ctx, trainerID, q)
	if err != nil {
		return nil, classify(err, "diet templates")
	}
	stats, err := s.repo.Stats(ctx, trainerID)
	if err != nil {
		return nil, classify(err, "diet template stats")
	}
	return listResult(page, q.Page, q.PageSize, stats), nil
}

func (s *dietTemplateService) Update(ctx context.Context, trainerID, templateID primitive.ObjectID, patch DietTemplatePatch) (*domain.DietTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "diet template")
	}

	if patch.Objective != nil && !domain.ValidObjective(*patch.Objective) {
		return nil, invalidf("unknown objective %q", *patch.Objective)
	}
	if patch.DietType != nil && !domain.ValidDietType(*patch.DietType) {
		return nil, invalidf("unknown diet type %q", *patch.DietType)
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		tpl.Name = strings.TrimSpace(*patch.Name)
		tpl.NameKey = domain.NameKey(tpl.Name)
	}
	if patch.Description != nil {
		tpl.Description = *patch.Description
	}
	if patch.Objective != nil {
		tpl.Objective = *patch.Objective
	}
	if patch.DietType != nil {
		tpl.DietType = *patch.DietType
	}
	if patch.Calories != nil {
		tpl.Calories = *patch.Calories
	}
	if patch.Macros != nil {
		tpl.Macros = *patch.Macros
	}
	if patch.DurationWeeks != nil {
		tpl.DurationWeeks = *patch.DurationWeeks
	}
	if patch.Restrictions != nil {
		tpl.Restrictions = patch.Restrictions
	}
	if patch.Allergens != nil {
		tpl.Allergens = patch.Allergens
	}
	if patch.Tags != nil {
		tpl.Tags = domain.DedupTags(patch.Tags)
	}
	if patch.IsPublic != nil {
		tpl.IsPublic = *patch.IsPublic
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "diet template")
	}
	return tpl, nil
}

func (s *dietTemplateService) Delete(ctx context.Context, trainerID, templateID primitive.ObjectID) error {
	if err := s.repo.SoftDelete(ctx, trainerID, templateID); err != nil {
		return classify(err, "diet template")
	}
	return nil
}

// Duplicate copies an owned or public template into the trainer's own
// library, private and with the popularity counters reset.
func (s *dietTemplateService) Duplicate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.DietTemplate, error) {
	tpl, err := s.repo.GetAccessible(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "diet template")
	}

	dup := tpl.CopyFor(trainerID)
	id, err := s.repo.Create(ctx, &dup)
	if err != nil {
		return nil, classify(err, "diet template")
	}
	created, err := s.repo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "diet template")
	}
	return created, nil
}

// Rate folds a 1-5 vote into a public template's running average. Private
// templates cannot be rated, not even by their owner.
func (s *dietTemplateService) Rate(ctx context.Context, trainerID, templateID primitive.ObjectID, points int) (*domain.DietTemplate, error) {
	tpl, err := s.repo.GetAccessible(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "diet template")
	}
	if !tpl.IsPublic {
		return nil, invalidf("only public templates can be rated")
	}

	if err := tpl.AddRating(points); err != nil {
		if errors.Is(err, domain.ErrRatingOutOfRange) {
			return nil, invalidf("%v", err)
		}
		return nil, internalf("rate template: %v", err)
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "diet template")
	}
	return tpl, nil
}

func (s *dietTemplateService) ToggleFavorite(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.DietTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "diet template")
	}

	tpl.IsFavorite = !tpl.IsFavorite

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "diet template")
	}
	return tpl, nil
}

func (s *dietTemplateService) SetVisibility(ctx context.Context, trainerID, templateID primitive.ObjectID, public bool) (*domain.DietTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "diet template")
	}

	tpl.IsPublic = public

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "diet template")
	}
	return tpl, nil
}

func (s *dietTemplateService) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	stats, err := s.repo.Stats(ctx, trainerID)
	if err != nil {
		return stats, classify(err, "diet template stats")
	}
	return stats, nil
}

// workoutTemplateService implements WorkoutTemplateService.
type workoutTemplateService struct {
	repo repository.WorkoutTemplateRepository
}

// NewWorkoutTemplateService creates a new instance of workoutTemplateService.
func NewWorkoutTemplateService(repo repository.WorkoutTemplateRepository) WorkoutTemplateService {
	return &workoutTemplateService{repo: repo}
}

func (s *workoutTemplateService) Create(ctx context.Context, trainerID primitive.ObjectID, input WorkoutTemplateInput) (*domain.WorkoutTemplate, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidf("template name is required")
	}

	tpl := &domain.WorkoutTemplate{
		TrainerID:       trainerID,
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		Objective:       input.Objective,
		Level:           input.Level,
		Modality:        input.Modality,
		WeeksCount:      input.WeeksCount,
		SessionsPerWeek: input.SessionsPerWeek,
		Tags:            domain.DedupTags(input.Tags),
	}
	tpl.IsPublic = input.IsPublic

	id, err := s.repo.Create(ctx, tpl)
	if err != nil {
		return nil, classify(err, "workout template")
	}
	created, err := s.repo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "workout template")
	}
	return created, nil
}

func (s *workoutTemplateService) Get(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.repo.GetAccessible(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "workout template")
	}
	return tpl, nil
}

func (s *workoutTemplateService) List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*WorkoutTemplateList, error) {
	q := query.Parse(raw, query.WorkoutTemplates(), time.Now().UTC())

	page, err := s.repo.List(ctx, trainerID, q)
	if err != nil {
		return nil, classify(err, "workout templates")
	}
	stats, err := s.repo.Stats(ctx, trainerID)
	if err != nil {
		return nil, classify(err, "workout template stats")
	}
	return listResult(page, q.Page, q.PageSize, stats), nil
}

func (s *workoutTemplateService) Update(ctx context.Context, trainerID, templateID primitive.ObjectID, patch WorkoutTemplatePatch) (*domain.WorkoutTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "workout template")
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		tpl.Name = strings.TrimSpace(*patch.Name)
		tpl.NameKey = domain.NameKey(tpl.Name)
	}
	if patch.Description != nil {
		tpl.Description = *patch.Description
	}
	if patch.Objective != nil {
		tpl.Objective = *patch.Objective
	}
	if patch.Level != nil {
		tpl.Level = *patch.Level
	}
	if patch.Modality != nil {
		tpl.Modality = *patch.Modality
	}
	if patch.WeeksCount != nil {
		tpl.WeeksCount = *patch.WeeksCount
	}
	if patch.SessionsPerWeek != nil {
		tpl.SessionsPerWeek = *patch.SessionsPerWeek
	}
	if patch.Tags != nil {
		tpl.Tags = domain.DedupTags(patch.Tags)
	}
	if patch.IsPublic != nil {
		tpl.IsPublic = *patch.IsPublic
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "workout template")
	}
	return tpl, nil
}

func (s *workoutTemplateService) Delete(ctx context.Context, trainerID, templateID primitive.ObjectID) error {
	if err := s.repo.SoftDelete(ctx, trainerID, templateID); err != nil {
		return classify(err, "workout template")
	}
	return nil
}

func (s *workoutTemplateService) Duplicate(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.repo.GetAccessible(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "workout template")
	}

	dup := tpl.CopyFor(trainerID)
	id, err := s.repo.Create(ctx, &dup)
	if err != nil {
		return nil, classify(err, "workout template")
	}
	created, err := s.repo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "workout template")
	}
	return created, nil
}

func (s *workoutTemplateService) Rate(ctx context.Context, trainerID, templateID primitive.ObjectID, points int) (*domain.WorkoutTemplate, error) {
	tpl, err := s.repo.GetAccessible(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "workout template")
	}
	if !tpl.IsPublic {
		return nil, invalidf("only public templates can be rated")
	}

	if err := tpl.AddRating(points); err != nil {
		if errors.Is(err, domain.ErrRatingOutOfRange) {
			return nil, invalidf("%v", err)
		}
		return nil, internalf("rate template: %v", err)
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "workout template")
	}
	return tpl, nil
}

func (s *workoutTemplateService) ToggleFavorite(ctx context.Context, trainerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "workout template")
	}

	tpl.IsFavorite = !tpl.IsFavorite

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "workout template")
	}
	return tpl, nil
}

func (s *workoutTemplateService) SetVisibility(ctx context.Context, trainerID, templateID primitive.ObjectID, public bool) (*domain.WorkoutTemplate, error) {
	tpl, err := s.repo.GetByID(ctx, trainerID, templateID)
	if err != nil {
		return nil, classify(err, "workout template")
	}

	tpl.IsPublic = public

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, classify(err, "workout template")
	}
	return tpl, nil
}

func (s *workoutTemplateService) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.TemplateStats, error) {
	stats, err := s.repo.Stats(ctx, trainerID)
	if err != nil {
		return stats, classify(err, "workout template stats")
	}
	return stats, nil
}
