package service

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/query"
	"coachapp/coaching-app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanInput carries the caller-supplied fields for creating a diet plan.
// Unset fields fall back to the template (when one is referenced) or to
// the documented defaults.
type PlanInput struct {
	ClientID       primitive.ObjectID
	TemplateID     *primitive.ObjectID
	Name           string
	Description    string
	Objective      string
	DietType       string
	StartDate      *time.Time
	DurationDays   int
	TargetCalories float64
	TargetMacros   *domain.Macros
	Restrictions   []string
	Allergens      []string
	InitialWeight  *float64
	CurrentWeight  *float64
	TargetWeight   *float64
	Status         string
	Notes          string
}

// PlanPatch carries partial updates; nil fields are left unchanged.
type PlanPatch struct {
	Name           *string
	Description    *string
	Objective      *string
	DietType       *string
	StartDate      *time.Time
	DurationDays   *int
	TargetCalories *float64
	TargetMacros   *domain.Macros
	Restrictions   []string
	Allergens      []string
	InitialWeight  *float64
	CurrentWeight  *float64
	TargetWeight   *float64
	Notes          *string
}

// TrackingInput carries one tracking entry, or a partial update of one.
type TrackingInput struct {
	Date           *time.Time
	Weight         *float64
	Calories       *float64
	Macros         *domain.Macros
	DailyAdherence *int
	Notes          *string
}

// DietPlanList is a page of plans with the trainer-wide stats summary.
type DietPlanList = ListResult[domain.DietPlan]

type DietService interface {
	CreatePlan(ctx context.Context, trainerID primitive.ObjectID, input PlanInput) (*domain.DietPlan, error)
	GetPlan(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.DietPlan, error)
	ListPlans(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*DietPlanList, error)
	PlansForClient(ctx context.Context, trainerID, clientID primitive.ObjectID, status string) ([]domain.DietPlan, error)
	UpdatePlan(ctx context.Context, trainerID, planID primitive.ObjectID, patch PlanPatch) (*domain.DietPlan, error)
	DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error
	Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.DietPlanStats, error)

	AddTracking(ctx context.Context, trainerID, planID primitive.ObjectID, input TrackingInput) (*domain.DietPlan, error)
	UpdateTracking(ctx context.Context, trainerID, planID primitive.ObjectID, entryID string, patch TrackingInput) (*domain.DietPlan, error)
	DeleteTracking(ctx context.Context, trainerID, planID primitive.ObjectID, entryID string) error
	SetStatus(ctx context.Context, trainerID, planID primitive.ObjectID, status string) (*domain.DietPlan, error)
	SetWeight(ctx context.Context, trainerID, planID primitive.ObjectID, weight float64) (*domain.DietPlan, error)
}

// dietService implements DietService.
type dietService struct {
	planRepo     repository.DietPlanRepository
	clientRepo   repository.ClientRepository
	templateRepo repository.DietTemplateRepository

	// planLocks serializes mutations per plan id so concurrent tracking
	// appends cannot interleave their read-modify-write cycles.
	planLocks sync.Map
}

// NewDietService creates a new instance of dietService.
func NewDietService(
	planRepo repository.DietPlanRepository,
	clientRepo repository.ClientRepository,
	templateRepo repository.DietTemplateRepository,
) DietService {
	return &dietService{
		planRepo:     planRepo,
		clientRepo:   clientRepo,
		templateRepo: templateRepo,
	}
}

func (s *dietService) lockPlan(planID primitive.ObjectID) func() {
	v, _ := s.planLocks.LoadOrStore(planID.Hex(), &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreatePlan verifies client ownership, optionally copies defaults from an
// accessible diet template (bumping that template's usage), validates the
// result and persists it. Duplicate plan names map to Conflict via the
// unique index, not a check-then-act read.
func (s *dietService) CreatePlan(ctx context.Context, trainerID primitive.ObjectID, input PlanInput) (*domain.DietPlan, error) {
	if _, err := s.clientRepo.GetByID(ctx, trainerID, input.ClientID); err != nil {
		return nil, classify(err, "client")
	}

	now := time.Now().UTC()
	plan := &domain.DietPlan{
		TrainerID:      trainerID,
		ClientID:       input.ClientID,
		Name:           input.Name,
		Description:    input.Description,
		Objective:      input.Objective,
		DietType:       input.DietType,
		DurationDays:   input.DurationDays,
		TargetCalories: input.TargetCalories,
		Restrictions:   input.Restrictions,
		Allergens:      input.Allergens,
		InitialWeight:  input.InitialWeight,
		CurrentWeight:  input.CurrentWeight,
		TargetWeight:   input.TargetWeight,
		Notes:          input.Notes,
		Status:         domain.PlanActive,
		Entries:        []domain.TrackingEntry{},
	}
	if input.TargetMacros != nil {
		plan.TargetMacros = *input.TargetMacros
	}
	if input.StartDate != nil {
		plan.StartDate = *input.StartDate
	} else {
		plan.StartDate = now
	}

	var tpl *domain.DietTemplate
	if input.TemplateID != nil {
		var err error
		tpl, err = s.templateRepo.GetAccessible(ctx, trainerID, *input.TemplateID)
		if err != nil {
			return nil, classify(err, "diet template")
		}
		applyTemplateDefaults(plan, tpl, input)
		plan.TemplateID = input.TemplateID
	}

	if plan.Name == "" {
		plan.Name = "Plan nutricional personalizado"
	}
	if plan.DurationDays <= 0 {
		plan.DurationDays = 30
	}
	if input.Status != "" {
		status, ok := domain.NormalizePlanStatus(domain.PlanStatus(input.Status))
		if !ok {
			return nil, invalidf("unknown plan status %q", input.Status)
		}
		plan.Status = status
	}
	if !domain.ValidObjective(plan.Objective) {
		return nil, invalidf("unknown objective %q", plan.Objective)
	}
	if !domain.ValidDietType(plan.DietType) {
		return nil, invalidf("unknown diet type %q", plan.DietType)
	}
	if plan.TargetCalories < 800 || plan.TargetCalories > 5000 {
		return nil, invalidf("target calories must be between 800 and 5000")
	}
	if plan.CurrentWeight == nil {
		plan.CurrentWeight = plan.InitialWeight
	}
	plan.EnsureEndDate()
	plan.LastActivityAt = now

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, classify(err, "diet plan")
	}

	// The usage bump waits until the plan is persisted: a validation
	// rejection or duplicate-name conflict leaves the template untouched.
	if tpl != nil {
		tpl.IncrementUsage(now)
		if err := s.templateRepo.Update(ctx, tpl); err != nil {
			log.Printf("WARN: could not record usage of template %s: %v", tpl.ID.Hex(), err)
		}
	}

	created, err := s.planRepo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "diet plan")
	}
	return created, nil
}

func applyTemplateDefaults(plan *domain.DietPlan, tpl *domain.DietTemplate, input PlanInput) {
	if plan.Name == "" {
		plan.Name = tpl.Name
	}
	if plan.Description == "" {
		plan.Description = tpl.Description
	}
	if plan.Objective == "" {
		plan.Objective = tpl.Objective
	}
	if plan.DietType == "" {
		plan.DietType = tpl.DietType
	}
	if plan.DurationDays <= 0 {
		plan.DurationDays = tpl.DurationWeeks * 7
	}
	if plan.TargetCalories == 0 {
		plan.TargetCalories = tpl.Calories
	}
	if input.TargetMacros == nil {
		plan.TargetMacros = tpl.Macros
	}
	if plan.Restrictions == nil {
		plan.Restrictions = append([]string(nil), tpl.Restrictions...)
	}
	if plan.Allergens == nil {
		plan.Allergens = append([]string(nil), tpl.Allergens...)
	}
}

func (s *dietService) GetPlan(ctx context.Context, trainerID, planID primitive.ObjectID) (*domain.DietPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return nil, classify(err, "diet plan")
	}
	return plan, nil
}

func (s *dietService) ListPlans(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*DietPlanList, error) {
	q := query.Parse(raw, query.DietPlans(), time.Now().UTC())

	page, err := s.planRepo.List(ctx, trainerID, q)
	if err != nil {
		return nil, classify(err, "diet plans")
	}
	stats, err := s.planRepo.Stats(ctx, trainerID)
	if err != nil {
		return nil, classify(err, "diet plan stats")
	}
	return listResult(page, q.Page, q.PageSize, stats), nil
}

func (s *dietService) PlansForClient(ctx context.Context, trainerID, clientID primitive.ObjectID, status string) ([]domain.DietPlan, error) {
	if _, err := s.clientRepo.GetByID(ctx, trainerID, clientID); err != nil {
		return nil, classify(err, "client")
	}

	var filter domain.PlanStatus
	if status != "" {
		normalized, ok := domain.NormalizePlanStatus(domain.PlanStatus(status))
		if !ok {
			return nil, invalidf("unknown plan status %q", status)
		}
		filter = normalized
	}

	plans, err := s.planRepo.ListByClient(ctx, trainerID, clientID, filter)
	if err != nil {
		return nil, classify(err, "diet plans")
	}
	return plans, nil
}

func (s *dietService) UpdatePlan(ctx context.Context, trainerID, planID primitive.ObjectID, patch PlanPatch) (*domain.DietPlan, error) {
	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return nil, classify(err, "diet plan")
	}

	if patch.Objective != nil && !domain.ValidObjective(*patch.Objective) {
		return nil, invalidf("unknown objective %q", *patch.Objective)
	}
	if patch.DietType != nil && !domain.ValidDietType(*patch.DietType) {
		return nil, invalidf("unknown diet type %q", *patch.DietType)
	}
	if patch.TargetCalories != nil && (*patch.TargetCalories < 800 || *patch.TargetCalories > 5000) {
		return nil, invalidf("target calories must be between 800 and 5000")
	}

	if patch.Name != nil && *patch.Name != "" {
		plan.Name = *patch.Name
	}
	if patch.Description != nil {
		plan.Description = *patch.Description
	}
	if patch.Objective != nil {
		plan.Objective = *patch.Objective
	}
	if patch.DietType != nil {
		plan.DietType = *patch.DietType
	}
	if patch.StartDate != nil {
		plan.StartDate = *patch.StartDate
	}
	if patch.DurationDays != nil && *patch.DurationDays > 0 {
		plan.DurationDays = *patch.DurationDays
	}
	if patch.TargetCalories != nil {
		plan.TargetCalories = *patch.TargetCalories
	}
	if patch.TargetMacros != nil {
		plan.TargetMacros = *patch.TargetMacros
	}
	if patch.Restrictions != nil {
		plan.Restrictions = patch.Restrictions
	}
	if patch.Allergens != nil {
		plan.Allergens = patch.Allergens
	}
	if patch.InitialWeight != nil {
		plan.InitialWeight = patch.InitialWeight
	}
	if patch.CurrentWeight != nil {
		plan.CurrentWeight = patch.CurrentWeight
	}
	if patch.TargetWeight != nil {
		plan.TargetWeight = patch.TargetWeight
	}
	if patch.Notes != nil {
		plan.Notes = *patch.Notes
	}
	plan.LastActivityAt = time.Now().UTC()

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, classify(err, "diet plan")
	}
	return plan, nil
}

func (s *dietService) DeletePlan(ctx context.Context, trainerID, planID primitive.ObjectID) error {
	if err := s.planRepo.SoftDelete(ctx, trainerID, planID); err != nil {
		return classify(err, "diet plan")
	}
	return nil
}

func (s *dietService) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.DietPlanStats, error) {
	stats, err := s.planRepo.Stats(ctx, trainerID)
	if err != nil {
		return stats, classify(err, "diet plan stats")
	}
	return stats, nil
}

// AddTracking validates and appends a tracking entry. Adherence and
// progress are recomputed inside the same mutation, so the persisted plan
// is never observed with a stale derived value.
func (s *dietService) AddTracking(ctx context.Context, trainerID, planID primitive.ObjectID, input TrackingInput) (*domain.DietPlan, error) {
	if err := validateTracking(input); err != nil {
		return nil, err
	}

	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return nil, classify(err, "diet plan")
	}

	now := time.Now().UTC()
	entry := domain.TrackingEntry{
		ID:        uuid.NewString(),
		Date:      now,
		Weight:    input.Weight,
		CreatedAt: now,
	}
	if input.Date != nil {
		entry.Date = *input.Date
	}
	if input.Calories != nil {
		entry.Calories = *input.Calories
	}
	if input.Macros != nil {
		entry.MacrosConsumed = *input.Macros
	}
	if input.DailyAdherence != nil {
		entry.DailyAdherence = *input.DailyAdherence
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}

	plan.AddEntry(entry, now)

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, classify(err, "diet plan")
	}
	return plan, nil
}

func (s *dietService) UpdateTracking(ctx context.Context, trainerID, planID primitive.ObjectID, entryID string, patch TrackingInput) (*domain.DietPlan, error) {
	if err := validateTracking(patch); err != nil {
		return nil, err
	}

	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return nil, classify(err, "diet plan")
	}

	entry := plan.Entry(entryID)
	if entry == nil {
		return nil, notFoundf("tracking entry")
	}

	if patch.Date != nil {
		entry.Date = *patch.Date
	}
	if patch.Weight != nil {
		entry.Weight = patch.Weight
		plan.CurrentWeight = patch.Weight
	}
	if patch.Calories != nil {
		entry.Calories = *patch.Calories
	}
	if patch.Macros != nil {
		entry.MacrosConsumed = *patch.Macros
	}
	if patch.DailyAdherence != nil {
		entry.DailyAdherence = *patch.DailyAdherence
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}

	now := time.Now().UTC()
	plan.RecomputeAdherence()
	plan.RecomputeProgress(now)
	plan.LastActivityAt = now

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, classify(err, "diet plan")
	}
	return plan, nil
}

func (s *dietService) DeleteTracking(ctx context.Context, trainerID, planID primitive.ObjectID, entryID string) error {
	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return classify(err, "diet plan")
	}

	if !plan.RemoveEntry(entryID, time.Now().UTC()) {
		return notFoundf("tracking entry")
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return classify(err, "diet plan")
	}
	return nil
}

func (s *dietService) SetStatus(ctx context.Context, trainerID, planID primitive.ObjectID, status string) (*domain.DietPlan, error) {
	normalized, ok := domain.NormalizePlanStatus(domain.PlanStatus(status))
	if !ok {
		return nil, invalidf("unknown plan status %q", status)
	}

	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return nil, classify(err, "diet plan")
	}

	plan.ChangeStatus(normalized, time.Now().UTC())

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, classify(err, "diet plan")
	}
	return plan, nil
}

func (s *dietService) SetWeight(ctx context.Context, trainerID, planID primitive.ObjectID, weight float64) (*domain.DietPlan, error) {
	if weight < 0 {
		return nil, invalidf("weight cannot be negative")
	}

	unlock := s.lockPlan(planID)
	defer unlock()

	plan, err := s.planRepo.GetByID(ctx, trainerID, planID)
	if err != nil {
		return nil, classify(err, "diet plan")
	}

	plan.SetCurrentWeight(weight, time.Now().UTC())

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, classify(err, "diet plan")
	}
	return plan, nil
}

func validateTracking(input TrackingInput) error {
	if input.DailyAdherence != nil && (*input.DailyAdherence < 0 || *input.DailyAdherence > 100) {
		return invalidf("daily adherence must be between 0 and 100")
	}
	if input.Weight != nil && *input.Weight < 0 {
		return invalidf("weight cannot be negative")
	}
	if input.Calories != nil && *input.Calories < 0 {
		return invalidf("calories cannot be negative")
	}
	return nil
}
