package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"coachapp/coaching-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dietFixture struct {
	svc       DietService
	planRepo  *stubDietPlanRepo
	clients   *stubClientRepo
	templates *stubDietTemplateRepo
	trainerID primitive.ObjectID
	clientID  primitive.ObjectID
}

func newDietFixture(t *testing.T) *dietFixture {
	t.Helper()
	planRepo := newStubDietPlanRepo()
	clients := newStubClientRepo()
	templates := newStubDietTemplateRepo()
	trainerID := primitive.NewObjectID()

	clientID, err := clients.Create(context.Background(), &domain.Client{
		TrainerID: trainerID,
		Name:      "Ana",
		Status:    domain.ClientActive,
	})
	require.NoError(t, err)

	return &dietFixture{
		svc:       NewDietService(planRepo, clients, templates),
		planRepo:  planRepo,
		clients:   clients,
		templates: templates,
		trainerID: trainerID,
		clientID:  clientID,
	}
}

func validPlanInput(clientID primitive.ObjectID) PlanInput {
	return PlanInput{
		ClientID:       clientID,
		Name:           "Plan de corte",
		Objective:      "perdida_peso",
		DietType:       "mediterranea",
		DurationDays:   30,
		TargetCalories: 1800,
		InitialWeight:  f64(80),
		TargetWeight:   f64(72),
	}
}

func f64(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

func TestCreatePlanDefaults(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	input := validPlanInput(fx.clientID)
	input.Name = ""
	input.DurationDays = 0

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
	require.NoError(t, err)

	assert.Equal(t, "Plan nutricional personalizado", plan.Name)
	assert.Equal(t, 30, plan.DurationDays)
	assert.Equal(t, domain.PlanActive, plan.Status)
	assert.False(t, plan.StartDate.IsZero())
	if assert.NotNil(t, plan.EndDate) {
		assert.Equal(t, plan.StartDate.AddDate(0, 0, 30), *plan.EndDate)
	}
	if assert.NotNil(t, plan.CurrentWeight) {
		assert.Equal(t, 80.0, *plan.CurrentWeight, "current weight defaults to initial")
	}
	assert.NotNil(t, plan.Entries)
	assert.Empty(t, plan.Entries)
}

func TestCreatePlanValidation(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*PlanInput)
	}{
		{"unknown objective", func(in *PlanInput) { in.Objective = "volar" }},
		{"unknown diet type", func(in *PlanInput) { in.DietType = "aire" }},
		{"calories below range", func(in *PlanInput) { in.TargetCalories = 500 }},
		{"calories above range", func(in *PlanInput) { in.TargetCalories = 9000 }},
		{"unknown status", func(in *PlanInput) { in.Status = "zombie" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validPlanInput(fx.clientID)
			tt.mutate(&input)
			_, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCreatePlanUnknownClient(t *testing.T) {
	fx := newDietFixture(t)

	input := validPlanInput(primitive.NewObjectID())
	_, err := fx.svc.CreatePlan(context.Background(), fx.trainerID, input)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePlanOtherTrainersClient(t *testing.T) {
	fx := newDietFixture(t)

	// The client exists but belongs to fx.trainerID; another trainer must
	// see it as missing, not forbidden.
	otherTrainer := primitive.NewObjectID()
	_, err := fx.svc.CreatePlan(context.Background(), otherTrainer, validPlanInput(fx.clientID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePlanDuplicateNameConflict(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	input := validPlanInput(fx.clientID)
	input.Name = "Plan A"
	_, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
	require.NoError(t, err)

	// Same name up to trimming and case collides.
	input2 := validPlanInput(fx.clientID)
	input2.Name = "  plan a "
	_, err = fx.svc.CreatePlan(ctx, fx.trainerID, input2)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreatePlanFromTemplate(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	tplID, err := fx.templates.Create(ctx, &domain.DietTemplate{
		TrainerID:     fx.trainerID,
		Name:          "Keto base",
		Description:   "plantilla keto",
		Objective:     "perdida_peso",
		DietType:      "keto",
		Calories:      1600,
		Macros:        domain.Macros{Protein: 130, Carbs: 30, Fat: 120},
		DurationWeeks: 6,
		Restrictions:  []string{"sin azucar"},
	})
	require.NoError(t, err)

	input := PlanInput{
		ClientID:   fx.clientID,
		TemplateID: &tplID,
	}
	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
	require.NoError(t, err)

	assert.Equal(t, "Keto base", plan.Name)
	assert.Equal(t, "plantilla keto", plan.Description)
	assert.Equal(t, "perdida_peso", plan.Objective)
	assert.Equal(t, "keto", plan.DietType)
	assert.Equal(t, 1600.0, plan.TargetCalories)
	assert.Equal(t, domain.Macros{Protein: 130, Carbs: 30, Fat: 120}, plan.TargetMacros)
	assert.Equal(t, 42, plan.DurationDays, "six template weeks")
	assert.Equal(t, []string{"sin azucar"}, plan.Restrictions)
	require.NotNil(t, plan.TemplateID)
	assert.Equal(t, tplID, *plan.TemplateID)

	// Template usage is bumped.
	tpl, err := fx.templates.GetByID(ctx, fx.trainerID, tplID)
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.Uses)
	assert.NotNil(t, tpl.LastUsed)
}

func TestCreatePlanExplicitFieldsWinOverTemplate(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	tplID, err := fx.templates.Create(ctx, &domain.DietTemplate{
		TrainerID:     fx.trainerID,
		Name:          "Base",
		Objective:     "mantenimiento",
		DietType:      "flexible",
		Calories:      2200,
		DurationWeeks: 4,
	})
	require.NoError(t, err)

	input := validPlanInput(fx.clientID)
	input.TemplateID = &tplID
	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
	require.NoError(t, err)

	assert.Equal(t, "Plan de corte", plan.Name)
	assert.Equal(t, "perdida_peso", plan.Objective)
	assert.Equal(t, "mediterranea", plan.DietType)
	assert.Equal(t, 1800.0, plan.TargetCalories)
	assert.Equal(t, 30, plan.DurationDays)
}

func TestCreatePlanFromInaccessibleTemplate(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	tplID, err := fx.templates.Create(ctx, &domain.DietTemplate{
		TrainerID: primitive.NewObjectID(), // someone else's, private
		Name:      "Privada",
		Objective: "perdida_peso",
		DietType:  "keto",
		Calories:  1500,
	})
	require.NoError(t, err)

	input := validPlanInput(fx.clientID)
	input.TemplateID = &tplID
	_, err = fx.svc.CreatePlan(ctx, fx.trainerID, input)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrackingLifecycle(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)

	plan, err = fx.svc.AddTracking(ctx, fx.trainerID, plan.ID, TrackingInput{DailyAdherence: intp(100), Weight: f64(79)})
	require.NoError(t, err)
	plan, err = fx.svc.AddTracking(ctx, fx.trainerID, plan.ID, TrackingInput{DailyAdherence: intp(50)})
	require.NoError(t, err)
	plan, err = fx.svc.AddTracking(ctx, fx.trainerID, plan.ID, TrackingInput{DailyAdherence: intp(75), Weight: f64(78)})
	require.NoError(t, err)

	require.Len(t, plan.Entries, 3)
	assert.Equal(t, 75, plan.Adherence)
	assert.NotEmpty(t, plan.Entries[0].ID, "entries get generated ids")
	assert.NotEqual(t, plan.Entries[0].ID, plan.Entries[1].ID)
	assert.Equal(t, 78.0, *plan.CurrentWeight)

	// Patch the middle entry; adherence follows.
	plan, err = fx.svc.UpdateTracking(ctx, fx.trainerID, plan.ID, plan.Entries[1].ID, TrackingInput{DailyAdherence: intp(80)})
	require.NoError(t, err)
	assert.Equal(t, 85, plan.Adherence)

	// Deleting the most recent weighted entry rolls the weight back.
	err = fx.svc.DeleteTracking(ctx, fx.trainerID, plan.ID, plan.Entries[2].ID)
	require.NoError(t, err)
	stored, err := fx.svc.GetPlan(ctx, fx.trainerID, plan.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 2)
	assert.Equal(t, 79.0, *stored.CurrentWeight)
	assert.Equal(t, 90, stored.Adherence)
}

func TestTrackingValidation(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input TrackingInput
	}{
		{"adherence above 100", TrackingInput{DailyAdherence: intp(120)}},
		{"negative adherence", TrackingInput{DailyAdherence: intp(-1)}},
		{"negative weight", TrackingInput{Weight: f64(-70)}},
		{"negative calories", TrackingInput{Calories: f64(-100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.AddTracking(ctx, fx.trainerID, plan.ID, tt.input)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err = fx.svc.UpdateTracking(ctx, fx.trainerID, plan.ID, "no-such-entry", TrackingInput{Notes: strp("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = fx.svc.DeleteTracking(ctx, fx.trainerID, plan.ID, "no-such-entry")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)

	// Legacy paused spelling is accepted but the canonical value is stored.
	plan, err = fx.svc.SetStatus(ctx, fx.trainerID, plan.ID, "en pausa")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPaused, plan.Status)

	plan, err = fx.svc.SetStatus(ctx, fx.trainerID, plan.ID, "completado")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanCompleted, plan.Status)
	assert.Equal(t, 100, plan.Progress)

	_, err = fx.svc.SetStatus(ctx, fx.trainerID, plan.ID, "zombie")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSetWeight(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)

	plan, err = fx.svc.SetWeight(ctx, fx.trainerID, plan.ID, 77.5)
	require.NoError(t, err)
	assert.Equal(t, 77.5, *plan.CurrentWeight)

	_, err = fx.svc.SetWeight(ctx, fx.trainerID, plan.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListPlansEnvelope(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Plan A", "Plan B", "Plan C"} {
		input := validPlanInput(fx.clientID)
		input.Name = name
		_, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
		require.NoError(t, err)
	}

	result, err := fx.svc.ListPlans(ctx, fx.trainerID, url.Values{"pageSize": {"2"}})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 2, result.PageSize)
	assert.Equal(t, 2, result.Pages)
	require.NotNil(t, result.Stats)
}

func TestPlansForClient(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	active := validPlanInput(fx.clientID)
	active.Name = "Activo"
	_, err := fx.svc.CreatePlan(ctx, fx.trainerID, active)
	require.NoError(t, err)

	completed := validPlanInput(fx.clientID)
	completed.Name = "Terminado"
	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, completed)
	require.NoError(t, err)
	_, err = fx.svc.SetStatus(ctx, fx.trainerID, plan.ID, "completado")
	require.NoError(t, err)

	all, err := fx.svc.PlansForClient(ctx, fx.trainerID, fx.clientID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	actives, err := fx.svc.PlansForClient(ctx, fx.trainerID, fx.clientID, "activo")
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, "Activo", actives[0].Name)

	_, err = fx.svc.PlansForClient(ctx, fx.trainerID, fx.clientID, "zombie")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = fx.svc.PlansForClient(ctx, fx.trainerID, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePlan(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)

	updated, err := fx.svc.UpdatePlan(ctx, fx.trainerID, plan.ID, PlanPatch{
		Name:           strp("Plan renovado"),
		TargetCalories: f64(2000),
		Notes:          strp("mas proteina"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan renovado", updated.Name)
	assert.Equal(t, 2000.0, updated.TargetCalories)
	assert.Equal(t, "mas proteina", updated.Notes)
	assert.Equal(t, "perdida_peso", updated.Objective, "untouched fields survive")

	_, err = fx.svc.UpdatePlan(ctx, fx.trainerID, plan.ID, PlanPatch{Objective: strp("volar")})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = fx.svc.UpdatePlan(ctx, fx.trainerID, plan.ID, PlanPatch{TargetCalories: f64(100)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDeletePlanHidesIt(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeletePlan(ctx, fx.trainerID, plan.ID))

	_, err = fx.svc.GetPlan(ctx, fx.trainerID, plan.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = fx.svc.DeletePlan(ctx, fx.trainerID, plan.ID)
	assert.ErrorIs(t, err, ErrNotFound, "double delete reports missing")
}

func strp(s string) *string { return &s }

func TestCreatePlanRejectedInputDoesNotBumpTemplateUsage(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	tplID, err := fx.templates.Create(ctx, &domain.DietTemplate{
		TrainerID: fx.trainerID,
		Name:      "Base",
		Objective: "perdida_peso",
		DietType:  "keto",
		Calories:  1600,
	})
	require.NoError(t, err)

	input := validPlanInput(fx.clientID)
	input.TemplateID = &tplID
	input.Objective = "volar"
	_, err = fx.svc.CreatePlan(ctx, fx.trainerID, input)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	tpl, err := fx.templates.GetByID(ctx, fx.trainerID, tplID)
	require.NoError(t, err)
	assert.Zero(t, tpl.Uses, "rejected create must not bump template usage")

	// Nor does a duplicate-name conflict.
	_, err = fx.svc.CreatePlan(ctx, fx.trainerID, validPlanInput(fx.clientID))
	require.NoError(t, err)
	dup := validPlanInput(fx.clientID)
	dup.TemplateID = &tplID
	_, err = fx.svc.CreatePlan(ctx, fx.trainerID, dup)
	assert.ErrorIs(t, err, ErrConflict)

	tpl, err = fx.templates.GetByID(ctx, fx.trainerID, tplID)
	require.NoError(t, err)
	assert.Zero(t, tpl.Uses, "conflicting create must not bump template usage")
}

func TestTrackingMutationsRefreshProgress(t *testing.T) {
	fx := newDietFixture(t)
	ctx := context.Background()

	start := time.Now().UTC().AddDate(0, 0, -15)
	input := validPlanInput(fx.clientID)
	input.StartDate = &start
	plan, err := fx.svc.CreatePlan(ctx, fx.trainerID, input)
	require.NoError(t, err)

	// staleProgress rewrites the stored progress so the next mutation has
	// something to correct.
	staleProgress := func() {
		stored, err := fx.planRepo.GetByID(ctx, fx.trainerID, plan.ID)
		require.NoError(t, err)
		stored.Progress = 0
		require.NoError(t, fx.planRepo.Update(ctx, stored))
	}

	plan, err = fx.svc.AddTracking(ctx, fx.trainerID, plan.ID, TrackingInput{DailyAdherence: intp(90)})
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	entryID := plan.Entries[0].ID
	assert.Equal(t, 50, plan.Progress, "15 of 30 days elapsed")

	staleProgress()
	plan, err = fx.svc.UpdateTracking(ctx, fx.trainerID, plan.ID, entryID, TrackingInput{DailyAdherence: intp(70)})
	require.NoError(t, err)
	assert.Equal(t, 50, plan.Progress, "entry update refreshes progress")

	_, err = fx.svc.AddTracking(ctx, fx.trainerID, plan.ID, TrackingInput{DailyAdherence: intp(80)})
	require.NoError(t, err)

	staleProgress()
	require.NoError(t, fx.svc.DeleteTracking(ctx, fx.trainerID, plan.ID, entryID))
	stored, err := fx.planRepo.GetByID(ctx, fx.trainerID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.Progress, "entry removal refreshes progress")
}
