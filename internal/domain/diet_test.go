package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestNormalizePlanStatus(t *testing.T) {
	tests := []struct {
		in    PlanStatus
		want  PlanStatus
		valid bool
	}{
		{PlanActive, PlanActive, true},
		{PlanPaused, PlanPaused, true},
		{PlanCompleted, PlanCompleted, true},
		{PlanCancelled, PlanCancelled, true},
		{"en pausa", PlanPaused, true},
		{"zombie", "zombie", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePlanStatus(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.valid, ok, "input %q", tt.in)
	}
}

func TestElapsedAndRemainingDays(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	plan := DietPlan{StartDate: start, DurationDays: 30}

	assert.Equal(t, 0, plan.ElapsedDays(start.AddDate(0, 0, -2)), "before start")
	assert.Equal(t, 0, plan.ElapsedDays(start.Add(12*time.Hour)), "partial day floors to zero")
	assert.Equal(t, 10, plan.ElapsedDays(start.AddDate(0, 0, 10)))
	assert.Equal(t, 20, plan.RemainingDays(start.AddDate(0, 0, 10)))
	assert.Equal(t, 0, plan.RemainingDays(start.AddDate(0, 0, 45)), "never negative")
}

func TestRecomputeProgress(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	plan := DietPlan{StartDate: start, DurationDays: 30}

	plan.RecomputeProgress(start.AddDate(0, 0, 15))
	assert.Equal(t, 50, plan.Progress)

	plan.RecomputeProgress(start.AddDate(0, 0, 60))
	assert.Equal(t, 100, plan.Progress, "capped at 100")

	noDuration := DietPlan{StartDate: start, Progress: 42}
	noDuration.RecomputeProgress(start.AddDate(0, 0, 15))
	assert.Equal(t, 42, noDuration.Progress, "zero duration leaves progress alone")
}

func TestRecomputeAdherence(t *testing.T) {
	plan := DietPlan{}
	plan.RecomputeAdherence()
	assert.Equal(t, 0, plan.Adherence, "no entries yields zero")

	plan.Entries = []TrackingEntry{
		{DailyAdherence: 100},
		{DailyAdherence: 50},
		{DailyAdherence: 75},
	}
	plan.RecomputeAdherence()
	assert.Equal(t, 75, plan.Adherence)

	// 100/3 = 33.33 rounds to 33.
	plan.Entries = []TrackingEntry{{DailyAdherence: 100}, {DailyAdherence: 0}, {DailyAdherence: 0}}
	plan.RecomputeAdherence()
	assert.Equal(t, 33, plan.Adherence)
}

func TestWeightProgress(t *testing.T) {
	tests := []struct {
		name                      string
		initial, current, target  *float64
		want                      int
	}{
		{"missing weights", nil, f64(80), f64(70), 0},
		{"target equals initial", f64(80), f64(75), f64(80), 0},
		{"halfway down", f64(80), f64(75), f64(70), 50},
		{"reached target", f64(80), f64(70), f64(70), 100},
		{"overshoot capped", f64(80), f64(60), f64(70), 100},
		{"gaining direction", f64(60), f64(63), f64(70), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DietPlan{InitialWeight: tt.initial, CurrentWeight: tt.current, TargetWeight: tt.target}
			assert.Equal(t, tt.want, plan.WeightProgress())
		})
	}
}

func TestAddEntryRecomputesDerivedState(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now := start.AddDate(0, 0, 15)
	plan := DietPlan{StartDate: start, DurationDays: 30, InitialWeight: f64(80)}

	plan.AddEntry(TrackingEntry{ID: "a", DailyAdherence: 100, Weight: f64(79)}, now)
	plan.AddEntry(TrackingEntry{ID: "b", DailyAdherence: 50}, now)

	assert.Len(t, plan.Entries, 2)
	assert.Equal(t, 75, plan.Adherence)
	assert.Equal(t, 50, plan.Progress)
	if assert.NotNil(t, plan.CurrentWeight) {
		assert.Equal(t, 79.0, *plan.CurrentWeight, "entry without weight keeps previous current weight")
	}
	assert.Equal(t, now, plan.LastActivityAt)
}

func TestRemoveEntryWeightRollback(t *testing.T) {
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	plan := DietPlan{StartDate: now.AddDate(0, 0, -10), DurationDays: 30, InitialWeight: f64(80)}
	plan.AddEntry(TrackingEntry{ID: "a", DailyAdherence: 100, Weight: f64(79)}, now)
	plan.AddEntry(TrackingEntry{ID: "b", DailyAdherence: 60, Weight: f64(78)}, now)
	plan.AddEntry(TrackingEntry{ID: "c", DailyAdherence: 80, Weight: f64(77)}, now)

	// Removing a middle entry does not rewrite the current weight.
	assert.True(t, plan.RemoveEntry("b", now))
	assert.Equal(t, 77.0, *plan.CurrentWeight)
	assert.Equal(t, 90, plan.Adherence)

	// Removing the most recent entry rolls back to the previous weight.
	assert.True(t, plan.RemoveEntry("c", now))
	assert.Equal(t, 79.0, *plan.CurrentWeight)

	// Removing the last remaining weighted entry falls back to initial.
	assert.True(t, plan.RemoveEntry("a", now))
	assert.Equal(t, 80.0, *plan.CurrentWeight)
	assert.Equal(t, 0, plan.Adherence)

	assert.False(t, plan.RemoveEntry("missing", now))
}

func TestChangeStatus(t *testing.T) {
	now := time.Now().UTC()
	plan := DietPlan{Status: PlanActive, Progress: 40}

	plan.ChangeStatus(PlanPaused, now)
	assert.Equal(t, PlanPaused, plan.Status)
	assert.Equal(t, 40, plan.Progress)

	plan.ChangeStatus(PlanCompleted, now)
	assert.Equal(t, PlanCompleted, plan.Status)
	assert.Equal(t, 100, plan.Progress, "completing forces progress to 100")
}

func TestEnsureEndDate(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	plan := DietPlan{StartDate: start, DurationDays: 30}

	plan.EnsureEndDate()
	if assert.NotNil(t, plan.EndDate) {
		assert.Equal(t, start.AddDate(0, 0, 30), *plan.EndDate)
	}

	// Already-set end dates are left alone.
	custom := start.AddDate(0, 0, 7)
	plan2 := DietPlan{StartDate: start, DurationDays: 30, EndDate: &custom}
	plan2.EnsureEndDate()
	assert.Equal(t, custom, *plan2.EndDate)

	plan3 := DietPlan{DurationDays: 30}
	plan3.EnsureEndDate()
	assert.Nil(t, plan3.EndDate, "no start date, no end date")
}

func TestEntryLookup(t *testing.T) {
	plan := DietPlan{Entries: []TrackingEntry{{ID: "a", Notes: "first"}}}

	e := plan.Entry("a")
	if assert.NotNil(t, e) {
		e.Notes = "patched"
	}
	assert.Equal(t, "patched", plan.Entries[0].Notes, "Entry returns a live pointer")
	assert.Nil(t, plan.Entry("missing"))
}
