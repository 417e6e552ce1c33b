package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus type for the diet plan lifecycle.
type PlanStatus string

const (
	PlanActive    PlanStatus = "activo"
	PlanPaused    PlanStatus = "pausado"
	PlanCompleted PlanStatus = "completado"
	PlanCancelled PlanStatus = "cancelado"

	// legacyPaused is a second spelling of "pausado" found in historical
	// records. It is accepted on read and collapsed to PlanPaused; it is
	// never written back.
	legacyPaused PlanStatus = "en pausa"
)

// NormalizePlanStatus collapses the legacy paused spelling and reports
// whether the value is a member of the enumeration.
func NormalizePlanStatus(s PlanStatus) (PlanStatus, bool) {
	if s == legacyPaused {
		return PlanPaused, true
	}
	switch s {
	case PlanActive, PlanPaused, PlanCompleted, PlanCancelled:
		return s, true
	}
	return s, false
}

// OngoingStatuses are the plan states that count toward the tenant-wide
// average adherence.
func OngoingStatuses() []PlanStatus {
	return []PlanStatus{PlanActive, PlanPaused, legacyPaused}
}

// PausedSpellings returns every stored value that belongs in the paused
// stats bucket.
func PausedSpellings() []PlanStatus {
	return []PlanStatus{PlanPaused, legacyPaused}
}

// Objectives lists the valid diet objectives.
func Objectives() []string {
	return []string{
		"perdida_peso", "ganancia_muscular", "mantenimiento", "definicion",
		"volumen_limpio", "rendimiento", "salud_general", "recomposicion",
	}
}

// DietTypes lists the valid diet types.
func DietTypes() []string {
	return []string{
		"mediterranea", "keto", "vegana", "vegetariana", "paleo", "flexible",
		"intermitente", "baja_carbos", "alta_proteina", "dash", "cetogenica",
		"sin_gluten", "antiinflamatoria", "deportiva", "hipercalorica",
	}
}

// ValidObjective reports whether s is a member of the objective enum.
func ValidObjective(s string) bool {
	for _, v := range Objectives() {
		if v == s {
			return true
		}
	}
	return false
}

// ValidDietType reports whether s is a member of the diet type enum.
func ValidDietType(s string) bool {
	for _, v := range DietTypes() {
		if v == s {
			return true
		}
	}
	return false
}

// Macros holds a daily macronutrient split in grams.
type Macros struct {
	Protein float64 `bson:"protein" json:"protein"`
	Carbs   float64 `bson:"carbs" json:"carbs"`
	Fat     float64 `bson:"fat" json:"fat"`
}

// TrackingEntry is a dated progress record nested under a diet plan.
type TrackingEntry struct {
	ID             string    `bson:"id" json:"id"` // uuid, stable across updates
	Date           time.Time `bson:"date" json:"date"`
	Weight         *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	Calories       float64   `bson:"calories" json:"calories"`
	MacrosConsumed Macros    `bson:"macrosConsumed" json:"macrosConsumed"`
	DailyAdherence int       `bson:"dailyAdherence" json:"dailyAdherence"` // [0,100]
	Notes          string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// DietPlan is a nutrition plan for one client, owned by a trainer.
// Tracking entries are embedded in insertion order.
type DietPlan struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TrainerID  primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	ClientID   primitive.ObjectID  `bson:"clientId" json:"clientId"`
	TemplateID *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"` // Copy-on-create origin, no live link

	Name        string `bson:"name" json:"name"`
	NameKey     string `bson:"nameKey" json:"-"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	Objective string `bson:"objective" json:"objective"` // e.g. "perdida_peso"
	DietType  string `bson:"dietType" json:"dietType"`   // e.g. "mediterranea"

	StartDate    time.Time  `bson:"startDate" json:"startDate"`
	EndDate      *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	DurationDays int        `bson:"durationDays" json:"durationDays"`

	Status PlanStatus `bson:"status" json:"status"`

	TargetCalories float64  `bson:"targetCalories" json:"targetCalories"`
	TargetMacros   Macros   `bson:"targetMacros" json:"targetMacros"`
	Restrictions   []string `bson:"restrictions,omitempty" json:"restrictions,omitempty"`
	Allergens      []string `bson:"allergens,omitempty" json:"allergens,omitempty"`

	InitialWeight *float64 `bson:"initialWeight,omitempty" json:"initialWeight,omitempty"`
	CurrentWeight *float64 `bson:"currentWeight,omitempty" json:"currentWeight,omitempty"`
	TargetWeight  *float64 `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`

	Adherence int `bson:"adherence" json:"adherence"` // [0,100], mean of daily adherence
	Progress  int `bson:"progress" json:"progress"`   // [0,100], elapsed vs duration

	Entries []TrackingEntry `bson:"entries" json:"entries"`

	Notes          string    `bson:"notes,omitempty" json:"notes,omitempty"`
	LastActivityAt time.Time `bson:"lastActivityAt" json:"lastActivityAt"`

	IsDeleted bool      `bson:"isDeleted" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ElapsedDays returns whole days since the start date. Zero before start.
func (p *DietPlan) ElapsedDays(now time.Time) int {
	if p.StartDate.IsZero() {
		return 0
	}
	d := int(math.Floor(now.Sub(p.StartDate).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

// RemainingDays returns the days left in the plan, never negative.
func (p *DietPlan) RemainingDays(now time.Time) int {
	rest := p.DurationDays - p.ElapsedDays(now)
	if rest < 0 {
		return 0
	}
	return rest
}

// RecomputeProgress derives progress from elapsed time. It is not run on
// every read; mutations trigger it explicitly.
func (p *DietPlan) RecomputeProgress(now time.Time) {
	if p.DurationDays <= 0 {
		return
	}
	pct := int(math.Round(float64(p.ElapsedDays(now)) / float64(p.DurationDays) * 100))
	if pct > 100 {
		pct = 100
	}
	p.Progress = pct
	p.LastActivityAt = now
}

// RecomputeAdherence derives adherence as the rounded mean of the daily
// adherence across all tracking entries. Zero entries yields zero.
func (p *DietPlan) RecomputeAdherence() {
	if len(p.Entries) == 0 {
		p.Adherence = 0
		return
	}
	sum := 0
	for _, e := range p.Entries {
		sum += e.DailyAdherence
	}
	p.Adherence = int(math.Round(float64(sum) / float64(len(p.Entries))))
}

// WeightProgress returns how far the current weight has moved toward the
// target, as a percentage capped at 100. Informational only; zero when any
// weight is missing or the target equals the initial weight.
func (p *DietPlan) WeightProgress() int {
	if p.InitialWeight == nil || p.CurrentWeight == nil || p.TargetWeight == nil {
		return 0
	}
	total := math.Abs(*p.TargetWeight - *p.InitialWeight)
	if total == 0 {
		return 0
	}
	moved := math.Abs(*p.CurrentWeight - *p.InitialWeight)
	pct := int(math.Round(moved / total * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// AddEntry appends a tracking entry, updates the current weight when the
// entry carries one, and recomputes adherence and progress before the plan
// is persisted. The recompute happens in the same mutation so no stale
// intermediate state is ever written.
func (p *DietPlan) AddEntry(e TrackingEntry, now time.Time) {
	p.Entries = append(p.Entries, e)
	if e.Weight != nil {
		p.CurrentWeight = e.Weight
	}
	p.RecomputeAdherence()
	p.RecomputeProgress(now)
}

// Entry returns a pointer into the entries slice, or nil when the id is
// unknown.
func (p *DietPlan) Entry(id string) *TrackingEntry {
	for i := range p.Entries {
		if p.Entries[i].ID == id {
			return &p.Entries[i]
		}
	}
	return nil
}

// RemoveEntry deletes a tracking entry by id and recomputes adherence and
// progress. Removing the most recent entry rolls the current weight back
// to the latest remaining entry that carried one (or the initial weight);
// older entries never rewrite past weight.
func (p *DietPlan) RemoveEntry(id string, now time.Time) bool {
	idx := -1
	for i := range p.Entries {
		if p.Entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	wasLast := idx == len(p.Entries)-1
	hadWeight := p.Entries[idx].Weight != nil
	p.Entries = append(p.Entries[:idx], p.Entries[idx+1:]...)
	if wasLast && hadWeight {
		p.CurrentWeight = p.InitialWeight
		for i := len(p.Entries) - 1; i >= 0; i-- {
			if p.Entries[i].Weight != nil {
				p.CurrentWeight = p.Entries[i].Weight
				break
			}
		}
	}
	p.RecomputeAdherence()
	p.RecomputeProgress(now)
	p.LastActivityAt = now
	return true
}

// ChangeStatus moves the plan to status. Transitions are unconstrained;
// entering completed forces progress to 100.
func (p *DietPlan) ChangeStatus(status PlanStatus, now time.Time) {
	p.Status = status
	if status == PlanCompleted {
		p.Progress = 100
	}
	p.LastActivityAt = now
}

// SetCurrentWeight records a new current weight.
func (p *DietPlan) SetCurrentWeight(weight float64, now time.Time) {
	p.CurrentWeight = &weight
	p.LastActivityAt = now
}

// EnsureEndDate persists the default end date (start + duration days)
// once, at creation time. It is never recomputed on read.
func (p *DietPlan) EnsureEndDate() {
	if p.EndDate == nil && !p.StartDate.IsZero() && p.DurationDays > 0 {
		end := p.StartDate.AddDate(0, 0, p.DurationDays)
		p.EndDate = &end
	}
}
