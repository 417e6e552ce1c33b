package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrRatingOutOfRange is returned when a rating is outside [1,5].
var ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")

// TemplateMeta carries the sharing and popularity state common to every
// template-like resource. Embedded inline so the bson document stays flat.
type TemplateMeta struct {
	IsPublic    bool       `bson:"isPublic" json:"isPublic"`
	IsFavorite  bool       `bson:"isFavorite" json:"isFavorite"`
	Uses        int        `bson:"uses" json:"uses"`
	LastUsed    *time.Time `bson:"lastUsed,omitempty" json:"lastUsed,omitempty"`
	Rating      float64    `bson:"rating" json:"rating"` // Running average over RatingCount votes
	RatingCount int        `bson:"ratingCount" json:"ratingCount"`
}

// IncrementUsage bumps the usage counter and stamps last use.
func (m *TemplateMeta) IncrementUsage(now time.Time) {
	m.Uses++
	m.LastUsed = &now
}

// AddRating folds points into the running average:
// new = (old*count + points) / (count+1). The final average is the same
// regardless of vote order.
func (m *TemplateMeta) AddRating(points int) error {
	if points < 1 || points > 5 {
		return ErrRatingOutOfRange
	}
	m.Rating = (m.Rating*float64(m.RatingCount) + float64(points)) / float64(m.RatingCount+1)
	m.RatingCount++
	return nil
}

// ResetForCopy returns the meta a duplicated template starts with: private,
// unloved and unused.
func (m *TemplateMeta) ResetForCopy() {
	*m = TemplateMeta{}
}

// DietTemplate is a reusable diet plan blueprint. Creating a plan from a
// template copies its fields; there is no live link afterwards.
type DietTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name        string             `bson:"name" json:"name"`
	NameKey     string             `bson:"nameKey" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Objective     string   `bson:"objective" json:"objective"`
	DietType      string   `bson:"dietType" json:"dietType"`
	Calories      float64  `bson:"calories" json:"calories"`
	Macros        Macros   `bson:"macros" json:"macros"`
	DurationWeeks int      `bson:"durationWeeks" json:"durationWeeks"`
	Restrictions  []string `bson:"restrictions,omitempty" json:"restrictions,omitempty"`
	Allergens     []string `bson:"allergens,omitempty" json:"allergens,omitempty"`
	Tags          []string `bson:"tags,omitempty" json:"tags,omitempty"`

	TemplateMeta `bson:",inline"`

	IsDeleted bool      `bson:"isDeleted" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CopyFor duplicates the template for trainerID: identity, timestamps and
// meta reset, domain attributes preserved verbatim, "(copia)" appended.
func (t DietTemplate) CopyFor(trainerID primitive.ObjectID) DietTemplate {
	dup := t
	dup.ID = primitive.NilObjectID
	dup.TrainerID = trainerID
	dup.Name = t.Name + " (copia)"
	dup.NameKey = NameKey(dup.Name)
	dup.Restrictions = append([]string(nil), t.Restrictions...)
	dup.Allergens = append([]string(nil), t.Allergens...)
	dup.Tags = append([]string(nil), t.Tags...)
	dup.TemplateMeta.ResetForCopy()
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	return dup
}

// WorkoutTemplate is a reusable workout program blueprint.
type WorkoutTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name        string             `bson:"name" json:"name"`
	NameKey     string             `bson:"nameKey" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Objective       string   `bson:"objective" json:"objective"` // e.g. "hipertrofia"
	Level           string   `bson:"level,omitempty" json:"level,omitempty"`
	Modality        string   `bson:"modality,omitempty" json:"modality,omitempty"` // e.g. "gimnasio", "casa"
	WeeksCount      int      `bson:"weeksCount" json:"weeksCount"`
	SessionsPerWeek int      `bson:"sessionsPerWeek" json:"sessionsPerWeek"`
	Tags            []string `bson:"tags,omitempty" json:"tags,omitempty"`

	TemplateMeta `bson:",inline"`

	IsDeleted bool      `bson:"isDeleted" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CopyFor duplicates the template for trainerID with meta reset and
// "(copia)" appended to the name.
func (t WorkoutTemplate) CopyFor(trainerID primitive.ObjectID) WorkoutTemplate {
	dup := t
	dup.ID = primitive.NilObjectID
	dup.TrainerID = trainerID
	dup.Name = t.Name + " (copia)"
	dup.NameKey = NameKey(dup.Name)
	dup.Tags = append([]string(nil), t.Tags...)
	dup.TemplateMeta.ResetForCopy()
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	return dup
}
