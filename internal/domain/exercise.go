package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a single exercise definition in the trainer's library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name        string             `bson:"name" json:"name"`
	NameKey     string             `bson:"nameKey" json:"-"` // Normalized name, unique per trainer
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Category    string   `bson:"category,omitempty" json:"category,omitempty"`       // e.g. "fuerza", "cardio"
	MuscleGroup string   `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g. "pecho", "piernas"
	Level       string   `bson:"level,omitempty" json:"level,omitempty"`             // e.g. "principiante", "avanzado"
	Equipment   string   `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Tags        []string `bson:"tags,omitempty" json:"tags,omitempty"`
	VideoURL    string   `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`

	TimesUsed int        `bson:"timesUsed" json:"timesUsed"`
	LastUsed  *time.Time `bson:"lastUsed,omitempty" json:"lastUsed,omitempty"`

	IsDeleted bool      `bson:"isDeleted" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MarkUsed bumps the usage counter and stamps last use. No upper bound.
func (e *Exercise) MarkUsed(now time.Time) {
	e.TimesUsed++
	e.LastUsed = &now
}

// CopyFor returns a duplicate of the exercise owned by trainerID, with
// identity and usage tracking reset and "(copia)" appended to the name.
func (e Exercise) CopyFor(trainerID primitive.ObjectID) Exercise {
	dup := e
	dup.ID = primitive.NilObjectID
	dup.TrainerID = trainerID
	dup.Name = e.Name + " (copia)"
	dup.NameKey = NameKey(dup.Name)
	dup.Tags = append([]string(nil), e.Tags...)
	dup.TimesUsed = 0
	dup.LastUsed = nil
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	return dup
}
