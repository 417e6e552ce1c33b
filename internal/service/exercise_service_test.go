package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newExerciseFixture() (ExerciseService, *stubFileStorage, primitive.ObjectID) {
	files := &stubFileStorage{}
	return NewExerciseService(newStubExerciseRepo(), files), files, primitive.NewObjectID()
}

func TestExerciseCreate(t *testing.T) {
	svc, _, trainerID := newExerciseFixture()
	ctx := context.Background()

	ex, err := svc.Create(ctx, trainerID, ExerciseInput{
		Name:        "  Press banca  ",
		Category:    "fuerza",
		MuscleGroup: "pecho",
		Tags:        []string{"barra", " barra ", "basico"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Press banca", ex.Name)
	assert.Equal(t, []string{"barra", "basico"}, ex.Tags)
	assert.Zero(t, ex.TimesUsed)

	_, err = svc.Create(ctx, trainerID, ExerciseInput{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Same normalized name conflicts within the trainer's library.
	_, err = svc.Create(ctx, trainerID, ExerciseInput{Name: "  PRESS BANCA "})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExerciseUpdateRederivesNameKey(t *testing.T) {
	svc, _, trainerID := newExerciseFixture()
	ctx := context.Background()

	ex, err := svc.Create(ctx, trainerID, ExerciseInput{Name: "Sentadilla"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, trainerID, ex.ID, ExercisePatch{Name: strp("Sentadilla frontal")})
	require.NoError(t, err)
	assert.Equal(t, "Sentadilla frontal", updated.Name)

	// The old name is free again.
	_, err = svc.Create(ctx, trainerID, ExerciseInput{Name: "Sentadilla"})
	assert.NoError(t, err)
}

func TestExerciseDuplicate(t *testing.T) {
	svc, _, trainerID := newExerciseFixture()
	ctx := context.Background()

	ex, err := svc.Create(ctx, trainerID, ExerciseInput{Name: "Dominadas", Category: "fuerza"})
	require.NoError(t, err)
	_, err = svc.MarkUsed(ctx, trainerID, ex.ID)
	require.NoError(t, err)

	dup, err := svc.Duplicate(ctx, trainerID, ex.ID)
	require.NoError(t, err)

	assert.Equal(t, "Dominadas (copia)", dup.Name)
	assert.Equal(t, "fuerza", dup.Category)
	assert.Zero(t, dup.TimesUsed)
	assert.Nil(t, dup.LastUsed)

	// Duplicating twice collides on the copy's name.
	_, err = svc.Duplicate(ctx, trainerID, ex.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExerciseMarkUsed(t *testing.T) {
	svc, _, trainerID := newExerciseFixture()
	ctx := context.Background()

	ex, err := svc.Create(ctx, trainerID, ExerciseInput{Name: "Remo"})
	require.NoError(t, err)

	used, err := svc.MarkUsed(ctx, trainerID, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used.TimesUsed)
	require.NotNil(t, used.LastUsed)

	used, err = svc.MarkUsed(ctx, trainerID, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, used.TimesUsed)
}

func TestExerciseStats(t *testing.T) {
	svc, _, trainerID := newExerciseFixture()
	ctx := context.Background()

	for _, in := range []ExerciseInput{
		{Name: "Press banca", Category: "fuerza", MuscleGroup: "pecho"},
		{Name: "Sentadilla", Category: "fuerza", MuscleGroup: "piernas"},
		{Name: "Burpees", Category: "cardio"},
	} {
		_, err := svc.Create(ctx, trainerID, in)
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, trainerID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByCategory["fuerza"])
	assert.Equal(t, 1, stats.ByCategory["cardio"])
	assert.Equal(t, 1, stats.ByMuscleGroup["pecho"])
}

func TestExerciseListEnvelope(t *testing.T) {
	svc, _, trainerID := newExerciseFixture()
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, trainerID, ExerciseInput{Name: name})
		require.NoError(t, err)
	}

	result, err := svc.List(ctx, trainerID, url.Values{"pageSize": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Pages)
	require.NotNil(t, result.Stats)
}

func TestExerciseVideoUploadFlow(t *testing.T) {
	svc, files, trainerID := newExerciseFixture()
	ctx := context.Background()

	ex, err := svc.Create(ctx, trainerID, ExerciseInput{Name: "Peso muerto"})
	require.NoError(t, err)

	resp, err := svc.RequestVideoUploadURL(ctx, trainerID, ex.ID, "video/mp4")
	require.NoError(t, err)

	prefix := "videos/" + trainerID.Hex() + "/" + ex.ID.Hex() + "/"
	assert.True(t, strings.HasPrefix(resp.ObjectKey, prefix))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".mp4"))
	assert.Equal(t, resp.ObjectKey, files.lastUploadKey)

	updated, err := svc.ConfirmVideoUpload(ctx, trainerID, ex.ID, resp.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, resp.ObjectKey, updated.VideoURL)

	downloadURL, err := svc.VideoDownloadURL(ctx, trainerID, ex.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, downloadURL)

	_, err = svc.RequestVideoUploadURL(ctx, trainerID, ex.ID, "image/png")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
