package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/query"
	"coachapp/coaching-app/internal/repository"
	"coachapp/coaching-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseInput carries caller-supplied fields for creating an exercise.
type ExerciseInput struct {
	Name        string
	Description string
	Category    string
	MuscleGroup string
	Level       string
	Equipment   string
	Tags        []string
	VideoURL    string
}

// ExercisePatch carries partial updates; nil fields are left unchanged.
type ExercisePatch struct {
	Name        *string
	Description *string
	Category    *string
	MuscleGroup *string
	Level       *string
	Equipment   *string
	Tags        []string
	VideoURL    *string
}

// ExerciseList is a page of exercises with the trainer-wide stats summary.
type ExerciseList = ListResult[domain.Exercise]

type ExerciseService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error)
	Get(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*ExerciseList, error)
	Update(ctx context.Context, trainerID, exerciseID primitive.ObjectID, patch ExercisePatch) (*domain.Exercise, error)
	Delete(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error
	Duplicate(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	MarkUsed(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.ExerciseStats, error)

	RequestVideoUploadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error)
	VideoDownloadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (string, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

func (s *exerciseService) Create(ctx context.Context, trainerID primitive.ObjectID, input ExerciseInput) (*domain.Exercise, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidf("exercise name is required")
	}

	exercise := &domain.Exercise{
		TrainerID:   trainerID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		MuscleGroup: input.MuscleGroup,
		Level:       input.Level,
		Equipment:   input.Equipment,
		Tags:        domain.DedupTags(input.Tags),
		VideoURL:    input.VideoURL,
	}

	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, classify(err, "exercise")
	}
	created, err := s.exerciseRepo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "exercise")
	}
	return created, nil
}

func (s *exerciseService) Get(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, classify(err, "exercise")
	}
	return exercise, nil
}

func (s *exerciseService) List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*ExerciseList, error) {
	q := query.Parse(raw, query.Exercises(), time.Now().UTC())

	page, err := s.exerciseRepo.List(ctx, trainerID, q)
	if err != nil {
		return nil, classify(err, "exercises")
	}
	stats, err := s.exerciseRepo.Stats(ctx, trainerID)
	if err != nil {
		return nil, classify(err, "exercise stats")
	}
	return listResult(page, q.Page, q.PageSize, stats), nil
}

func (s *exerciseService) Update(ctx context.Context, trainerID, exerciseID primitive.ObjectID, patch ExercisePatch) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, classify(err, "exercise")
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		exercise.Name = strings.TrimSpace(*patch.Name)
		exercise.NameKey = domain.NameKey(exercise.Name)
	}
	if patch.Description != nil {
		exercise.Description = *patch.Description
	}
	if patch.Category != nil {
		exercise.Category = *patch.Category
	}
	if patch.MuscleGroup != nil {
		exercise.MuscleGroup = *patch.MuscleGroup
	}
	if patch.Level != nil {
		exercise.Level = *patch.Level
	}
	if patch.Equipment != nil {
		exercise.Equipment = *patch.Equipment
	}
	if patch.Tags != nil {
		exercise.Tags = domain.DedupTags(patch.Tags)
	}
	if patch.VideoURL != nil {
		exercise.VideoURL = *patch.VideoURL
	}

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, classify(err, "exercise")
	}
	return exercise, nil
}

func (s *exerciseService) Delete(ctx context.Context, trainerID, exerciseID primitive.ObjectID) error {
	if err := s.exerciseRepo.SoftDelete(ctx, trainerID, exerciseID); err != nil {
		return classify(err, "exercise")
	}
	return nil
}

// Duplicate copies an exercise within the same trainer's library with the
// usage counters reset.
func (s *exerciseService) Duplicate(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, classify(err, "exercise")
	}

	dup := exercise.CopyFor(trainerID)
	id, err := s.exerciseRepo.Create(ctx, &dup)
	if err != nil {
		return nil, classify(err, "exercise")
	}
	created, err := s.exerciseRepo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "exercise")
	}
	return created, nil
}

func (s *exerciseService) MarkUsed(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, classify(err, "exercise")
	}

	exercise.MarkUsed(time.Now().UTC())

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, classify(err, "exercise")
	}
	return exercise, nil
}

func (s *exerciseService) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.ExerciseStats, error) {
	stats, err := s.exerciseRepo.Stats(ctx, trainerID)
	if err != nil {
		return stats, classify(err, "exercise stats")
	}
	return stats, nil
}

func (s *exerciseService) RequestVideoUploadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, invalidf("invalid or missing video content type")
	}

	if _, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID); err != nil {
		return nil, classify(err, "exercise")
	}

	fileExtension := "bin"
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("videos", trainerID.Hex(), exerciseID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, internalf("generate upload url: %v", err)
	}

	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

func (s *exerciseService) ConfirmVideoUpload(ctx context.Context, trainerID, exerciseID primitive.ObjectID, objectKey string) (*domain.Exercise, error) {
	if objectKey == "" {
		return nil, invalidf("object key is required")
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID)
	if err != nil {
		return nil, classify(err, "exercise")
	}

	exercise.VideoURL = objectKey

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		return nil, classify(err, "exercise")
	}
	return exercise, nil
}

func (s *exerciseService) VideoDownloadURL(ctx context.Context, trainerID, exerciseID primitive.ObjectID) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, trainerID, exerciseID)
	if err != nil {
		return "", classify(err, "exercise")
	}
	if exercise.VideoURL == "" {
		return "", notFoundf("exercise video")
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, exercise.VideoURL, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", internalf("generate download url: %v", err)
	}
	return downloadURL, nil
}
