package api

import (
	"net/http"

	"coachapp/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	MuscleGroup string   `json:"muscleGroup"`
	Level       string   `json:"level"`
	Equipment   string   `json:"equipment"`
	Tags        []string `json:"tags"`
	VideoURL    string   `json:"videoUrl" binding:"omitempty"`
}

// UpdateExerciseRequest defines the expected JSON for a partial update.
type UpdateExerciseRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	MuscleGroup *string  `json:"muscleGroup"`
	Level       *string  `json:"level"`
	Equipment   *string  `json:"equipment"`
	Tags        []string `json:"tags"`
	VideoURL    *string  `json:"videoUrl"`
}

// CreateExercise creates a new exercise in the trainer's library.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), trainerID, service.ExerciseInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		MuscleGroup: req.MuscleGroup,
		Level:       req.Level,
		Equipment:   req.Equipment,
		Tags:        req.Tags,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, exercise)
}

// ListExercises returns a filtered, paginated listing of the library.
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.exerciseService.List(c.Request.Context(), trainerID, c.Request.URL.Query())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, result)
}

// GetExercise returns one exercise by id.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Get(c.Request.Context(), trainerID, exerciseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, exercise)
}

// UpdateExercise applies a partial update to an exercise.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), trainerID, exerciseID, service.ExercisePatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		MuscleGroup: req.MuscleGroup,
		Level:       req.Level,
		Equipment:   req.Equipment,
		Tags:        req.Tags,
		VideoURL:    req.VideoURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, exercise)
}

// DeleteExercise soft-deletes an exercise.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.Delete(c.Request.Context(), trainerID, exerciseID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// DuplicateExercise copies an exercise with usage counters reset.
func (h *ExerciseHandler) DuplicateExercise(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.Duplicate(c.Request.Context(), trainerID, exerciseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, exercise)
}

// MarkExerciseUsed bumps the usage counter of an exercise.
func (h *ExerciseHandler) MarkExerciseUsed(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.MarkUsed(c.Request.Context(), trainerID, exerciseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, exercise)
}

// ExerciseStats returns the trainer-wide exercise summary.
func (h *ExerciseHandler) ExerciseStats(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.exerciseService.Stats(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// RequestVideoUpload generates a presigned URL for an exercise video upload.
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	resp, err := h.exerciseService.RequestVideoUploadURL(c.Request.Context(), trainerID, exerciseID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, resp)
}

// ConfirmVideoUpload records a completed video upload on the exercise.
func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.ConfirmVideoUpload(c.Request.Context(), trainerID, exerciseID, req.ObjectKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, exercise)
}

// GetVideoDownloadURL returns a temporary URL for viewing an exercise video.
func (h *ExerciseHandler) GetVideoDownloadURL(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	url, err := h.exerciseService.VideoDownloadURL(c.Request.Context(), trainerID, exerciseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"downloadUrl": url})
}
