package api

import (
	"net/http"

	"coachapp/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// TemplateHandler holds both template service dependencies.
type TemplateHandler struct {
	dietTemplates    service.DietTemplateService
	workoutTemplates service.WorkoutTemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(dietTemplates service.DietTemplateService, workoutTemplates service.WorkoutTemplateService) *TemplateHandler {
	return &TemplateHandler{
		dietTemplates:    dietTemplates,
		workoutTemplates: workoutTemplates,
	}
}

// CreateDietTemplateRequest defines the expected JSON for a diet template.
type CreateDietTemplateRequest struct {
	Name          string         `json:"name" binding:"required"`
	Description   string         `json:"description"`
	Objective     string         `json:"objective"`
	DietType      string         `json:"dietType"`
	Calories      float64        `json:"calories"`
	Macros        *MacrosRequest `json:"macros"`
	DurationWeeks int            `json:"durationWeeks"`
	Restrictions  []string       `json:"restrictions"`
	Allergens     []string       `json:"allergens"`
	Tags          []string       `json:"tags"`
	IsPublic      bool           `json:"isPublic"`
}

// UpdateDietTemplateRequest defines the expected JSON for a partial update.
type UpdateDietTemplateRequest struct {
	Name          *string        `json:"name"`
	Description   *string        `json:"description"`
	Objective     *string        `json:"objective"`
	DietType      *string        `json:"dietType"`
	Calories      *float64       `json:"calories"`
	Macros        *MacrosRequest `json:"macros"`
	DurationWeeks *int           `json:"durationWeeks"`
	Restrictions  []string       `json:"restrictions"`
	Allergens     []string       `json:"allergens"`
	Tags          []string       `json:"tags"`
	IsPublic      *bool          `json:"isPublic"`
}

// CreateWorkoutTemplateRequest defines the expected JSON for a workout
// template.
type CreateWorkoutTemplateRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Objective       string   `json:"objective"`
	Level           string   `json:"level"`
	Modality        string   `json:"modality"`
	WeeksCount      int      `json:"weeksCount"`
	SessionsPerWeek int      `json:"sessionsPerWeek"`
	Tags            []string `json:"tags"`
	IsPublic        bool     `json:"isPublic"`
}

// UpdateWorkoutTemplateRequest defines the expected JSON for a partial update.
type UpdateWorkoutTemplateRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Objective       *string  `json:"objective"`
	Level           *string  `json:"level"`
	Modality        *string  `json:"modality"`
	WeeksCount      *int     `json:"weeksCount"`
	SessionsPerWeek *int     `json:"sessionsPerWeek"`
	Tags            []string `json:"tags"`
	IsPublic        *bool    `json:"isPublic"`
}

// RateTemplateRequest defines the expected JSON for rating a template.
type RateTemplateRequest struct {
	Points int `json:"points" binding:"required,min=1,max=5"`
}

// SetVisibilityRequest defines the expected JSON for toggling visibility.
type SetVisibilityRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

// --- Diet templates ---

func (h *TemplateHandler) CreateDietTemplate(c *gin.Context) {
	var req CreateDietTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.Create(c.Request.Context(), trainerID, service.DietTemplateInput{
		Name:          req.Name,
		Description:   req.Description,
		Objective:     req.Objective,
		DietType:      req.DietType,
		Calories:      req.Calories,
		Macros:        req.Macros.toDomain(),
		DurationWeeks: req.DurationWeeks,
		Restrictions:  req.Restrictions,
		Allergens:     req.Allergens,
		Tags:          req.Tags,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, tpl)
}

func (h *TemplateHandler) ListDietTemplates(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.dietTemplates.List(c.Request.Context(), trainerID, c.Request.URL.Query())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, result)
}

func (h *TemplateHandler) GetDietTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.Get(c.Request.Context(), trainerID, templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) UpdateDietTemplate(c *gin.Context) {
	var req UpdateDietTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.Update(c.Request.Context(), trainerID, templateID, service.DietTemplatePatch{
		Name:          req.Name,
		Description:   req.Description,
		Objective:     req.Objective,
		DietType:      req.DietType,
		Calories:      req.Calories,
		Macros:        req.Macros.toDomain(),
		DurationWeeks: req.DurationWeeks,
		Restrictions:  req.Restrictions,
		Allergens:     req.Allergens,
		Tags:          req.Tags,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) DeleteDietTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.dietTemplates.Delete(c.Request.Context(), trainerID, templateID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *TemplateHandler) DuplicateDietTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.Duplicate(c.Request.Context(), trainerID, templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, tpl)
}

func (h *TemplateHandler) RateDietTemplate(c *gin.Context) {
	var req RateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.Rate(c.Request.Context(), trainerID, templateID, req.Points)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) ToggleDietTemplateFavorite(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.ToggleFavorite(c.Request.Context(), trainerID, templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) SetDietTemplateVisibility(c *gin.Context) {
	var req SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: isPublic is required")
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.dietTemplates.SetVisibility(c.Request.Context(), trainerID, templateID, *req.IsPublic)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) DietTemplateStats(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.dietTemplates.Stats(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// --- Workout templates ---

func (h *TemplateHandler) CreateWorkoutTemplate(c *gin.Context) {
	var req CreateWorkoutTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.Create(c.Request.Context(), trainerID, service.WorkoutTemplateInput{
		Name:            req.Name,
		Description:     req.Description,
		Objective:       req.Objective,
		Level:           req.Level,
		Modality:        req.Modality,
		WeeksCount:      req.WeeksCount,
		SessionsPerWeek: req.SessionsPerWeek,
		Tags:            req.Tags,
		IsPublic:        req.IsPublic,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, tpl)
}

func (h *TemplateHandler) ListWorkoutTemplates(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.workoutTemplates.List(c.Request.Context(), trainerID, c.Request.URL.Query())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, result)
}

func (h *TemplateHandler) GetWorkoutTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.Get(c.Request.Context(), trainerID, templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) UpdateWorkoutTemplate(c *gin.Context) {
	var req UpdateWorkoutTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.Update(c.Request.Context(), trainerID, templateID, service.WorkoutTemplatePatch{
		Name:            req.Name,
		Description:     req.Description,
		Objective:       req.Objective,
		Level:           req.Level,
		Modality:        req.Modality,
		WeeksCount:      req.WeeksCount,
		SessionsPerWeek: req.SessionsPerWeek,
		Tags:            req.Tags,
		IsPublic:        req.IsPublic,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) DeleteWorkoutTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutTemplates.Delete(c.Request.Context(), trainerID, templateID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *TemplateHandler) DuplicateWorkoutTemplate(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.Duplicate(c.Request.Context(), trainerID, templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, tpl)
}

func (h *TemplateHandler) RateWorkoutTemplate(c *gin.Context) {
	var req RateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.Rate(c.Request.Context(), trainerID, templateID, req.Points)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) ToggleWorkoutTemplateFavorite(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.ToggleFavorite(c.Request.Context(), trainerID, templateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) SetWorkoutTemplateVisibility(c *gin.Context) {
	var req SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: isPublic is required")
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	tpl, err := h.workoutTemplates.SetVisibility(c.Request.Context(), trainerID, templateID, *req.IsPublic)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, tpl)
}

func (h *TemplateHandler) WorkoutTemplateStats(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.workoutTemplates.Stats(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}
