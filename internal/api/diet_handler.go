package api

import (
	"net/http"
	"time"

	"coachapp/coaching-app/internal/domain"
	"coachapp/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DietHandler holds the diet service dependency.
type DietHandler struct {
	dietService service.DietService
}

// NewDietHandler creates a new DietHandler.
func NewDietHandler(dietService service.DietService) *DietHandler {
	return &DietHandler{dietService: dietService}
}

// MacrosRequest carries macro targets in grams.
type MacrosRequest struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

func (m *MacrosRequest) toDomain() *domain.Macros {
	if m == nil {
		return nil
	}
	return &domain.Macros{Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}
}

// CreatePlanRequest defines the expected JSON for creating a diet plan.
type CreatePlanRequest struct {
	ClientID       string         `json:"clientId" binding:"required"`
	TemplateID     string         `json:"templateId"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Objective      string         `json:"objective"`
	DietType       string         `json:"dietType"`
	StartDate      *time.Time     `json:"startDate"`
	DurationDays   int            `json:"durationDays"`
	TargetCalories float64        `json:"targetCalories"`
	TargetMacros   *MacrosRequest `json:"targetMacros"`
	Restrictions   []string       `json:"restrictions"`
	Allergens      []string       `json:"allergens"`
	InitialWeight  *float64       `json:"initialWeight"`
	CurrentWeight  *float64       `json:"currentWeight"`
	TargetWeight   *float64       `json:"targetWeight"`
	Status         string         `json:"status"`
	Notes          string         `json:"notes"`
}

// UpdatePlanRequest defines the expected JSON for a partial plan update.
type UpdatePlanRequest struct {
	Name           *string        `json:"name"`
	Description    *string        `json:"description"`
	Objective      *string        `json:"objective"`
	DietType       *string        `json:"dietType"`
	StartDate      *time.Time     `json:"startDate"`
	DurationDays   *int           `json:"durationDays"`
	TargetCalories *float64       `json:"targetCalories"`
	TargetMacros   *MacrosRequest `json:"targetMacros"`
	Restrictions   []string       `json:"restrictions"`
	Allergens      []string       `json:"allergens"`
	InitialWeight  *float64       `json:"initialWeight"`
	CurrentWeight  *float64       `json:"currentWeight"`
	TargetWeight   *float64       `json:"targetWeight"`
	Notes          *string        `json:"notes"`
}

// TrackingRequest defines the expected JSON for a tracking entry, both for
// creation and for partial updates.
type TrackingRequest struct {
	Date           *time.Time     `json:"date"`
	Weight         *float64       `json:"weight"`
	Calories       *float64       `json:"calories"`
	Macros         *MacrosRequest `json:"macros"`
	DailyAdherence *int           `json:"dailyAdherence"`
	Notes          *string        `json:"notes"`
}

func (r TrackingRequest) toInput() service.TrackingInput {
	return service.TrackingInput{
		Date:           r.Date,
		Weight:         r.Weight,
		Calories:       r.Calories,
		Macros:         r.Macros.toDomain(),
		DailyAdherence: r.DailyAdherence,
		Notes:          r.Notes,
	}
}

// SetStatusRequest defines the expected JSON for a status transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetWeightRequest defines the expected JSON for a weight update. Weight
// is a pointer so a literal 0 still counts as present.
type SetWeightRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
}

// CreatePlan creates a new diet plan, optionally from a template.
func (h *DietHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format")
		return
	}

	input := service.PlanInput{
		ClientID:       clientID,
		Name:           req.Name,
		Description:    req.Description,
		Objective:      req.Objective,
		DietType:       req.DietType,
		StartDate:      req.StartDate,
		DurationDays:   req.DurationDays,
		TargetCalories: req.TargetCalories,
		TargetMacros:   req.TargetMacros.toDomain(),
		Restrictions:   req.Restrictions,
		Allergens:      req.Allergens,
		InitialWeight:  req.InitialWeight,
		CurrentWeight:  req.CurrentWeight,
		TargetWeight:   req.TargetWeight,
		Status:         req.Status,
		Notes:          req.Notes,
	}
	if req.TemplateID != "" {
		templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid templateId format")
			return
		}
		input.TemplateID = &templateID
	}

	plan, err := h.dietService.CreatePlan(c.Request.Context(), trainerID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, plan)
}

// ListPlans returns a filtered, paginated listing of the trainer's plans.
func (h *DietHandler) ListPlans(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.dietService.ListPlans(c.Request.Context(), trainerID, c.Request.URL.Query())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, result)
}

// GetPlan returns one plan by id.
func (h *DietHandler) GetPlan(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plan, err := h.dietService.GetPlan(c.Request.Context(), trainerID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, plan)
}

// ListClientPlans returns the plans of one client, optionally filtered by
// status.
func (h *DietHandler) ListClientPlans(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plans, err := h.dietService.PlansForClient(c.Request.Context(), trainerID, clientID, c.Query("estado"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, plans)
}

// UpdatePlan applies a partial update to a plan.
func (h *DietHandler) UpdatePlan(c *gin.Context) {
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plan, err := h.dietService.UpdatePlan(c.Request.Context(), trainerID, planID, service.PlanPatch{
		Name:           req.Name,
		Description:    req.Description,
		Objective:      req.Objective,
		DietType:       req.DietType,
		StartDate:      req.StartDate,
		DurationDays:   req.DurationDays,
		TargetCalories: req.TargetCalories,
		TargetMacros:   req.TargetMacros.toDomain(),
		Restrictions:   req.Restrictions,
		Allergens:      req.Allergens,
		InitialWeight:  req.InitialWeight,
		CurrentWeight:  req.CurrentWeight,
		TargetWeight:   req.TargetWeight,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, plan)
}

// DeletePlan soft-deletes a plan.
func (h *DietHandler) DeletePlan(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.dietService.DeletePlan(c.Request.Context(), trainerID, planID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// PlanStats returns the trainer-wide diet plan summary.
func (h *DietHandler) PlanStats(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.dietService.Stats(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// AddTracking appends a tracking entry to a plan.
func (h *DietHandler) AddTracking(c *gin.Context) {
	var req TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plan, err := h.dietService.AddTracking(c.Request.Context(), trainerID, planID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, plan)
}

// UpdateTracking applies a partial update to one tracking entry.
func (h *DietHandler) UpdateTracking(c *gin.Context) {
	var req TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plan, err := h.dietService.UpdateTracking(c.Request.Context(), trainerID, planID, c.Param("entryId"), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, plan)
}

// DeleteTracking removes one tracking entry from a plan.
func (h *DietHandler) DeleteTracking(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.dietService.DeleteTracking(c.Request.Context(), trainerID, planID, c.Param("entryId")); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// SetPlanStatus transitions a plan to a new lifecycle status.
func (h *DietHandler) SetPlanStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plan, err := h.dietService.SetStatus(c.Request.Context(), trainerID, planID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, plan)
}

// SetPlanWeight updates the client's current weight on a plan.
func (h *DietHandler) SetPlanWeight(c *gin.Context) {
	var req SetWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	plan, err := h.dietService.SetWeight(c.Request.Context(), trainerID, planID, *req.Weight)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, plan)
}
