package api

import (
	"net/http"
	"time"

	"coachapp/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service dependency.
type ClientHandler struct {
	clientService service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// CreateClientRequest defines the expected JSON for creating a client.
type CreateClientRequest struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"omitempty,email"`
	Phone    string     `json:"phone"`
	Status   string     `json:"status"`
	Tags     []string   `json:"tags"`
	Notes    string     `json:"notes"`
	JoinedAt *time.Time `json:"joinedAt"`
}

// UpdateClientRequest defines the expected JSON for a partial update.
type UpdateClientRequest struct {
	Name     *string  `json:"name"`
	Email    *string  `json:"email"`
	Phone    *string  `json:"phone"`
	Status   *string  `json:"status"`
	Tags     []string `json:"tags"`
	Notes    *string  `json:"notes"`
	PhotoURL *string  `json:"photoUrl"`
}

// AddTagsRequest defines the expected JSON for appending tags.
type AddTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// UploadURLRequest defines the expected JSON for requesting an upload URL.
type UploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// ConfirmUploadRequest defines the expected JSON for confirming an upload.
type ConfirmUploadRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// CreateClient creates a new client for the authenticated trainer.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), trainerID, service.ClientInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Status:   req.Status,
		Tags:     req.Tags,
		Notes:    req.Notes,
		JoinedAt: req.JoinedAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, client)
}

// ListClients returns a filtered, paginated listing of the trainer's clients.
func (h *ClientHandler) ListClients(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.clientService.List(c.Request.Context(), trainerID, c.Request.URL.Query())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, result)
}

// GetClient returns one client by id.
func (h *ClientHandler) GetClient(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), trainerID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, client)
}

// UpdateClient applies a partial update to a client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), trainerID, clientID, service.ClientPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Status:   req.Status,
		Tags:     req.Tags,
		Notes:    req.Notes,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, client)
}

// DeleteClient soft-deletes a client.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), trainerID, clientID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// AddClientTags appends tags to a client without duplicating existing ones.
func (h *ClientHandler) AddClientTags(c *gin.Context) {
	var req AddTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.AddTags(c.Request.Context(), trainerID, clientID, req.Tags)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, client)
}

// ClientStats returns the trainer-wide client summary.
func (h *ClientHandler) ClientStats(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.clientService.Stats(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// RequestPhotoUpload generates a presigned URL for a client photo upload.
func (h *ClientHandler) RequestPhotoUpload(c *gin.Context) {
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	resp, err := h.clientService.RequestPhotoUploadURL(c.Request.Context(), trainerID, clientID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, resp)
}

// ConfirmPhotoUpload records a completed photo upload on the client.
func (h *ClientHandler) ConfirmPhotoUpload(c *gin.Context) {
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.ConfirmPhotoUpload(c.Request.Context(), trainerID, clientID, req.ObjectKey)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, client)
}

// GetPhotoDownloadURL returns a temporary URL for viewing a client's photo.
func (h *ClientHandler) GetPhotoDownloadURL(c *gin.Context) {
	trainerID, ok := trainerIDFromContext(c)
	if !ok {
		return
	}
	clientID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	url, err := h.clientService.PhotoDownloadURL(c.Request.Context(), trainerID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"downloadUrl": url})
}
