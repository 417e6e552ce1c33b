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

// ClientInput carries caller-supplied fields for creating a client.
type ClientInput struct {
	Name     string
	Email    string
	Phone    string
	Status   string
	Tags     []string
	Notes    string
	JoinedAt *time.Time
}

// ClientPatch carries partial updates; nil fields are left unchanged.
type ClientPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Status   *string
	Tags     []string
	Notes    *string
	PhotoURL *string
}

// UploadURLResponse pairs a presigned URL with the object key the caller
// must report back once the upload completes.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ClientList is a page of clients with the trainer-wide stats summary.
type ClientList = ListResult[domain.Client]

type ClientService interface {
	Create(ctx context.Context, trainerID primitive.ObjectID, input ClientInput) (*domain.Client, error)
	Get(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error)
	List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*ClientList, error)
	Update(ctx context.Context, trainerID, clientID primitive.ObjectID, patch ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	AddTags(ctx context.Context, trainerID, clientID primitive.ObjectID, tags []string) (*domain.Client, error)
	Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.ClientStats, error)

	RequestPhotoUploadURL(ctx context.Context, trainerID, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmPhotoUpload(ctx context.Context, trainerID, clientID primitive.ObjectID, objectKey string) (*domain.Client, error)
	PhotoDownloadURL(ctx context.Context, trainerID, clientID primitive.ObjectID) (string, error)
}

// clientService implements the ClientService interface.
type clientService struct {
	clientRepo  repository.ClientRepository
	fileStorage storage.FileStorage
}

// NewClientService creates a new instance of clientService.
func NewClientService(clientRepo repository.ClientRepository, fileStorage storage.FileStorage) ClientService {
	return &clientService{
		clientRepo:  clientRepo,
		fileStorage: fileStorage,
	}
}

func (s *clientService) Create(ctx context.Context, trainerID primitive.ObjectID, input ClientInput) (*domain.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidf("client name is required")
	}

	status := domain.ClientActive
	if input.Status != "" {
		status = domain.ClientStatus(input.Status)
		if !domain.ValidClientStatus(status) {
			return nil, invalidf("unknown client status %q", input.Status)
		}
	}

	client := &domain.Client{
		TrainerID: trainerID,
		Name:      strings.TrimSpace(input.Name),
		Email:     input.Email,
		Phone:     input.Phone,
		Status:    status,
		Tags:      input.Tags,
		Notes:     input.Notes,
	}
	if input.JoinedAt != nil {
		client.JoinedAt = *input.JoinedAt
	}

	id, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		return nil, classify(err, "client")
	}
	created, err := s.clientRepo.GetByID(ctx, trainerID, id)
	if err != nil {
		return nil, classify(err, "client")
	}
	return created, nil
}

func (s *clientService) Get(ctx context.Context, trainerID, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, trainerID, clientID)
	if err != nil {
		return nil, classify(err, "client")
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context, trainerID primitive.ObjectID, raw url.Values) (*ClientList, error) {
	q := query.Parse(raw, query.Clients(), time.Now().UTC())

	page, err := s.clientRepo.List(ctx, trainerID, q)
	if err != nil {
		return nil, classify(err, "clients")
	}
	stats, err := s.clientRepo.Stats(ctx, trainerID)
	if err != nil {
		return nil, classify(err, "client stats")
	}
	return listResult(page, q.Page, q.PageSize, stats), nil
}

func (s *clientService) Update(ctx context.Context, trainerID, clientID primitive.ObjectID, patch ClientPatch) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, trainerID, clientID)
	if err != nil {
		return nil, classify(err, "client")
	}

	if patch.Status != nil && !domain.ValidClientStatus(domain.ClientStatus(*patch.Status)) {
		return nil, invalidf("unknown client status %q", *patch.Status)
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		client.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		client.Email = *patch.Email
	}
	if patch.Phone != nil {
		client.Phone = *patch.Phone
	}
	if patch.Status != nil {
		client.Status = domain.ClientStatus(*patch.Status)
	}
	if patch.Tags != nil {
		client.Tags = domain.DedupTags(patch.Tags)
	}
	if patch.Notes != nil {
		client.Notes = *patch.Notes
	}
	if patch.PhotoURL != nil {
		client.PhotoURL = *patch.PhotoURL
	}
	client.Touch(time.Now().UTC())

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, classify(err, "client")
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, trainerID, clientID primitive.ObjectID) error {
	if err := s.clientRepo.SoftDelete(ctx, trainerID, clientID); err != nil {
		return classify(err, "client")
	}
	return nil
}

func (s *clientService) AddTags(ctx context.Context, trainerID, clientID primitive.ObjectID, tags []string) (*domain.Client, error) {
	cleaned := domain.DedupTags(tags)
	if len(cleaned) == 0 {
		return nil, invalidf("at least one tag is required")
	}

	client, err := s.clientRepo.AddTags(ctx, trainerID, clientID, cleaned)
	if err != nil {
		return nil, classify(err, "client")
	}
	return client, nil
}

func (s *clientService) Stats(ctx context.Context, trainerID primitive.ObjectID) (repository.ClientStats, error) {
	stats, err := s.clientRepo.Stats(ctx, trainerID)
	if err != nil {
		return stats, classify(err, "client stats")
	}
	return stats, nil
}

// RequestPhotoUploadURL generates a presigned URL for uploading a client's
// profile photo directly to object storage.
func (s *clientService) RequestPhotoUploadURL(ctx context.Context, trainerID, clientID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, invalidf("invalid or missing image content type")
	}

	if _, err := s.clientRepo.GetByID(ctx, trainerID, clientID); err != nil {
		return nil, classify(err, "client")
	}

	fileExtension := "bin"
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("photos", trainerID.Hex(), clientID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, internalf("generate upload url: %v", err)
	}

	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmPhotoUpload records the uploaded object key on the client. This is
// called after the caller has PUT the file to the presigned URL.
func (s *clientService) ConfirmPhotoUpload(ctx context.Context, trainerID, clientID primitive.ObjectID, objectKey string) (*domain.Client, error) {
	if objectKey == "" {
		return nil, invalidf("object key is required")
	}

	client, err := s.clientRepo.GetByID(ctx, trainerID, clientID)
	if err != nil {
		return nil, classify(err, "client")
	}

	client.PhotoURL = objectKey
	client.Touch(time.Now().UTC())

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, classify(err, "client")
	}
	return client, nil
}

// PhotoDownloadURL generates a temporary URL for viewing a client's photo.
func (s *clientService) PhotoDownloadURL(ctx context.Context, trainerID, clientID primitive.ObjectID) (string, error) {
	client, err := s.clientRepo.GetByID(ctx, trainerID, clientID)
	if err != nil {
		return "", classify(err, "client")
	}
	if client.PhotoURL == "" {
		return "", notFoundf("client photo")
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, client.PhotoURL, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", internalf("generate download url: %v", err)
	}
	return downloadURL, nil
}
