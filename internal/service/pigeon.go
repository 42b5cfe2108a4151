package service

import (
	"context"
	"net/http"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/domain"
)

const (
	pigeonsPath = "/pigeons"
	// UploadField is the multipart field carrying the image.
	UploadField = "image"
)

// PigeonService covers /pigeons and the image upload endpoint.
type PigeonService struct {
	t Transport
}

// NewPigeonService returns a PigeonService using t.
func NewPigeonService(t Transport) *PigeonService {
	return &PigeonService{t: t}
}

// Create adds a pigeon and returns the stored copy.
func (s *PigeonService) Create(ctx context.Context, in domain.PigeonInput) (domain.Pigeon, error) {
	var p domain.Pigeon
	if err := s.t.Request(ctx, http.MethodPost, pigeonsPath, in, true, &p); err != nil {
		return domain.Pigeon{}, err
	}
	return p, nil
}

// List returns every pigeon of the signed-in user.
func (s *PigeonService) List(ctx context.Context) ([]domain.Pigeon, error) {
	var pigeons []domain.Pigeon
	if err := s.t.Request(ctx, http.MethodGet, pigeonsPath, nil, true, &pigeons); err != nil {
		return nil, err
	}
	return pigeons, nil
}

// ListByLoft returns the pigeons housed in one loft.
func (s *PigeonService) ListByLoft(ctx context.Context, loftID string) ([]domain.Pigeon, error) {
	var pigeons []domain.Pigeon
	if err := s.t.Request(ctx, http.MethodGet, resourcePath(pigeonsPath+"/loft", loftID), nil, true, &pigeons); err != nil {
		return nil, err
	}
	return pigeons, nil
}

// Get returns a single pigeon.
func (s *PigeonService) Get(ctx context.Context, id string) (domain.Pigeon, error) {
	var p domain.Pigeon
	if err := s.t.Request(ctx, http.MethodGet, resourcePath(pigeonsPath, id), nil, true, &p); err != nil {
		return domain.Pigeon{}, err
	}
	return p, nil
}

// Update applies a partial update and returns the canonical copy.
func (s *PigeonService) Update(ctx context.Context, id string, updates domain.PigeonUpdate) (domain.Pigeon, error) {
	var p domain.Pigeon
	if err := s.t.Request(ctx, http.MethodPut, resourcePath(pigeonsPath, id), updates, true, &p); err != nil {
		return domain.Pigeon{}, err
	}
	return p, nil
}

// Delete removes a pigeon.
func (s *PigeonService) Delete(ctx context.Context, id string) (domain.MessageResponse, error) {
	var resp domain.MessageResponse
	if err := s.t.Request(ctx, http.MethodDelete, resourcePath(pigeonsPath, id), nil, true, &resp); err != nil {
		return domain.MessageResponse{}, err
	}
	return resp, nil
}

// UploadImage stores a photo and returns its URL.
func (s *PigeonService) UploadImage(ctx context.Context, file api.File) (domain.UploadResponse, error) {
	var resp domain.UploadResponse
	if err := s.t.Upload(ctx, pigeonsPath+"/upload", UploadField, file, true, &resp); err != nil {
		return domain.UploadResponse{}, err
	}
	return resp, nil
}
