package service

import (
	"context"
	"net/http"

	"github.com/easyloft/easyloft-client/internal/domain"
)

const loftsPath = "/lofts"

// LoftService covers /lofts.
type LoftService struct {
	t Transport
}

// NewLoftService returns a LoftService using t.
func NewLoftService(t Transport) *LoftService {
	return &LoftService{t: t}
}

// Create adds a loft and returns the stored copy.
func (s *LoftService) Create(ctx context.Context, in domain.LoftInput) (domain.Loft, error) {
	var loft domain.Loft
	if err := s.t.Request(ctx, http.MethodPost, loftsPath, in, true, &loft); err != nil {
		return domain.Loft{}, err
	}
	return loft, nil
}

// List returns every loft of the signed-in user.
func (s *LoftService) List(ctx context.Context) ([]domain.Loft, error) {
	var lofts []domain.Loft
	if err := s.t.Request(ctx, http.MethodGet, loftsPath, nil, true, &lofts); err != nil {
		return nil, err
	}
	return lofts, nil
}

// Get returns a single loft.
func (s *LoftService) Get(ctx context.Context, id string) (domain.Loft, error) {
	var loft domain.Loft
	if err := s.t.Request(ctx, http.MethodGet, resourcePath(loftsPath, id), nil, true, &loft); err != nil {
		return domain.Loft{}, err
	}
	return loft, nil
}

// Update applies a partial update and returns the canonical copy.
func (s *LoftService) Update(ctx context.Context, id string, updates domain.LoftUpdate) (domain.Loft, error) {
	var loft domain.Loft
	if err := s.t.Request(ctx, http.MethodPut, resourcePath(loftsPath, id), updates, true, &loft); err != nil {
		return domain.Loft{}, err
	}
	return loft, nil
}

// Delete removes a loft.
func (s *LoftService) Delete(ctx context.Context, id string) (domain.MessageResponse, error) {
	var resp domain.MessageResponse
	if err := s.t.Request(ctx, http.MethodDelete, resourcePath(loftsPath, id), nil, true, &resp); err != nil {
		return domain.MessageResponse{}, err
	}
	return resp, nil
}
