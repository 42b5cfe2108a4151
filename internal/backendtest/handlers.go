package backendtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/easyloft/easyloft-client/internal/domain"
)

func contextWithUser(r *http.Request, userID string) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, userID)
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterInput
	if !decode(w, r, &in) {
		return
	}
	if in.Email == "" || len(in.Password) < 6 || in.Name == "" {
		writeError(w, http.StatusBadRequest, []string{"email, password (6+) and name are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(in.Email)]; exists {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	user := s.createAccountLocked(in.Email, in.Password, in.Name, in.Phone)
	writeJSON(w, http.StatusCreated, domain.LoginResponse{AccessToken: s.issueTokenLocked(user.ID), User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(in.Email)]
	if !ok || acc.password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, domain.LoginResponse{AccessToken: s.issueTokenLocked(acc.user.ID), User: acc.user})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in domain.ForgotPasswordInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	if _, ok := s.accounts[strings.ToLower(in.Email)]; ok {
		s.resetTokens[uuid.NewString()] = strings.ToLower(in.Email)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "If the email exists, a reset link was sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resetTokens[in.Token]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	delete(s.resetTokens, in.Token)
	s.accounts[email].password = in.Password
	writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "Password updated"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByIDLocked(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByIDLocked(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if in.Name != nil {
		acc.user.Name = *in.Name
	}
	if in.Phone != nil {
		acc.user.Phone = *in.Phone
	}
	acc.user.UpdatedAt = timestamp()
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleListLofts(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Loft{}
	for _, l := range s.lofts {
		if l.OwnerID == owner {
			out = append(out, l)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateLoft(w http.ResponseWriter, r *http.Request) {
	var in domain.LoftInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, []string{"name should not be empty"})
		return
	}
	now := timestamp()
	loft := domain.Loft{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
		OwnerID:     userID(r),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.lofts = append(s.lofts, loft)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, loft)
}

func (s *Server) loftIndexLocked(r *http.Request, id string) int {
	owner := userID(r)
	for i, l := range s.lofts {
		if l.ID == id && l.OwnerID == owner {
			return i
		}
	}
	return -1
}

func (s *Server) handleGetLoft(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.loftIndexLocked(r, chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Loft not found")
		return
	}
	writeJSON(w, http.StatusOK, s.lofts[i])
}

func (s *Server) handleUpdateLoft(w http.ResponseWriter, r *http.Request) {
	var in domain.LoftUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.loftIndexLocked(r, chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Loft not found")
		return
	}
	loft := s.lofts[i]
	if in.Name != nil {
		loft.Name = *in.Name
	}
	if in.Location != nil {
		loft.Location = *in.Location
	}
	if in.Description != nil {
		loft.Description = *in.Description
	}
	loft.UpdatedAt = timestamp()
	s.lofts[i] = loft
	writeJSON(w, http.StatusOK, loft)
}

func (s *Server) handleDeleteLoft(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	i := s.loftIndexLocked(r, id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Loft not found")
		return
	}
	s.lofts = append(s.lofts[:i], s.lofts[i+1:]...)
	kept := s.pigeons[:0]
	for _, p := range s.pigeons {
		if p.LoftID != id {
			kept = append(kept, p)
		}
	}
	s.pigeons = kept
	writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "Loft deleted"})
}

func (s *Server) ownsLoftLocked(r *http.Request, loftID string) bool {
	return s.loftIndexLocked(r, loftID) >= 0
}

func (s *Server) handleListPigeons(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Pigeon{}
	for _, p := range s.pigeons {
		if s.ownsLoftLocked(r, p.LoftID) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPigeonsByLoft(w http.ResponseWriter, r *http.Request) {
	loftID := chi.URLParam(r, "loftId")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsLoftLocked(r, loftID) {
		writeError(w, http.StatusNotFound, "Loft not found")
		return
	}
	out := []domain.Pigeon{}
	for _, p := range s.pigeons {
		if p.LoftID == loftID {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePigeon(w http.ResponseWriter, r *http.Request) {
	var in domain.PigeonInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" || in.BirthDate == "" {
		writeError(w, http.StatusBadRequest, []string{"name and birthDate are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsLoftLocked(r, in.LoftID) {
		writeError(w, http.StatusNotFound, "Loft not found")
		return
	}
	sex := in.Sex
	if !sex.Valid() {
		sex = domain.SexUnknown
	}
	now := timestamp()
	p := domain.Pigeon{
		ID:                uuid.NewString(),
		LoftID:            in.LoftID,
		RingNumber:        in.RingNumber,
		Name:              in.Name,
		BirthDate:         in.BirthDate,
		Sex:               sex,
		Plumage:           in.Plumage,
		Dimensions:        in.Dimensions,
		Images:            in.Images,
		FatherID:          in.FatherID,
		MotherID:          in.MotherID,
		IsExternal:        in.IsExternal,
		ExternalOwnerInfo: in.ExternalOwnerInfo,
		OriginalBreeder:   in.OriginalBreeder,
		OwnershipHistory:  nonNil(in.OwnershipHistory),
		Purchases:         nonNil(in.Purchases),
		Sales:             nonNil(in.Sales),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	s.pigeons = append(s.pigeons, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) pigeonIndexLocked(r *http.Request, id string) int {
	for i, p := range s.pigeons {
		if p.ID == id && s.ownsLoftLocked(r, p.LoftID) {
			return i
		}
	}
	return -1
}

func (s *Server) handleGetPigeon(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pigeonIndexLocked(r, chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Pigeon not found")
		return
	}
	writeJSON(w, http.StatusOK, s.pigeons[i])
}

func (s *Server) handleUpdatePigeon(w http.ResponseWriter, r *http.Request) {
	var in domain.PigeonUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pigeonIndexLocked(r, chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Pigeon not found")
		return
	}
	p := s.pigeons[i]
	applyString(&p.LoftID, in.LoftID)
	applyString(&p.RingNumber, in.RingNumber)
	applyString(&p.Name, in.Name)
	applyString(&p.BirthDate, in.BirthDate)
	applyString(&p.Plumage, in.Plumage)
	applyString(&p.Dimensions, in.Dimensions)
	applyString(&p.FatherID, in.FatherID)
	applyString(&p.MotherID, in.MotherID)
	applyString(&p.ExternalOwnerInfo, in.ExternalOwnerInfo)
	applyString(&p.OriginalBreeder, in.OriginalBreeder)
	if in.Sex != nil {
		p.Sex = *in.Sex
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.IsExternal != nil {
		p.IsExternal = *in.IsExternal
	}
	// History lists are append-only.
	p.OwnershipHistory = append(p.OwnershipHistory, in.OwnershipHistory...)
	p.Purchases = append(p.Purchases, in.Purchases...)
	p.Sales = append(p.Sales, in.Sales...)
	p.UpdatedAt = timestamp()
	s.pigeons[i] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePigeon(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.pigeonIndexLocked(r, chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Pigeon not found")
		return
	}
	s.pigeons = append(s.pigeons[:i], s.pigeons[i+1:]...)
	writeJSON(w, http.StatusOK, domain.MessageResponse{Message: "Pigeon deleted"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file")
		return
	}
	name := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename)))
	s.mu.Lock()
	s.uploads[name] = data
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, domain.UploadResponse{URL: "/uploads/" + name})
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.uploads[chi.URLParam(r, "name")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(data)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
