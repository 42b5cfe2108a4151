package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/backendtest"
	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/tokenstore"
)

func newServices(t *testing.T, token string) (*backendtest.Server, *AuthService, *LoftService, *PigeonService) {
	t.Helper()
	backend := backendtest.New(t)
	client, err := api.NewClient(backend.URL, tokenstore.NewMemory(token))
	require.NoError(t, err)
	return backend, NewAuthService(client), NewLoftService(client), NewPigeonService(client)
}

func lastRequest(t *testing.T, backend *backendtest.Server) backendtest.Request {
	t.Helper()
	reqs := backend.Requests()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

func TestAuthService_WireContract(t *testing.T) {
	backend, auth, _, _ := newServices(t, "")
	ctx := context.Background()

	resp, err := auth.Register(ctx, domain.RegisterInput{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Ana", resp.User.Name)
	req := lastRequest(t, backend)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/auth/register", req.Path)
	assert.Empty(t, req.Authorization, "register must not send a token")

	resp, err = auth.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "/auth/login", lastRequest(t, backend).Path)

	_, err = auth.Login(ctx, "ana@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	msg, err := auth.ForgotPassword(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Message)
	assert.Equal(t, "/auth/forgot-password", lastRequest(t, backend).Path)

	resetToken := backend.ResetToken("ana@example.com")
	_, err = auth.ResetPassword(ctx, resetToken, "newsecret")
	require.NoError(t, err)
	assert.Equal(t, "/auth/reset-password", lastRequest(t, backend).Path)

	_, err = auth.Login(ctx, "ana@example.com", "newsecret")
	require.NoError(t, err)
}

func TestAuthService_ProfileRequiresToken(t *testing.T) {
	backend, auth, _, _ := newServices(t, "")
	_, err := auth.GetProfile(context.Background())
	var reqErr *api.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, "/users/me", lastRequest(t, backend).Path)
}

func TestAuthService_Profile(t *testing.T) {
	backend := backendtest.New(t)
	user, token := backend.AddUser("ana@example.com", "secret1", "Ana")
	client, err := api.NewClient(backend.URL, tokenstore.NewMemory(token))
	require.NoError(t, err)
	auth := NewAuthService(client)

	got, err := auth.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Bearer "+token, lastRequest(t, backend).Authorization)

	updated, err := auth.UpdateProfile(context.Background(), domain.ProfileUpdate{Phone: domain.String("555")})
	require.NoError(t, err)
	assert.Equal(t, "555", updated.Phone)
	assert.Equal(t, "Ana", updated.Name)
	req := lastRequest(t, backend)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/users/me", req.Path)
}

func TestLoftService_CRUD(t *testing.T) {
	backend := backendtest.New(t)
	_, token := backend.AddUser("ana@example.com", "secret1", "Ana")
	client, err := api.NewClient(backend.URL, tokenstore.NewMemory(token))
	require.NoError(t, err)
	lofts := NewLoftService(client)
	ctx := context.Background()

	created, err := lofts.Create(ctx, domain.LoftInput{Name: "North", Location: "Roof"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, http.MethodPost, lastRequest(t, backend).Method)
	assert.Equal(t, "/lofts", lastRequest(t, backend).Path)

	list, err := lofts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := lofts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "North", got.Name)
	assert.Equal(t, "/lofts/"+created.ID, lastRequest(t, backend).Path)

	updated, err := lofts.Update(ctx, created.ID, domain.LoftUpdate{Description: domain.String("main")})
	require.NoError(t, err)
	assert.Equal(t, "main", updated.Description)
	assert.Equal(t, "Roof", updated.Location)
	assert.Equal(t, http.MethodPut, lastRequest(t, backend).Method)

	_, err = lofts.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, lastRequest(t, backend).Method)

	_, err = lofts.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "Loft not found", err.Error())
}

func TestPigeonService_CRUDAndUpload(t *testing.T) {
	backend := backendtest.New(t)
	_, token := backend.AddUser("ana@example.com", "secret1", "Ana")
	client, err := api.NewClient(backend.URL, tokenstore.NewMemory(token))
	require.NoError(t, err)
	lofts := NewLoftService(client)
	pigeons := NewPigeonService(client)
	ctx := context.Background()

	loft, err := lofts.Create(ctx, domain.LoftInput{Name: "North"})
	require.NoError(t, err)

	upload, err := pigeons.UploadImage(ctx, api.File{Name: "blue.jpg", Body: strings.NewReader("\xff\xd8\xff\xe0jpeg")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.URL, "/uploads/"))
	req := lastRequest(t, backend)
	assert.Equal(t, "/pigeons/upload", req.Path)
	assert.True(t, strings.HasPrefix(req.ContentType, "multipart/form-data"))

	created, err := pigeons.Create(ctx, domain.PigeonInput{
		LoftID:          loft.ID,
		Name:            "Blue",
		BirthDate:       "2024-03-01",
		Sex:             domain.SexFemale,
		OriginalBreeder: "Ana",
		Images:          domain.PigeonImages{Body: upload.URL},
	})
	require.NoError(t, err)
	assert.Equal(t, upload.URL, created.Images.Body)

	byLoft, err := pigeons.ListByLoft(ctx, loft.ID)
	require.NoError(t, err)
	require.Len(t, byLoft, 1)
	assert.Equal(t, "/pigeons/loft/"+loft.ID, lastRequest(t, backend).Path)

	all, err := pigeons.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got, err := pigeons.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue", got.Name)

	ring := "ES-2024-1"
	updated, err := pigeons.Update(ctx, created.ID, domain.PigeonUpdate{RingNumber: &ring})
	require.NoError(t, err)
	assert.Equal(t, ring, updated.RingNumber)
	assert.Equal(t, "Blue", updated.Name)

	_, err = pigeons.Delete(ctx, created.ID)
	require.NoError(t, err)
	all, err = pigeons.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestResourcePathEscapesIDs(t *testing.T) {
	assert.Equal(t, "/lofts/a%2Fb", resourcePath(loftsPath, "a/b"))
}
