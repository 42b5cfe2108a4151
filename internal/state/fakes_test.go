package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/domain"
)

// gated lets a fake hold calls open until the test releases them.
type gated struct {
	mu     sync.Mutex
	err    error
	gates  map[string]chan struct{}
	called chan string
}

// hold makes the next call tagged key block until release(key).
func (g *gated) hold(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates == nil {
		g.gates = make(map[string]chan struct{})
	}
	g.gates[key] = make(chan struct{})
}

func (g *gated) release(key string) {
	g.mu.Lock()
	gate := g.gates[key]
	g.mu.Unlock()
	close(gate)
}

func (g *gated) wait(ctx context.Context, key string) {
	g.mu.Lock()
	gate := g.gates[key]
	called := g.called
	g.mu.Unlock()
	if called != nil {
		called <- key
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			<-gate
		}
	}
}

func (g *gated) failure() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// fakeLofts is a LoftAPI whose calls can be held open with gates.
type fakeLofts struct {
	gated
	lofts []domain.Loft
	next  int
}

func newFakeLofts(lofts ...domain.Loft) *fakeLofts {
	return &fakeLofts{lofts: lofts}
}

func (f *fakeLofts) Create(ctx context.Context, in domain.LoftInput) (domain.Loft, error) {
	f.wait(ctx, "create")
	if err := f.failure(); err != nil {
		return domain.Loft{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	loft := domain.Loft{ID: fmt.Sprintf("new-%d", f.next), Name: in.Name, Location: in.Location, Description: in.Description}
	f.lofts = append(f.lofts, loft)
	return loft, nil
}

func (f *fakeLofts) List(ctx context.Context) ([]domain.Loft, error) {
	f.wait(ctx, "list")
	if err := f.failure(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Loft(nil), f.lofts...), nil
}

func (f *fakeLofts) Get(ctx context.Context, id string) (domain.Loft, error) {
	f.wait(ctx, "get")
	if err := f.failure(); err != nil {
		return domain.Loft{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lofts {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Loft{}, notFound("Loft not found")
}

func (f *fakeLofts) Update(ctx context.Context, id string, updates domain.LoftUpdate) (domain.Loft, error) {
	key := "update"
	if updates.Name != nil {
		key = "update:" + *updates.Name
	}
	f.wait(ctx, key)
	if err := f.failure(); err != nil {
		return domain.Loft{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lofts {
		if l.ID != id {
			continue
		}
		if updates.Name != nil {
			l.Name = *updates.Name
		}
		if updates.Location != nil {
			l.Location = *updates.Location
		}
		if updates.Description != nil {
			l.Description = *updates.Description
		}
		l.UpdatedAt = "server-stamped"
		f.lofts[i] = l
		return l, nil
	}
	return domain.Loft{}, notFound("Loft not found")
}

func (f *fakeLofts) Delete(ctx context.Context, id string) (domain.MessageResponse, error) {
	f.wait(ctx, "delete")
	if err := f.failure(); err != nil {
		return domain.MessageResponse{}, err
	}
	return domain.MessageResponse{Message: "Loft deleted"}, nil
}

// fakePigeons is a PigeonAPI over an in-memory list.
type fakePigeons struct {
	gated
	pigeons   []domain.Pigeon
	uploadErr error
	next      int
}

func newFakePigeons(pigeons ...domain.Pigeon) *fakePigeons {
	return &fakePigeons{pigeons: pigeons}
}

func (f *fakePigeons) Create(ctx context.Context, in domain.PigeonInput) (domain.Pigeon, error) {
	f.wait(ctx, "create")
	if err := f.failure(); err != nil {
		return domain.Pigeon{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	p := domain.Pigeon{ID: fmt.Sprintf("new-%d", f.next), LoftID: in.LoftID, Name: in.Name, Sex: in.Sex, Images: in.Images}
	f.pigeons = append(f.pigeons, p)
	return p, nil
}

func (f *fakePigeons) List(ctx context.Context) ([]domain.Pigeon, error) {
	f.wait(ctx, "list")
	if err := f.failure(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Pigeon(nil), f.pigeons...), nil
}

func (f *fakePigeons) ListByLoft(ctx context.Context, loftID string) ([]domain.Pigeon, error) {
	f.wait(ctx, "list:"+loftID)
	if err := f.failure(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Pigeon
	for _, p := range f.pigeons {
		if p.LoftID == loftID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePigeons) Get(ctx context.Context, id string) (domain.Pigeon, error) {
	f.wait(ctx, "get")
	if err := f.failure(); err != nil {
		return domain.Pigeon{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pigeons {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Pigeon{}, notFound("Pigeon not found")
}

func (f *fakePigeons) Update(ctx context.Context, id string, updates domain.PigeonUpdate) (domain.Pigeon, error) {
	f.wait(ctx, "update")
	if err := f.failure(); err != nil {
		return domain.Pigeon{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pigeons {
		if p.ID != id {
			continue
		}
		if updates.Name != nil {
			p.Name = *updates.Name
		}
		if updates.Images != nil {
			p.Images = *updates.Images
		}
		p.UpdatedAt = "server-stamped"
		f.pigeons[i] = p
		return p, nil
	}
	return domain.Pigeon{}, notFound("Pigeon not found")
}

func (f *fakePigeons) Delete(ctx context.Context, id string) (domain.MessageResponse, error) {
	f.wait(ctx, "delete")
	if err := f.failure(); err != nil {
		return domain.MessageResponse{}, err
	}
	return domain.MessageResponse{Message: "Pigeon deleted"}, nil
}

func (f *fakePigeons) UploadImage(ctx context.Context, file api.File) (domain.UploadResponse, error) {
	f.wait(ctx, "upload")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return domain.UploadResponse{}, f.uploadErr
	}
	return domain.UploadResponse{URL: "/uploads/" + file.Name}, nil
}

func notFound(msg string) error {
	return &api.RequestError{Kind: api.KindStatus, Status: 404, ServerMessage: msg, Message: msg}
}

func statusOnly(status int) error {
	return &api.RequestError{Kind: api.KindStatus, Status: status, Message: fmt.Sprintf("request failed with status %d", status)}
}

var errOffline = &api.RequestError{Kind: api.KindNetwork, Message: "execute request: connection refused", Err: errors.New("connection refused")}

// fakeAuth is an AuthAPI with canned responses.
type fakeAuth struct {
	mu          sync.Mutex
	login       domain.LoginResponse
	loginErr    error
	profile     domain.User
	profileErr  error
	profileHits int
}

func (f *fakeAuth) Register(_ context.Context, in domain.RegisterInput) (domain.LoginResponse, error) {
	if f.loginErr != nil {
		return domain.LoginResponse{}, f.loginErr
	}
	resp := f.login
	resp.User.Email = in.Email
	resp.User.Name = in.Name
	return resp, nil
}

func (f *fakeAuth) Login(context.Context, string, string) (domain.LoginResponse, error) {
	if f.loginErr != nil {
		return domain.LoginResponse{}, f.loginErr
	}
	return f.login, nil
}

func (f *fakeAuth) ForgotPassword(context.Context, string) (domain.MessageResponse, error) {
	return domain.MessageResponse{Message: "sent"}, nil
}

func (f *fakeAuth) ResetPassword(context.Context, string, string) (domain.MessageResponse, error) {
	if f.loginErr != nil {
		return domain.MessageResponse{}, f.loginErr
	}
	return domain.MessageResponse{Message: "reset"}, nil
}

func (f *fakeAuth) GetProfile(context.Context) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileHits++
	if f.profileErr != nil {
		return domain.User{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeAuth) UpdateProfile(_ context.Context, updates domain.ProfileUpdate) (domain.User, error) {
	user := f.profile
	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.Phone != nil {
		user.Phone = *updates.Phone
	}
	return user, nil
}

func (f *fakeAuth) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileHits
}
