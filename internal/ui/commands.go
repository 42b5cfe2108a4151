package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/state"
)

// Messages

type tickMsg time.Time

// snapshotMsg asks the model to re-read every store.
type snapshotMsg struct{}

type action int

const (
	actFetch action = iota
	actLogin
	actRegister
	actForgot
	actReset
	actProfile
	actLoftCreate
	actLoftUpdate
	actLoftDelete
	actPigeonCreate
	actPigeonUpdate
	actPigeonDelete
)

// actionMsg reports a finished store action. message is the user-facing
// error text when err is set.
type actionMsg struct {
	action  action
	err     error
	message string
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func snapshotCmd() tea.Msg {
	return snapshotMsg{}
}

// runAction runs fn off the update loop. The failure text comes from the
// returned error, so a later action resetting the store cannot blank it.
func runAction(ctx context.Context, act action, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(ctx)
		msg := actionMsg{action: act, err: err}
		if err != nil {
			msg.message = state.Message(err)
		}
		return msg
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return runAction(m.ctx, actLogin, func(ctx context.Context) error {
		return m.auth.Login(ctx, email, password)
	})
}

func (m Model) registerCmd(in domain.RegisterInput) tea.Cmd {
	return runAction(m.ctx, actRegister, func(ctx context.Context) error {
		return m.auth.Register(ctx, in)
	})
}

func (m Model) forgotCmd(email string) tea.Cmd {
	return runAction(m.ctx, actForgot, func(ctx context.Context) error {
		return m.auth.ForgotPassword(ctx, email)
	})
}

func (m Model) resetCmd(token, password string) tea.Cmd {
	return runAction(m.ctx, actReset, func(ctx context.Context) error {
		return m.auth.ResetPassword(ctx, token, password)
	})
}

func (m Model) profileCmd(updates domain.ProfileUpdate) tea.Cmd {
	return runAction(m.ctx, actProfile, func(ctx context.Context) error {
		return m.auth.UpdateProfile(ctx, updates)
	})
}

// loadDashboardCmd fetches every loft and every pigeon. Fetch failures stay
// in the store snapshots.
func (m Model) loadDashboardCmd() tea.Cmd {
	return tea.Batch(
		runAction(m.ctx, actFetch, func(ctx context.Context) error {
			m.lofts.FetchAll(ctx)
			return nil
		}),
		m.allPigeonsCmd(),
	)
}

func (m Model) allPigeonsCmd() tea.Cmd {
	return runAction(m.ctx, actFetch, func(ctx context.Context) error {
		m.pigeons.FetchAll(ctx)
		return nil
	})
}

func (m Model) loftPigeonsCmd(loftID string) tea.Cmd {
	return runAction(m.ctx, actFetch, func(ctx context.Context) error {
		m.pigeons.FetchByLoft(ctx, loftID)
		return nil
	})
}

// refreshCmd repeats the last fetch of both stores, keeping the pigeon scope.
func (m Model) refreshCmd() tea.Cmd {
	return runAction(m.ctx, actFetch, func(ctx context.Context) error {
		return errors.Join(m.lofts.Refresh(ctx), m.pigeons.Refresh(ctx))
	})
}

func (m Model) createLoftCmd(in domain.LoftInput) tea.Cmd {
	return runAction(m.ctx, actLoftCreate, func(ctx context.Context) error {
		_, err := m.lofts.Create(ctx, in)
		return err
	})
}

func (m Model) updateLoftCmd(id string, updates domain.LoftUpdate) tea.Cmd {
	return runAction(m.ctx, actLoftUpdate, func(ctx context.Context) error {
		_, err := m.lofts.Update(ctx, id, updates)
		return err
	})
}

func (m Model) deleteLoftCmd(id string) tea.Cmd {
	return runAction(m.ctx, actLoftDelete, func(ctx context.Context) error {
		return m.lofts.Delete(ctx, id)
	})
}

// createPigeonCmd uploads imagePath first when set and attaches its URL as
// the body photo.
func (m Model) createPigeonCmd(in domain.PigeonInput, imagePath string) tea.Cmd {
	return runAction(m.ctx, actPigeonCreate, func(ctx context.Context) error {
		if imagePath != "" {
			url, err := uploadImage(ctx, m.pigeons, imagePath)
			if err != nil {
				return err
			}
			in.Images.Body = url
		}
		_, err := m.pigeons.Create(ctx, in)
		return err
	})
}

func (m Model) updatePigeonCmd(id string, updates domain.PigeonUpdate, images domain.PigeonImages, imagePath string) tea.Cmd {
	return runAction(m.ctx, actPigeonUpdate, func(ctx context.Context) error {
		if imagePath != "" {
			url, err := uploadImage(ctx, m.pigeons, imagePath)
			if err != nil {
				return err
			}
			images.Body = url
			updates.Images = &images
		}
		_, err := m.pigeons.Update(ctx, id, updates)
		return err
	})
}

func (m Model) deletePigeonCmd(id string) tea.Cmd {
	return runAction(m.ctx, actPigeonDelete, func(ctx context.Context) error {
		return m.pigeons.Delete(ctx, id)
	})
}

func uploadImage(ctx context.Context, store *state.PigeonStore, path string) (string, error) {
	path = expandHome(strings.TrimSpace(path))
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return store.UploadImage(ctx, api.File{Name: filepath.Base(path), Body: f})
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
