// Package tokenstore persists the bearer token between runs.
// The token lives under the fixed key "token" in <data_dir>/session.toml.
package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// FileName is the session file name inside the data directory.
const FileName = "session.toml"

type session struct {
	Token string `toml:"token"`
}

// File is a token store backed by a TOML file. The zero value is not usable;
// call Open.
type File struct {
	mu    sync.RWMutex
	path  string
	token string
}

// Open loads the token stored at path. A missing or unreadable file yields an
// empty store rather than an error; only an empty path fails.
func Open(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("token path is empty")
	}
	f := &File{path: path}
	var s session
	if bytes, err := os.ReadFile(path); err == nil && toml.Unmarshal(bytes, &s) == nil {
		f.token = strings.TrimSpace(s.Token)
	}
	return f, nil
}

// Path returns the session file path.
func (f *File) Path() string {
	return f.path
}

// Token returns the current token, empty when none is stored.
func (f *File) Token() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.token
}

// Save persists token, replacing any previous value.
func (f *File) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	bytes, err := toml.Marshal(session{Token: token})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := writeAtomic(f.path, bytes); err != nil {
		return err
	}
	f.token = token
	return nil
}

// Clear forgets the token and removes the session file.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.token = ""
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.toml")
	if err != nil {
		return fmt.Errorf("create temp session: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}

// Memory is an in-process token store. The zero value is ready to use.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory returns a Memory store holding token.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

// Token returns the current token.
func (m *Memory) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Save replaces the token.
func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear forgets the token.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
