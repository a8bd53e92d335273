package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Credentials is the access/refresh token pair identifying a session to the
// backend. Both tokens are opaque to the console.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether the pair can authenticate requests.
func (c Credentials) Valid() bool {
	return c.AccessToken != ""
}

// CredentialStore persists the credential pair across process restarts.
// It is the only session state that survives a restart; everything else is
// rebuilt from the backend.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// FileStore keeps the credential pair in a JSON file with owner-only
// permissions. A missing file reads as "no credentials".
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore constructs a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored pair.
func (fs *FileStore) Load() (Credentials, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("session: read credentials: %w", err)
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("session: decode credentials: %w", err)
	}
	return creds, nil
}

// Save writes the pair, creating the parent directory when needed.
func (fs *FileStore) Save(creds Credentials) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("session: create credentials dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write credentials: %w", err)
	}
	return nil
}

// Clear removes the stored pair. Clearing an absent file is not an error.
func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: clear credentials: %w", err)
	}
	return nil
}

// AccessToken implements the transport's token source: the pair is re-read
// from durable storage on every outgoing request.
func (fs *FileStore) AccessToken() string {
	creds, err := fs.Load()
	if err != nil {
		return ""
	}
	return creds.AccessToken
}
