// Package auth stores login sessions (cookies and headers) for the sites the
// scraper visits, in the OS keyring or in a private directory when no keyring
// is reachable.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zalando/go-keyring"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "goodscrawl"
	// FallbackDir is the directory for file-based session storage, relative to the home directory
	FallbackDir = ".goodscrawl/sessions"

	manifestKey = "_manifest"
)

// ErrSessionExpired is returned by Load for a session past its expiry
var ErrSessionExpired = errors.New("session expired")

// SessionData represents stored authentication session
type SessionData struct {
	Name      string            `json:"name"`
	URL       string            `json:"url"`
	Cookies   []Cookie          `json:"cookies"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Expired reports whether the session has an expiry before now
func (s *SessionData) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// HTTPCookies converts the stored cookies for the fetcher and the browser page
func (s *SessionData) HTTPCookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}

// Store saves sessions in the OS keyring, or as 0600 JSON files under dir
// when file storage is in use.
type Store struct {
	dir     string
	useFile bool
	now     func() time.Time
}

// NewStore picks keyring storage when the keyring accepts a probe write, and
// file storage under the home directory otherwise (Codespaces, CI).
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return &Store{
		dir:     filepath.Join(home, FallbackDir),
		useFile: !keyringUsable(),
		now:     time.Now,
	}, nil
}

// NewFileStore returns a store that keeps sessions as files under dir
func NewFileStore(dir string) *Store {
	return &Store{dir: dir, useFile: true, now: time.Now}
}

func keyringUsable() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return false
	}
	const probe = "_test_keyring_access_"
	if err := keyring.Set(KeyringService, probe, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, probe)
	return true
}

// Backend names the storage in use, for display
func (s *Store) Backend() string {
	if s.useFile {
		return "file:" + s.dir
	}
	return "keyring"
}

func (s *Store) path(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid session name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Save stores a session under its name, replacing any previous one
func (s *Store) Save(session *SessionData) error {
	if session.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if s.useFile {
		path, err := s.path(session.Name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return s.updateManifest(session.Name, true)
}

// Load returns a stored session. An expired session yields ErrSessionExpired.
func (s *Store) Load(name string) (*SessionData, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	var data []byte
	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get session path: %w", err)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
	} else {
		raw, err := keyring.Get(KeyringService, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
		data = []byte(raw)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("session %q: %w", name, ErrSessionExpired)
	}
	return &session, nil
}

// Delete removes a session. Deleting a missing file session is not an error.
func (s *Store) Delete(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return s.updateManifest(name, false)
}

// List returns the stored session names, sorted
func (s *Store) List() ([]string, error) {
	if s.useFile {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}
		sessions := []string{}
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
				sessions = append(sessions, strings.TrimSuffix(entry.Name(), ".json"))
			}
		}
		slices.Sort(sessions)
		return sessions, nil
	}

	// the keyring cannot enumerate entries, so names are tracked in a manifest
	manifest, err := keyring.Get(KeyringService, manifestKey)
	if err != nil {
		return []string{}, nil
	}
	var sessions []string
	if err := json.Unmarshal([]byte(manifest), &sessions); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}
	slices.Sort(sessions)
	return sessions, nil
}

func (s *Store) updateManifest(name string, add bool) error {
	sessions, _ := s.List()
	sessions = slices.DeleteFunc(sessions, func(n string) bool { return n == name })
	if add {
		sessions = append(sessions, name)
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, manifestKey, string(data))
}
