package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SessionFile is the CLI's stored sign-in.
type SessionFile struct {
	Token     string    `yaml:"token"`
	Email     string    `yaml:"email,omitempty"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// LoadSession returns the stored session, or nil when signed out.
func LoadSession(basePath string) (*SessionFile, error) {
	data, err := os.ReadFile(SessionFilePath(basePath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var s SessionFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

// Expired reports whether the token has passed its expiry.
func (s *SessionFile) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Save writes the session with owner-only permissions.
func (s *SessionFile) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.WriteFile(SessionFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// ClearSession removes the stored session.
func ClearSession(basePath string) error {
	err := os.Remove(SessionFilePath(basePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
