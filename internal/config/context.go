package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Context is the CLI selection that persists between invocations: the
// fixture commands operate on when none is named, and the user to view
// it as.
type Context struct {
	// FixtureID is the currently selected fixture.
	FixtureID string `yaml:"fixture,omitempty"`
	// FixtureName is the human-readable fixture name (for display).
	FixtureName string `yaml:"fixture_name,omitempty"`
	// UserID overrides the fixture's own user_id when non-zero.
	UserID int64 `yaml:"user_id,omitempty"`
	// UpdatedAt is when the context was last modified.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty returns true if no context is set.
func (c *Context) IsEmpty() bool {
	return c.FixtureID == "" && c.UserID == 0
}

// HasFixture returns true if a fixture is selected.
func (c *Context) HasFixture() bool {
	return c.FixtureID != ""
}

// Clear removes all context.
func (c *Context) Clear() {
	c.FixtureID = ""
	c.FixtureName = ""
	c.UserID = 0
	c.UpdatedAt = time.Now()
}

// SetFixture selects a fixture. The user override belongs to the old
// fixture's realm, so it is dropped.
func (c *Context) SetFixture(id, name string) {
	c.FixtureID = id
	c.FixtureName = name
	c.UserID = 0
	c.UpdatedAt = time.Now()
}

// SetUser sets the user override.
func (c *Context) SetUser(userID int64) {
	c.UserID = userID
	c.UpdatedAt = time.Now()
}

// String returns a human-readable representation of the context.
func (c *Context) String() string {
	if c.IsEmpty() {
		return "(none)"
	}
	result := ""
	if c.HasFixture() {
		result = c.FixtureName
		if result == "" {
			result = shortID(c.FixtureID)
		}
	}
	if c.UserID != 0 {
		result += fmt.Sprintf("@%d", c.UserID)
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ContextStore manages loading and saving context.
type ContextStore struct {
	path string
	mu   sync.RWMutex
}

// NewContextStore creates a new context store.
// If path is empty, uses the default path (~/.config/tally/context.yaml).
func NewContextStore(path string) *ContextStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "tally", "context.yaml")
	}
	return &ContextStore{path: path}
}

// ContextStoreFor returns a store inside the configured config dir.
func ContextStoreFor(cfg *Config) *ContextStore {
	if cfg == nil || cfg.Global.ConfigDir == "" {
		return NewContextStore("")
	}
	return NewContextStore(filepath.Join(cfg.Global.ConfigDir, "context.yaml"))
}

// Path returns the context file path.
func (s *ContextStore) Path() string {
	return s.path
}

// Load reads the context from disk.
// Returns an empty context if the file doesn't exist.
func (s *ContextStore) Load() (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := &Context{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ctx, nil
		}
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	if err := yaml.Unmarshal(data, ctx); err != nil {
		return nil, fmt.Errorf("failed to parse context file: %w", err)
	}

	return ctx, nil
}

// Save writes the context to disk.
func (s *ContextStore) Save(ctx *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create context directory: %w", err)
	}

	data, err := yaml.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize context: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	return nil
}

// Clear removes the context file.
func (s *ContextStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove context file: %w", err)
	}
	return nil
}
