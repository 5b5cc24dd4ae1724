package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UserConfig holds the preferences kept in ~/.yafc/config.json
type UserConfig struct {
	// DefaultPage is used by page commands when no page is named
	DefaultPage string `json:"default_page,omitempty"`

	// CatalogFile is the document imported last
	CatalogFile string `json:"catalog_file,omitempty"`
}

// UserConfigHandler reads and updates the user preference file
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler uses ~/.yafc
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".yafc"))
}

// NewUserConfigHandlerAt stores config.json inside dir, creating it if needed
func NewUserConfigHandlerAt(dir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: filepath.Join(dir, "config.json")}, nil
}

// Load returns an empty config when the file does not exist yet
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config %s: %w", h.configPath, err)
	}
	return &cfg, nil
}

// Save replaces the file through a rename so a crash never leaves half a document
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp := h.configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	if err := os.Rename(tmp, h.configPath); err != nil {
		return fmt.Errorf("failed to replace user config: %w", err)
	}
	return nil
}

func (h *UserConfigHandler) update(change func(*UserConfig)) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	change(cfg)
	return h.Save(cfg)
}

// SetDefaultPage remembers the page used when none is named; "" clears it
func (h *UserConfigHandler) SetDefaultPage(name string) error {
	return h.update(func(cfg *UserConfig) { cfg.DefaultPage = name })
}

// SetCatalogFile remembers the last imported catalog document
func (h *UserConfigHandler) SetCatalogFile(path string) error {
	return h.update(func(cfg *UserConfig) { cfg.CatalogFile = path })
}

// GetConfigPath returns the path of config.json
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
