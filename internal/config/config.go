// Package config resolves where devark reads transcripts, where
// it keeps its data, and which backend it talks to.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devark-ai/devark/internal/api"
)

// Config holds all application configuration.
type Config struct {
	// APIBaseURL is the backend base URL.
	APIBaseURL string `json:"api_base_url,omitempty"`
	// ClaudeProjectDir is the transcript root.
	ClaudeProjectDir string `json:"claude_project_dir,omitempty"`
	// DataDir holds the token, sync state, and caches.
	DataDir string `json:"data_dir,omitempty"`
	// Browser overrides the platform browser command for the
	// login flow. Parsed as a shell-style command line.
	Browser string `json:"browser,omitempty"`
	// NoBrowser suppresses opening the browser on login.
	NoBrowser bool `json:"no_browser,omitempty"`

	// Multi-directory support (from config.json). When set,
	// these take precedence over ClaudeProjectDir. The env var
	// overrides with a single-element slice.
	ClaudeProjectDirs []string `json:"claude_project_dirs,omitempty"`
}

// Default returns a Config with default values.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf(
			"determining home directory: %w", err,
		)
	}
	return Config{
		APIBaseURL:       api.DefaultBaseURL,
		ClaudeProjectDir: filepath.Join(home, ".claude", "projects"),
		DataDir:          filepath.Join(home, ".devark"),
	}, nil
}

// Load builds a Config by layering: defaults < config file < env.
func Load() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	// Env must win over the file, but the data dir env var also
	// decides which file to read, so env is applied first and a
	// second pass keeps env values authoritative.
	cfg.loadEnv()
	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	cfg.loadEnv()
	return cfg, nil
}

// TokenPath is where the bearer token lives.
func (c *Config) TokenPath() string {
	return filepath.Join(c.DataDir, "token")
}

// StatePath is where sync bookkeeping lives.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "sync-state.json")
}

func (c *Config) configPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.configPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if file.APIBaseURL != "" {
		c.APIBaseURL = file.APIBaseURL
	}
	if file.ClaudeProjectDir != "" {
		c.ClaudeProjectDir = file.ClaudeProjectDir
	}
	if file.Browser != "" {
		c.Browser = file.Browser
	}
	if file.NoBrowser {
		c.NoBrowser = true
	}
	if len(file.ClaudeProjectDirs) > 0 {
		c.ClaudeProjectDirs = file.ClaudeProjectDirs
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("DEVARK_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("CLAUDE_PROJECTS_DIR"); v != "" {
		c.ClaudeProjectDir = v
		c.ClaudeProjectDirs = []string{v}
	}
	if v := os.Getenv("DEVARK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DEVARK_BROWSER"); v != "" {
		c.Browser = v
	}
	if os.Getenv("DEVARK_NO_BROWSER") != "" {
		c.NoBrowser = true
	}
}

// ResolveClaudeDirs returns the effective list of transcript
// roots. Precedence: env var (single) > config file array >
// default (single).
func (c *Config) ResolveClaudeDirs() []string {
	if len(c.ClaudeProjectDirs) > 0 {
		return c.ClaudeProjectDirs
	}
	if c.ClaudeProjectDir != "" {
		return []string{c.ClaudeProjectDir}
	}
	return nil
}
