// Package config reads and writes the casterly.yaml project file.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/casterly-dev/casterly/internal/model"
)

// FileName is the project file created by init.
const FileName = "casterly.yaml"

// Config represents the top-level casterly.yaml configuration.
type Config struct {
	Owner    string         `yaml:"owner"`
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Feeds    []Feed         `yaml:"feeds,omitempty"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"` // relative to the project directory unless absolute
}

// ImportConfig holds statement defaults used when a feed or flag doesn't
// override them.
type ImportConfig struct {
	HeaderLines  int  `yaml:"header_lines"`
	ReverseOrder bool `yaml:"reverse_order"`
}

// Feed maps statement files in import/ to an account.
type Feed struct {
	Name         string `yaml:"name"`
	Entity       string `yaml:"entity"`
	AccountID    int64  `yaml:"account_id"`
	HeaderLines  *int   `yaml:"header_lines,omitempty"`
	ReverseOrder *bool  `yaml:"reverse_order,omitempty"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// GitConfig is the identity used when init commits the project files.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a casterly.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(owner string) *Config {
	return &Config{
		Owner: owner,
		Database: DatabaseConfig{
			Path: "casterly.db",
		},
		Import: ImportConfig{
			HeaderLines:  1,
			ReverseOrder: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AuthorName:  cmp.Or(owner, "casterly"),
			AuthorEmail: "casterly@localhost",
		},
	}
}

// Validate checks feeds and log settings.
func (c *Config) Validate() error {
	if c.Import.HeaderLines < 0 {
		return fmt.Errorf("import.header_lines must not be negative")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log.format %q must be console or json", c.Log.Format)
	}

	seen := make(map[string]bool, len(c.Feeds))
	for i, f := range c.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: missing name", i+1)
		}
		key := strings.ToLower(f.Name)
		if seen[key] {
			return fmt.Errorf("feed %q: duplicate name", f.Name)
		}
		seen[key] = true
		if _, err := model.ParseEntity(f.Entity); err != nil {
			return fmt.Errorf("feed %q: %w", f.Name, err)
		}
		if f.AccountID <= 0 {
			return fmt.Errorf("feed %q: missing account_id", f.Name)
		}
		if f.HeaderLines != nil && *f.HeaderLines < 0 {
			return fmt.Errorf("feed %q: header_lines must not be negative", f.Name)
		}
	}
	return nil
}

// DatabasePath resolves the database path against the project directory.
func (c *Config) DatabasePath(dir string) string {
	p := c.Database.Path
	if p == "" {
		p = "casterly.db"
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Options returns the feed's header lines and order, falling back to d.
func (f Feed) Options(d ImportConfig) (headerLines int, reverseOrder bool) {
	headerLines, reverseOrder = d.HeaderLines, d.ReverseOrder
	if f.HeaderLines != nil {
		headerLines = *f.HeaderLines
	}
	if f.ReverseOrder != nil {
		reverseOrder = *f.ReverseOrder
	}
	return headerLines, reverseOrder
}

// LoadEnv loads environment variables from a .env file. An explicit path
// must exist; with no path, .env in the working directory is loaded if present.
func LoadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}
