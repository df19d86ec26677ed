package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Backend names accepted by Config.Backend.
const (
	BackendAPI   = "api"
	BackendStore = "store"
)

// Metadata modes accepted by import.metadata_mode.
const (
	ModeSidecar  = "sidecar"
	ModeFilename = "filename"
)

// Scan describes the recording directory and how its paths map into the catalog.
type Scan struct {
	Dir           string   `toml:"dir"`
	ContainerRoot string   `toml:"container_root"`
	Extensions    []string `toml:"extensions"`
	SidecarExt    string   `toml:"sidecar_ext"`
}

// Import controls how recordings are identified and how results are reported.
type Import struct {
	MetadataMode  string `toml:"metadata_mode"`
	Timezone      string `toml:"timezone"`
	MaxErrorLines int    `toml:"max_error_lines"`
}

// API contains settings for the HTTP ingestion backend.
type API struct {
	URL               string  `toml:"url"`
	User              string  `toml:"user"`
	Password          string  `toml:"password"`
	CheckTimeout      int     `toml:"check_timeout"`
	CreateTimeout     int     `toml:"create_timeout"`
	VerifyAttempts    int     `toml:"verify_attempts"`
	VerifyDelayMillis int     `toml:"verify_delay_ms"`
	SettleDelayMillis int     `toml:"settle_delay_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Store contains settings for the direct SQLite backend.
type Store struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for brecimport.
//
// Configuration sections by subsystem:
//   - Scan: recording root, container path rewrite, extensions, sidecars
//   - Import: metadata source priority, time zone, summary size
//   - API: ingestion endpoint credentials, timeouts, verification policy
//   - Store: catalog database file for direct mode
//   - Logging: log format, level, and optional file
type Config struct {
	Scan    Scan    `toml:"scan"`
	Import  Import  `toml:"import"`
	API     API     `toml:"api"`
	Store   Store   `toml:"store"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/brecimport/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("brecimport.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Backend reports which catalog backend the configuration selects. A store
// path always wins; otherwise the HTTP ingestion API is used.
func (c *Config) Backend() string {
	if strings.TrimSpace(c.Store.Path) != "" {
		return BackendStore
	}
	return BackendAPI
}

// Location resolves import.timezone, used to interpret timestamps embedded in
// recording file names.
func (c *Config) Location() (*time.Location, error) {
	switch tz := strings.TrimSpace(c.Import.Timezone); tz {
	case "", "Local", "local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("import.timezone: %w", err)
		}
		return loc, nil
	}
}

// CheckTimeout is the per-call timeout for existence queries.
func (c *Config) CheckTimeout() time.Duration {
	return time.Duration(c.API.CheckTimeout) * time.Second
}

// CreateTimeout is the per-call timeout for ingestion requests.
func (c *Config) CreateTimeout() time.Duration {
	return time.Duration(c.API.CreateTimeout) * time.Second
}

// VerifyDelay is the fixed pause between verification polls.
func (c *Config) VerifyDelay() time.Duration {
	return time.Duration(c.API.VerifyDelayMillis) * time.Millisecond
}

// SettleDelay is the pause after an accepted ingestion before the first poll.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.API.SettleDelayMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
