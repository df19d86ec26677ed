package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"brecimport/internal/config"
)

func TestLoadDefaultConfigUsesEnvCredentials(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BRECIMPORT_USER", "root")
	t.Setenv("BRECIMPORT_PASS", "secret")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.API.User != "root" || cfg.API.Password != "secret" {
		t.Fatalf("expected credentials from env, got %q/%q", cfg.API.User, cfg.API.Password)
	}
	if cfg.API.URL != "http://localhost:22380/api" {
		t.Fatalf("unexpected api url: %q", cfg.API.URL)
	}
	if cfg.Backend() != config.BackendAPI {
		t.Fatalf("expected api backend by default, got %q", cfg.Backend())
	}
	if cfg.Scan.ContainerRoot != "/rec" {
		t.Fatalf("unexpected container root: %q", cfg.Scan.ContainerRoot)
	}
	if got := strings.Join(cfg.Scan.Extensions, ","); got != ".flv,.mp4,.mkv" {
		t.Fatalf("unexpected extensions: %q", got)
	}
	if cfg.Import.MetadataMode != config.ModeSidecar {
		t.Fatalf("unexpected metadata mode: %q", cfg.Import.MetadataMode)
	}
	if cfg.Import.MaxErrorLines != 10 {
		t.Fatalf("unexpected max error lines: %d", cfg.Import.MaxErrorLines)
	}
	if cfg.API.VerifyAttempts != 3 {
		t.Fatalf("unexpected verify attempts: %d", cfg.API.VerifyAttempts)
	}
	if cfg.CheckTimeout() != 10*time.Second || cfg.CreateTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeouts: %s %s", cfg.CheckTimeout(), cfg.CreateTimeout())
	}
}

func TestLoadLegacyEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GOBUP_URL", "http://gobup.local:12380/api/")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.URL != "http://gobup.local:12380/api" {
		t.Fatalf("expected legacy env url with trailing slash trimmed, got %q", cfg.API.URL)
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	payload := struct {
		Scan struct {
			Dir        string   `toml:"dir"`
			Extensions []string `toml:"extensions"`
		} `toml:"scan"`
		Import struct {
			MetadataMode string `toml:"metadata_mode"`
			Timezone     string `toml:"timezone"`
		} `toml:"import"`
		Store struct {
			Path string `toml:"path"`
		} `toml:"store"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}{}
	payload.Scan.Dir = "~/recordings"
	payload.Scan.Extensions = []string{"FLV", ".flv", " mp4 "}
	payload.Import.MetadataMode = "Filename"
	payload.Import.Timezone = "Asia/Shanghai"
	payload.Store.Path = "~/data/gobup.db"
	payload.Logging.Format = "JSON"

	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected explicit config path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Scan.Dir != filepath.Join(tempHome, "recordings") {
		t.Fatalf("unexpected scan dir: %q", cfg.Scan.Dir)
	}
	if got := strings.Join(cfg.Scan.Extensions, ","); got != ".flv,.mp4" {
		t.Fatalf("expected normalized, deduplicated extensions, got %q", got)
	}
	if cfg.Import.MetadataMode != config.ModeFilename {
		t.Fatalf("unexpected metadata mode: %q", cfg.Import.MetadataMode)
	}
	if cfg.Store.Path != filepath.Join(tempHome, "data", "gobup.db") {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
	if cfg.Backend() != config.BackendStore {
		t.Fatalf("expected store backend, got %q", cfg.Backend())
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location returned error: %v", err)
	}
	if loc.String() != "Asia/Shanghai" {
		t.Fatalf("unexpected location: %s", loc)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"mode", func(c *config.Config) { c.Import.MetadataMode = "xml" }, "import.metadata_mode"},
		{"timezone", func(c *config.Config) { c.Import.Timezone = "Mars/Olympus" }, "import.timezone"},
		{"timeout", func(c *config.Config) { c.API.CheckTimeout = 0 }, "api.check_timeout"},
		{"attempts", func(c *config.Config) { c.API.VerifyAttempts = 0 }, "api.verify_attempts"},
		{"scheme", func(c *config.Config) { c.API.URL = "ftp://host" }, "api.url"},
		{"sidecar", func(c *config.Config) { c.Scan.SidecarExt = ".flv" }, "scan.sidecar_ext"},
		{"container", func(c *config.Config) { c.Scan.ContainerRoot = "rec" }, "scan.container_root"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in %q", tc.name, tc.want, err.Error())
		}
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Import.MetadataMode != config.ModeSidecar {
		t.Fatalf("unexpected sample metadata mode: %q", cfg.Import.MetadataMode)
	}
}

func TestNormalizeContainerRoot(t *testing.T) {
	cases := map[string]string{
		"/":      "/",
		"/rec/":  "/rec",
		" /rec ": "/rec",
		"":       "",
	}
	for input, want := range cases {
		cfg := config.Default()
		cfg.Scan.ContainerRoot = input
		if err := cfg.Normalize(); err != nil {
			t.Fatalf("Normalize(%q): %v", input, err)
		}
		if cfg.Scan.ContainerRoot != want {
			t.Fatalf("container root %q normalized to %q, want %q", input, cfg.Scan.ContainerRoot, want)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate(%q): %v", input, err)
		}
	}
}
