package testsupport

import (
	"path/filepath"
	"testing"

	"brecimport/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The scan root is <tmp>/recordings and the container root mirrors it under /rec.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Scan.Dir = filepath.Join(base, "recordings")
	cfgVal.Import.Timezone = "UTC"
	cfgVal.API.URL = "http://127.0.0.1:0/api"
	cfgVal.API.User = "admin"
	cfgVal.API.Password = "secret"
	cfgVal.API.VerifyDelayMillis = 1
	cfgVal.API.SettleDelayMillis = 0
	cfgVal.Logging.File = filepath.Join(base, "logs", "brecimport.log")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStore switches the config to the direct database backend.
func WithStore(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Path = path
	}
}

// WithAPI points the config at an ingestion endpoint.
func WithAPI(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.URL = url
	}
}

// WithMetadataMode overrides import.metadata_mode.
func WithMetadataMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.MetadataMode = mode
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Scan.Dir)
}
