package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// Normalize expands paths, applies environment fallbacks and canonicalizes
// enumerated values. Load calls it; the CLI calls it again after applying
// flag overrides.
func (c *Config) Normalize() error {
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeImport()
	c.normalizeAPI()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeScan() error {
	var err error
	if c.Scan.Dir, err = expandPath(strings.TrimSpace(c.Scan.Dir)); err != nil {
		return fmt.Errorf("scan.dir: %w", err)
	}
	if root := strings.TrimSpace(c.Scan.ContainerRoot); root != "" {
		c.Scan.ContainerRoot = path.Clean(root)
	} else {
		c.Scan.ContainerRoot = ""
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = append([]string(nil), defaultExtensions...)
	} else {
		exts := make([]string, 0, len(c.Scan.Extensions))
		seen := make(map[string]struct{}, len(c.Scan.Extensions))
		for _, ext := range c.Scan.Extensions {
			normalized := normalizeExt(ext)
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			exts = append(exts, normalized)
		}
		c.Scan.Extensions = exts
	}
	c.Scan.SidecarExt = normalizeExt(c.Scan.SidecarExt)
	if c.Scan.SidecarExt == "" {
		c.Scan.SidecarExt = defaultSidecarExt
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (c *Config) normalizeImport() {
	c.Import.MetadataMode = strings.ToLower(strings.TrimSpace(c.Import.MetadataMode))
	if c.Import.MetadataMode == "" {
		c.Import.MetadataMode = defaultMetadataMode
	}
	c.Import.Timezone = strings.TrimSpace(c.Import.Timezone)
	if c.Import.Timezone == "" {
		c.Import.Timezone = defaultTimezone
	}
	if c.Import.MaxErrorLines <= 0 {
		c.Import.MaxErrorLines = defaultMaxErrorLines
	}
}

func (c *Config) normalizeAPI() {
	if value, ok := lookupEnv("BRECIMPORT_URL", "GOBUP_URL"); ok && c.API.URL == defaultAPIURL {
		c.API.URL = value
	}
	if c.API.User == "" {
		if value, ok := lookupEnv("BRECIMPORT_USER", "GOBUP_USER"); ok {
			c.API.User = value
		}
	}
	if c.API.Password == "" {
		if value, ok := lookupEnv("BRECIMPORT_PASS", "GOBUP_PASS"); ok {
			c.API.Password = value
		}
	}
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		c.API.URL = defaultAPIURL
	}
	c.API.User = strings.TrimSpace(c.API.User)
	if c.API.RequestsPerSecond < 0 {
		c.API.RequestsPerSecond = 0
	}
}

func (c *Config) normalizeStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		if value, ok := lookupEnv("BRECIMPORT_DB"); ok {
			c.Store.Path = value
		}
	}
	var err error
	if c.Store.Path, err = expandPath(strings.TrimSpace(c.Store.Path)); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}
