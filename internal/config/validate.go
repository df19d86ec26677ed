package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	for _, ext := range c.Scan.Extensions {
		if ext == c.Scan.SidecarExt {
			return fmt.Errorf("scan.sidecar_ext %q must not be a recording extension", ext)
		}
	}
	if c.Scan.ContainerRoot != "" && !strings.HasPrefix(c.Scan.ContainerRoot, "/") {
		return errors.New("scan.container_root must be an absolute path")
	}
	return nil
}

func (c *Config) validateImport() error {
	switch c.Import.MetadataMode {
	case ModeSidecar, ModeFilename:
	default:
		return fmt.Errorf("import.metadata_mode must be %q or %q, got %q", ModeSidecar, ModeFilename, c.Import.MetadataMode)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAPI() error {
	if err := ensurePositiveMap(map[string]int{
		"api.check_timeout":   c.API.CheckTimeout,
		"api.create_timeout":  c.API.CreateTimeout,
		"api.verify_attempts": c.API.VerifyAttempts,
	}); err != nil {
		return err
	}
	if c.API.VerifyDelayMillis < 0 || c.API.SettleDelayMillis < 0 {
		return errors.New("api.verify_delay_ms and api.settle_delay_ms must not be negative")
	}
	if c.Backend() != BackendAPI {
		return nil
	}
	parsed, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.url must use http or https, got %q", c.API.URL)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
