package main

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"brecimport/internal/config"
)

// cliFlags holds raw flag values; only flags the user set override the config file.
type cliFlags struct {
	config        string
	dir           string
	url           string
	user          string
	pass          string
	db            string
	mode          string
	containerRoot string
	logLevel      string
	logFormat     string
}

type commandContext struct {
	flags *cliFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *cliFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.applyFlags(cmd, cfg)
		if err := cfg.Normalize(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}
	if changed("dir") {
		cfg.Scan.Dir = c.flags.dir
	}
	if changed("url") {
		cfg.API.URL = c.flags.url
	}
	if changed("user") {
		cfg.API.User = c.flags.user
	}
	if changed("pass") {
		cfg.API.Password = c.flags.pass
	}
	if changed("db") {
		cfg.Store.Path = c.flags.db
	}
	if changed("mode") {
		cfg.Import.MetadataMode = c.flags.mode
	}
	if changed("container-root") {
		cfg.Scan.ContainerRoot = c.flags.containerRoot
	}
	if changed("log-format") {
		cfg.Logging.Format = c.flags.logFormat
	}
	switch {
	case changed("log-level"):
		cfg.Logging.Level = c.flags.logLevel
	case os.Getenv("DEBUG") != "":
		cfg.Logging.Level = "debug"
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
