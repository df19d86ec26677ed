package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"brecimport/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration and show the import it describes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			// Read the file back so the summary reflects env fallbacks too.
			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("load sample config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			describeConfig(out, cfg)
			for _, step := range missingSettings(cfg) {
				fmt.Fprintf(out, "  - %s\n", step)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			describeConfig(out, cfg)
			if missing := missingSettings(cfg); len(missing) > 0 {
				fmt.Fprintln(out, "Configuration valid, but an import still needs:")
				for _, step := range missing {
					fmt.Fprintf(out, "  - %s\n", step)
				}
				return nil
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func configTarget(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return defaultPath, nil
	}
	expanded, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

// describeConfig prints which catalog backend an import would use and how
// recordings are mapped into it.
func describeConfig(out io.Writer, cfg *config.Config) {
	switch cfg.Backend() {
	case config.BackendStore:
		fmt.Fprintf(out, "Backend: store (%s)\n", cfg.Store.Path)
	default:
		fmt.Fprintf(out, "Backend: api (%s)\n", cfg.API.URL)
	}
	if cfg.Scan.Dir != "" {
		fmt.Fprintf(out, "Recording directory: %s\n", cfg.Scan.Dir)
	}
	if cfg.Scan.ContainerRoot == "" {
		fmt.Fprintln(out, "Container root: none, host paths are stored")
	} else {
		fmt.Fprintf(out, "Container root: %s\n", cfg.Scan.ContainerRoot)
	}
	fmt.Fprintf(out, "Metadata mode: %s\n", cfg.Import.MetadataMode)
}

// missingSettings lists what must still be supplied, by file, env or flag,
// before the selected backend can run.
func missingSettings(cfg *config.Config) []string {
	var missing []string
	if cfg.Scan.Dir == "" {
		missing = append(missing, "scan.dir or --dir")
	}
	if cfg.Backend() == config.BackendAPI && (cfg.API.User == "" || cfg.API.Password == "") {
		missing = append(missing, "api.user and api.password (or BRECIMPORT_USER/BRECIMPORT_PASS), or store.path for store mode")
	}
	return missing
}
