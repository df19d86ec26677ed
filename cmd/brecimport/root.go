package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:   "brecimport --dir <recordings> (--url <api> | --db <catalog.db>)",
		Short: "Import recorder output into the recording catalog",
		Long: `Scan a recorder output directory and register every recording the
catalog does not know yet. Files are matched to rooms and broadcast
sessions from their metadata sidecar or file name; already imported
files are skipped, so the command can be re-run safely.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			return runImport(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "Recorder output directory to scan")
	rootCmd.Flags().StringVar(&flags.url, "url", "", "Catalog API base URL (network mode)")
	rootCmd.Flags().StringVar(&flags.user, "user", "", "Catalog API user (or BRECIMPORT_USER)")
	rootCmd.Flags().StringVar(&flags.pass, "pass", "", "Catalog API password (or BRECIMPORT_PASS)")
	rootCmd.Flags().StringVar(&flags.db, "db", "", "Catalog database file (store mode; must exist)")
	rootCmd.Flags().StringVar(&flags.mode, "mode", "", "Metadata source: sidecar or filename")
	rootCmd.Flags().StringVar(&flags.containerRoot, "container-root", "", "Path prefix the catalog sees in place of --dir")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
