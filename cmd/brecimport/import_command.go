package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"brecimport/internal/catalog"
	"brecimport/internal/catalog/remote"
	"brecimport/internal/catalog/sqlitestore"
	"brecimport/internal/config"
	"brecimport/internal/importer"
	"brecimport/internal/logging"
	"brecimport/internal/preflight"
	"brecimport/internal/recording"
	"brecimport/internal/services"
)

// runImport performs one import pass. Per-file failures only show up in the
// summary; setup failures and interruption are returned as errors.
func runImport(cmd *cobra.Command, cfg *config.Config) error {
	if strings.TrimSpace(cfg.Scan.Dir) == "" {
		return services.Wrap(services.ErrSetup, "setup", "", "--dir is required", nil)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx := services.WithRunID(cmd.Context(), uuid.NewString())
	if cfg.Backend() == config.BackendAPI {
		if err := promptCredentials(cmd.InOrStdin(), cmd.ErrOrStderr(), cfg); err != nil {
			return err
		}
	}
	if err := preflight.Err(preflight.RunAll(ctx, cfg)); err != nil {
		return err
	}

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			logger.Warn("close catalog backend", logging.Error(closeErr))
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return services.Wrap(services.ErrSetup, "setup", "timezone", "", err)
	}
	extractor, err := recording.NewExtractor(recording.Options{
		Mode:          cfg.Import.MetadataMode,
		SidecarExt:    cfg.Scan.SidecarExt,
		ScanRoot:      cfg.Scan.Dir,
		ContainerRoot: cfg.Scan.ContainerRoot,
		Location:      loc,
	})
	if err != nil {
		return services.Wrap(services.ErrSetup, "setup", "extractor", "", err)
	}

	paths, err := recording.Scan(cfg.Scan.Dir, cfg.Scan.Extensions)
	if err != nil {
		return services.Wrap(services.ErrSetup, "setup", "scan", "", err)
	}

	im, err := importer.New(extractor, backend, importer.Options{
		CheckTimeout:  cfg.CheckTimeout(),
		CreateTimeout: cfg.CreateTimeout(),
		MaxErrors:     cfg.Import.MaxErrorLines,
	}, logger)
	if err != nil {
		return err
	}

	logging.WithContext(ctx, logger).Info("import configured",
		logging.String("backend", cfg.Backend()),
		logging.String("dir", cfg.Scan.Dir),
		logging.String("mode", cfg.Import.MetadataMode),
	)
	summary, runErr := im.Run(ctx, paths)
	printSummary(cmd.OutOrStdout(), summary)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted; the summary covers files processed so far.")
		}
		return runErr
	}
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Backend, error) {
	switch cfg.Backend() {
	case config.BackendStore:
		store, err := sqlitestore.Open(ctx, cfg.Store.Path, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		client, err := remote.NewClient(remote.Config{
			BaseURL:           cfg.API.URL,
			User:              cfg.API.User,
			Password:          cfg.API.Password,
			CheckTimeout:      cfg.CheckTimeout(),
			CreateTimeout:     cfg.CreateTimeout(),
			VerifyAttempts:    cfg.API.VerifyAttempts,
			VerifyDelay:       cfg.VerifyDelay(),
			SettleDelay:       cfg.SettleDelay(),
			RequestsPerSecond: cfg.API.RequestsPerSecond,
		}, remote.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
