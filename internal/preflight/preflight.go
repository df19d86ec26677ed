package preflight

import (
	"context"
	"strings"

	"brecimport/internal/config"
	"brecimport/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to the configured backend.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("Recording directory", cfg.Scan.Dir)}

	switch cfg.Backend() {
	case config.BackendStore:
		results = append(results, CheckDatabaseFile("Catalog database", cfg.Store.Path))
	default:
		credentials := CheckCredentials("Catalog credentials", cfg.API.User, cfg.API.Password)
		results = append(results, credentials)
		if credentials.Passed {
			results = append(results, CheckCatalogAPI(ctx, cfg.API.URL, cfg.API.User, cfg.API.Password))
		}
	}
	return results
}

// Err folds failed results into one services.ErrSetup error, or nil.
func Err(results []Result) error {
	var failed []string
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result.Name+": "+result.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrSetup, "preflight", "", strings.Join(failed, "; "), nil)
}
