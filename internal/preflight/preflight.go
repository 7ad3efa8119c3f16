package preflight

import (
	"context"

	"mediavault/internal/config"
	"mediavault/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	if cfg.Extractor.RemoteAPIURL != "" {
		results = append(results, CheckRemoteExtractor(ctx, cfg.Extractor.RemoteAPIURL))
	}
	results = append(results, CheckBlobStore(cfg.BlobStore.URL))

	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		}
		if !status.Available && status.Optional {
			result.Passed = true
		}
		results = append(results, result)
	}

	return results
}

// CheckSystemDeps evaluates the external binaries mediavault shells out to.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Extractor.YtdlpBinary,
			Description: "Required for fallback media extraction",
		},
	}
	return deps.CheckBinaries(requirements)
}
