package preflight

import (
	"context"
	"fmt"

	"laughprep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every check that applies to the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}

	results = append(results, CheckFileReadable("Master labels", cfg.Paths.MasterLabels))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	for _, split := range cfg.Splits {
		layout := cfg.Layout(split)
		if cfg.Resample.Enabled {
			results = append(results, CheckDirectoryReadable(fmt.Sprintf("Split %s source", split.Name), layout.SourceDir))
		} else {
			results = append(results, CheckDirectoryReadable(fmt.Sprintf("Split %s converted", split.Name), layout.ConvertedDir))
		}
	}

	if len(cfg.Splits) > 0 && cfg.Preflight.MinFreeMiB > 0 {
		layout := cfg.Layout(cfg.Splits[0])
		results = append(results, CheckFreeSpace("Output free space", layout.ManifestDir, uint64(cfg.Preflight.MinFreeMiB)))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
