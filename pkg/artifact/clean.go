package artifact

import (
	"context"

	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/schedule"
	"github.com/pyrelab/firespread/pkg/simulate"
)

// CleanResult reports what a cleanup pass did.
type CleanResult struct {
	// Removed lists rasters that existed, matched, and were removed.
	// In dry-run mode these are the rasters that would have been removed.
	Removed []string

	// Skipped lists candidates that matched but did not exist.
	Skipped []string
}

// Candidates enumerates every raster a run over the plan could have left
// behind: the plan's outputs plus the transient rate-of-spread rasters.
// A crashed run leaves some prefix of this list in the mapset.
func Candidates(plan *schedule.Plan, rosBasename string) []string {
	if rosBasename == "" {
		rosBasename = simulate.DefaultROSBasename
	}
	out := plan.Outputs()
	return append(out, gis.ROSMapsFor(rosBasename).Names()...)
}

// Clean removes every candidate raster that matches and exists. Removal
// happens in one RemoveRasters call so a partial failure cannot leave the
// result list out of sync with the mapset.
func Clean(ctx context.Context, session gis.Session, candidates []string, m *Matcher, dryRun bool) (*CleanResult, error) {
	res := &CleanResult{}

	var doomed []string
	for _, name := range candidates {
		if !m.Match(name) {
			continue
		}
		found, err := session.RasterExists(ctx, name)
		if err != nil {
			return res, err
		}
		if !found {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		doomed = append(doomed, name)
	}

	if dryRun || len(doomed) == 0 {
		res.Removed = doomed
		return res, nil
	}

	if err := session.RemoveRasters(ctx, doomed...); err != nil {
		return res, err
	}
	res.Removed = doomed
	return res, nil
}
