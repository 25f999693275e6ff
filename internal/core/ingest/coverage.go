package ingest

import (
	"context"
	"math"

	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/logging"
)

// Coverage reports how many of the expected concerns a source's headers
// provide.
type Coverage struct {
	Source  string       `json:"source"`
	Origin  model.Source `json:"origin"`
	Present bool         `json:"present"`
	Rows    int          `json:"rows"`
	Ratio   float64      `json:"ratio"`
	Missing []Concern    `json:"missing,omitempty"`
	Warning bool         `json:"warning,omitempty"`
}

// HeaderCoverage computes coverage for one dataset.
func HeaderCoverage(ds Dataset, warnRatio float64) Coverage {
	cov := Coverage{
		Source:  ds.Spec.Name,
		Origin:  ds.Spec.Origin,
		Present: ds.Present,
		Rows:    len(ds.Rows),
	}
	if !ds.Present {
		return cov
	}

	have := make(map[string]struct{}, len(ds.Headers))
	for _, h := range ds.Headers {
		have[h] = struct{}{}
	}

	found := 0
	for _, c := range Concerns {
		matched := false
		for _, candidate := range Candidates[c] {
			if _, ok := have[candidate]; ok {
				matched = true
				break
			}
		}
		if matched {
			found++
		} else {
			cov.Missing = append(cov.Missing, c)
		}
	}

	cov.Ratio = math.Round(float64(found)/float64(len(Concerns))*100) / 100
	cov.Warning = cov.Ratio < warnRatio
	return cov
}

// CoverageReport computes coverage for every dataset and logs a warning for
// present sources below warnRatio.
func CoverageReport(ctx context.Context, datasets []Dataset, warnRatio float64) []Coverage {
	log := logging.FromContext(ctx)
	out := make([]Coverage, 0, len(datasets))
	for _, ds := range datasets {
		cov := HeaderCoverage(ds, warnRatio)
		if cov.Warning {
			missing := make([]string, len(cov.Missing))
			for i, m := range cov.Missing {
				missing[i] = string(m)
			}
			log.Warn().
				Str("source", cov.Source).
				Float64("coverage", cov.Ratio).
				Strs("missing", missing).
				Msg("Low header coverage")
		}
		out = append(out, cov)
	}
	return out
}
