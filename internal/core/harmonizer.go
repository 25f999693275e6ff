// Package core runs the harmonization pipeline: it loads the current and
// future architecture datasets, merges them into one graph of systems and
// integrations, classifies what changes, and publishes the result.
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core/ingest"
	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/driver"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/metrics"
	"github.com/agenthands/fuxi/internal/store"
	"github.com/agenthands/fuxi/internal/telemetry"
)

// DefaultProject is used when a run names no project.
const DefaultProject = "default"

type Options struct {
	Mode      model.Mode
	ProjectID string
}

// Result is one harmonization run. Graph is filtered by Mode; Full is what
// was persisted.
type Result struct {
	RunID             string                `json:"run_id"`
	ProjectID         string                `json:"project_id"`
	Mode              model.Mode            `json:"mode"`
	Graph             model.HarmonizedGraph `json:"graph"`
	Full              model.HarmonizedGraph `json:"-"`
	Stats             model.GraphStats      `json:"stats"`
	HasFuture         bool                  `json:"has_future"`
	DroppedReferences int                   `json:"dropped_references"`
	Conflicts         []model.Conflict      `json:"conflicts"`
	Coverage          []ingest.Coverage     `json:"coverage"`
	GraphPath         string                `json:"graph_path"`
	Duration          time.Duration         `json:"-"`
}

type Harmonizer struct {
	Config *config.Config
	// Optional sinks; nil disables them.
	Driver  driver.GraphDriver
	Views   *store.Views
	Metrics *metrics.Registry

	Telemetry *telemetry.Recorder
	Conflicts *telemetry.ConflictLog
	Sources   []ingest.SourceSpec

	now func() time.Time
}

func NewHarmonizer(cfg *config.Config, d driver.GraphDriver, views *store.Views, reg *metrics.Registry) *Harmonizer {
	return &Harmonizer{
		Config:    cfg,
		Driver:    d,
		Views:     views,
		Metrics:   reg,
		Telemetry: telemetry.NewRecorder(cfg.Data.Path(cfg.Data.TelemetryFile), cfg.Telemetry.SessionID, cfg.Telemetry.WorkspaceID),
		Conflicts: telemetry.NewConflictLog(cfg.Data.Path(cfg.Data.ConflictLog)),
		Sources:   ingest.DefaultSources(cfg.Data),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GraphPath is where the full graph is persisted.
func (h *Harmonizer) GraphPath() string {
	return h.Config.Data.Path(h.Config.Data.GraphFile)
}

// Harmonize runs the pipeline once. Unreadable sources count as empty. When
// the graph cannot be persisted the error is returned together with the
// result, which is still complete.
func (h *Harmonizer) Harmonize(ctx context.Context, opts Options) (*Result, error) {
	start := h.now()
	mode := opts.Mode
	if mode == "" {
		mode, _ = model.ParseMode(h.Config.Harmonization.DefaultMode)
	}
	projectID := opts.ProjectID
	if projectID == "" {
		projectID = DefaultProject
	}
	runID := uuid.New().String()

	log := logging.FromContext(ctx).With().
		Str("run_id", runID).
		Str("mode", string(mode)).
		Str("project_id", projectID).
		Logger()
	ctx = logging.WithLogger(ctx, &log)

	h.Telemetry.Record(ctx, telemetry.EventHarmonizationStart, map[string]any{
		"run_id":     runID,
		"mode":       mode,
		"project_id": projectID,
	})

	datasets, err := ingest.LoadAll(ctx, h.Config.Data.Root, h.Sources)
	if err != nil {
		h.Metrics.RecordRun(mode, h.now().Sub(start), model.GraphStats{}, 0, 0, err)
		return nil, err
	}
	coverage := ingest.CoverageReport(ctx, datasets, h.Config.Harmonization.CoverageWarnRatio)
	for _, c := range coverage {
		h.Metrics.RecordCoverage(c.Source, c.Ratio)
	}

	build := BuildGraph(ingest.Normalize(datasets), h.Config.Harmonization.EdgeMatchThreshold)
	h.Conflicts.Append(ctx, build.Conflicts)

	res := &Result{
		RunID:             runID,
		ProjectID:         projectID,
		Mode:              mode,
		Graph:             FilterByMode(build.Graph, mode),
		Full:              build.Graph,
		Stats:             build.Graph.Stats(),
		HasFuture:         build.HasFuture,
		DroppedReferences: build.DroppedReferences,
		Conflicts:         build.Conflicts,
		Coverage:          coverage,
		GraphPath:         h.GraphPath(),
	}
	if res.Conflicts == nil {
		res.Conflicts = []model.Conflict{}
	}

	var runErr error
	if err := WriteGraph(res.GraphPath, build.Graph); err != nil {
		runErr = fmt.Errorf("failed to persist graph: %w", err)
		log.Error().Err(err).Str("path", res.GraphPath).Msg("Failed to persist graph")
	}

	h.publish(ctx, projectID, build.Graph)

	res.Duration = h.now().Sub(start)
	h.Metrics.RecordRun(mode, res.Duration, res.Stats, res.DroppedReferences, len(res.Conflicts), runErr)
	h.Telemetry.Record(ctx, telemetry.EventHarmonizationComplete, completeEvent(res, runErr))

	log.Info().
		Int("systems", res.Stats.Systems).
		Int("integrations", res.Stats.Integrations).
		Int("returned_systems", len(res.Graph.Nodes)).
		Int("dropped_references", res.DroppedReferences).
		Dur("duration", res.Duration).
		Msg("Harmonization complete")

	return res, runErr
}

// IngestLucid parses a raw Lucid export, writes the cleaned records where the
// pipeline reads them, and stores a view of the diagram for projectID.
func (h *Harmonizer) IngestLucid(ctx context.Context, projectID string, r io.Reader) (model.DigitalEnterpriseView, error) {
	log := logging.FromContext(ctx)

	records, err := ingest.ParseLucidCSV(r)
	if err != nil {
		return model.DigitalEnterpriseView{}, fmt.Errorf("%w: %w", fuxierr.ErrInvalidInput, err)
	}
	if err := ingest.WriteLucidClean(h.Config.Data.Path(h.Config.Data.LucidClean), records); err != nil {
		return model.DigitalEnterpriseView{}, fmt.Errorf("failed to write lucid records: %w", err)
	}

	var raw []model.RawRecord
	for _, row := range ingest.LucidRows(records) {
		if rec, ok := ingest.NormalizeRow(row, model.SourceLucid); ok {
			raw = append(raw, rec)
		}
	}
	build := BuildGraph(raw, h.Config.Harmonization.EdgeMatchThreshold)

	view := model.DigitalEnterpriseView{
		ProjectID: projectID,
		Graph:     build.Graph,
		Stats:     build.Graph.Stats(),
		UpdatedAt: h.now(),
	}
	if h.Views != nil {
		if view, err = h.Views.Save(ctx, projectID, build.Graph); err != nil {
			return view, err
		}
	}

	h.Telemetry.Record(ctx, telemetry.EventLucidIngested, map[string]any{
		"project_id":         projectID,
		"records":            len(records),
		"systems":            view.Stats.Systems,
		"integrations":       view.Stats.Integrations,
		"dropped_references": build.DroppedReferences,
	})
	log.Info().Str("project_id", projectID).Int("records", len(records)).Msg("Lucid export ingested")
	return view, nil
}

// publish pushes the graph to the optional sinks. Failures are logged only.
func (h *Harmonizer) publish(ctx context.Context, projectID string, g model.HarmonizedGraph) {
	log := logging.FromContext(ctx)
	if h.Driver != nil {
		if err := driver.SyncGraph(ctx, h.Driver, projectID, g, h.now()); err != nil {
			log.Warn().Err(err).Msg("Failed to sync graph store")
		}
	}
	if h.Views != nil {
		if _, err := h.Views.Save(ctx, projectID, g); err != nil {
			log.Warn().Err(err).Msg("Failed to save digital enterprise view")
		}
	}
}

func completeEvent(res *Result, err error) map[string]any {
	coverage := make(map[string]float64, len(res.Coverage))
	warnings := []string{}
	for _, c := range res.Coverage {
		coverage[c.Source] = c.Ratio
		if c.Warning {
			warnings = append(warnings, fmt.Sprintf("low header coverage for %s: %.2f", c.Source, c.Ratio))
		}
	}
	data := map[string]any{
		"run_id":             res.RunID,
		"mode":               res.Mode,
		"project_id":         res.ProjectID,
		"systems":            res.Stats.Systems,
		"integrations":       res.Stats.Integrations,
		"added":              res.Stats.Added,
		"removed":            res.Stats.Removed,
		"modified":           res.Stats.Modified,
		"unchanged":          res.Stats.Unchanged,
		"returned_systems":   len(res.Graph.Nodes),
		"returned_edges":     len(res.Graph.Edges),
		"dropped_references": res.DroppedReferences,
		"conflicts":          len(res.Conflicts),
		"has_future":         res.HasFuture,
		"coverage":           coverage,
		"warnings":           warnings,
		"duration_ms":        res.Duration.Milliseconds(),
	}
	if err != nil {
		data["error"] = err.Error()
	}
	return data
}
