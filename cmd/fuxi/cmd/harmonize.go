package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/agenthands/fuxi/internal/core"
	"github.com/agenthands/fuxi/internal/core/inference"
	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/validation"
)

var (
	runMode    string
	runProject string
	runFormat  string
	threshold  float64
	useAI      bool
)

var harmonizeCmd = &cobra.Command{
	Use:   "harmonize",
	Short: "Run the harmonization pipeline and print the graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req := validation.HarmonizeRequest{Mode: runMode, ProjectID: runProject}
		if err := validation.ValidateHarmonizeRequest(&req); err != nil {
			return err
		}

		ctx := cmd.Context()
		c, cleanup, err := components(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := c.Harmonizer.Harmonize(ctx, core.Options{Mode: model.Mode(runMode), ProjectID: runProject})
		if res == nil {
			return err
		}
		if err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Graph was not persisted")
		}
		return render(cmd.OutOrStdout(), runFormat, res)
	},
}

var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "Suggest integrations missing from the harmonized graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if !cmd.Flags().Changed("threshold") {
			threshold = cfg.Harmonization.ConnectionThreshold
		}
		req := validation.ThresholdRequest{Threshold: &threshold}
		if err := validation.ValidateThresholdRequest(&req); err != nil {
			return err
		}

		c, cleanup, err := components(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		g, err := loadOrRun(cmd, c.Harmonizer)
		if err != nil {
			return err
		}

		var suggestions []model.ConnectionSuggestion
		kind := "heuristic"
		if useAI {
			kind = "ai"
			if suggestions, err = c.AI.Suggest(ctx, g, threshold); err != nil {
				return err
			}
		} else {
			suggestions = inference.InferConnections(g.Nodes, g.Edges, threshold)
		}
		c.Metrics.RecordSuggestions(kind, len(suggestions))
		return render(cmd.OutOrStdout(), runFormat, suggestions)
	},
}

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Group systems into clusters and describe each one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		c, cleanup, err := components(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		g, err := loadOrRun(cmd, c.Harmonizer)
		if err != nil {
			return err
		}
		clusters, err := core.Clusters(ctx, g, c.Detector, c.Summarizer)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), runFormat, clusters)
	},
}

// loadOrRun reads the persisted graph, running the pipeline when there is none.
func loadOrRun(cmd *cobra.Command, h *core.Harmonizer) (model.HarmonizedGraph, error) {
	g, err := core.ReadGraph(h.GraphPath())
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, fuxierr.ErrNotFound) {
		return model.HarmonizedGraph{}, err
	}
	res, err := h.Harmonize(cmd.Context(), core.Options{Mode: model.ModeAll, ProjectID: core.DefaultProject})
	if res == nil {
		return model.HarmonizedGraph{}, err
	}
	if err != nil {
		logging.FromContext(cmd.Context()).Warn().Err(err).Msg("Using unpersisted graph")
	}
	return res.Full, nil
}

func init() {
	harmonizeCmd.Flags().StringVarP(&runMode, "mode", "m", "", "graph view to print: all, current or future")
	harmonizeCmd.Flags().StringVarP(&runProject, "project", "p", "", "project the run is published under")

	connectionsCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "minimum suggestion confidence (default from config)")
	connectionsCmd.Flags().BoolVar(&useAI, "ai", false, "ask the configured LLM instead of the heuristic")

	for _, c := range []*cobra.Command{harmonizeCmd, connectionsCmd, clustersCmd} {
		c.Flags().StringVarP(&runFormat, "format", "f", formatJSON, "output format: json or yaml")
	}
}
