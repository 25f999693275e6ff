package server

import (
	"context"
	"fmt"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core"
	"github.com/agenthands/fuxi/internal/core/community"
	"github.com/agenthands/fuxi/internal/core/inference"
	"github.com/agenthands/fuxi/internal/core/summary"
	"github.com/agenthands/fuxi/internal/driver"
	"github.com/agenthands/fuxi/internal/llm"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/metrics"
	"github.com/agenthands/fuxi/internal/store"
)

// Components is everything a server or a CLI command needs, built from one
// config. Optional collaborators are nil when not configured.
type Components struct {
	Config     *config.Config
	Harmonizer *core.Harmonizer
	AI         *inference.AIInferer
	Summarizer *summary.Summarizer
	Detector   community.Detector
	Views      *store.Views
	Metrics    *metrics.Registry

	store  store.Store
	driver *driver.MemgraphDriver
}

// NewComponents connects the configured store, graph database and LLM.
// Memgraph and LLM failures are logged and leave the feature disabled; a
// store failure is returned.
func NewComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	log := logging.FromContext(ctx)

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	c := &Components{
		Config:   cfg,
		Views:    store.NewViews(st),
		Metrics:  metrics.DefaultRegistry(),
		Detector: community.NewDetector(),
		store:    st,
	}

	var graphDriver driver.GraphDriver
	if d, err := driver.Connect(ctx, cfg.Memgraph); err != nil {
		log.Warn().Err(err).Msg("Memgraph unavailable, graph sync disabled")
	} else if d != nil {
		c.driver = d
		graphDriver = d
	}

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Warn().Err(err).Msg("LLM unavailable, AI features disabled")
		llmClient = nil
	}
	if llmClient != nil {
		c.AI = inference.NewAIInferer(llmClient, cfg.Prompts.AIInference, cfg.Harmonization.EdgeMatchThreshold)
	}
	c.Summarizer = summary.NewSummarizer(llmClient, cfg.Prompts)
	c.Harmonizer = core.NewHarmonizer(cfg, graphDriver, c.Views, c.Metrics)

	return c, nil
}

func (c *Components) Close(ctx context.Context) {
	log := logging.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)
	if c.driver != nil {
		if err := c.driver.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close Memgraph driver")
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
}
