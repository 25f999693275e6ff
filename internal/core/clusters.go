package core

import (
	"context"
	"fmt"

	"github.com/agenthands/fuxi/internal/core/community"
	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/core/summary"
)

// Clusters groups the graph's systems with det and describes each group.
func Clusters(ctx context.Context, g model.HarmonizedGraph, det community.Detector, s *summary.Summarizer) ([]model.Cluster, error) {
	groups, err := det.Detect(g.Nodes, g.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to detect clusters: %w", err)
	}

	out := make([]model.Cluster, 0, len(groups))
	for _, members := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, s.Describe(ctx, members))
	}
	return out, nil
}
