package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/fuxi/internal/core/model"
)

// SyncGraph replaces the project's subgraph with graph.
func SyncGraph(ctx context.Context, d GraphDriver, projectID string, graph model.HarmonizedGraph, now time.Time) error {
	params := map[string]interface{}{"project_id": projectID}
	if _, err := d.ExecuteQuery(ctx, DeleteProjectGraphQuery, params); err != nil {
		return fmt.Errorf("failed to clear project graph: %w", err)
	}

	systems := make([]map[string]interface{}, len(graph.Nodes))
	for i, n := range graph.Nodes {
		origin := make([]string, len(n.SourceOrigin))
		for j, s := range n.SourceOrigin {
			origin[j] = string(s)
		}
		systems[i] = map[string]interface{}{
			"id":            n.ID,
			"label":         n.Label,
			"domain":        n.Domain,
			"state":         string(n.State),
			"confidence":    n.Confidence,
			"source_origin": origin,
			"disposition":   n.Disposition,
		}
	}
	if len(systems) > 0 {
		_, err := d.ExecuteQuery(ctx, SaveSystemsQuery, map[string]interface{}{
			"project_id": projectID,
			"systems":    systems,
			"synced_at":  now.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("failed to save systems: %w", err)
		}
	}

	edges := make([]map[string]interface{}, len(graph.Edges))
	for i, e := range graph.Edges {
		edges[i] = map[string]interface{}{
			"id":         e.ID,
			"source":     e.Source,
			"target":     e.Target,
			"state":      string(e.State),
			"confidence": e.Confidence,
		}
	}
	if len(edges) > 0 {
		_, err := d.ExecuteQuery(ctx, SaveIntegrationsQuery, map[string]interface{}{
			"project_id": projectID,
			"edges":      edges,
		})
		if err != nil {
			return fmt.Errorf("failed to save integrations: %w", err)
		}
	}
	return nil
}

// LoadGraph reads a project's subgraph back.
func LoadGraph(ctx context.Context, d GraphDriver, projectID string) (model.HarmonizedGraph, error) {
	graph := model.HarmonizedGraph{Nodes: []model.HarmonizedSystem{}, Edges: []model.Edge{}}
	params := map[string]interface{}{"project_id": projectID}

	res, err := d.ExecuteQuery(ctx, GetProjectSystemsQuery, params)
	if err != nil {
		return graph, fmt.Errorf("failed to load systems: %w", err)
	}
	for _, rec := range res.Records {
		m := rec.AsMap()
		n := model.HarmonizedSystem{
			ID:          asString(m["id"]),
			Label:       asString(m["label"]),
			Domain:      asString(m["domain"]),
			State:       model.State(asString(m["state"])),
			Confidence:  asFloat(m["confidence"]),
			Disposition: asString(m["disposition"]),
		}
		if list, ok := m["source_origin"].([]interface{}); ok {
			for _, s := range list {
				n.SourceOrigin = append(n.SourceOrigin, model.Source(asString(s)))
			}
		}
		graph.Nodes = append(graph.Nodes, n)
	}

	res, err = d.ExecuteQuery(ctx, GetProjectIntegrationsQuery, params)
	if err != nil {
		return graph, fmt.Errorf("failed to load integrations: %w", err)
	}
	for _, rec := range res.Records {
		m := rec.AsMap()
		graph.Edges = append(graph.Edges, model.Edge{
			ID:         asString(m["id"]),
			Source:     asString(m["source"]),
			Target:     asString(m["target"]),
			State:      model.State(asString(m["state"])),
			Confidence: asFloat(m["confidence"]),
		})
	}
	return graph, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	}
	return 0
}
