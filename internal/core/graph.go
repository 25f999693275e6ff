package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/agenthands/fuxi/internal/core/classify"
	"github.com/agenthands/fuxi/internal/core/dedupe"
	"github.com/agenthands/fuxi/internal/core/keys"
	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

// GraphBuild is the outcome of turning normalized records into a graph.
type GraphBuild struct {
	Graph     model.HarmonizedGraph
	HasFuture bool
	// DroppedReferences counts dependency references that matched no system.
	DroppedReferences int
	Conflicts         []model.Conflict
}

type edgeAcc struct {
	source, target string
	sources        []model.Source
	minScore       float64
}

// BuildGraph merges records, classifies every system and resolves
// dependency references into edges. The result is sorted by id and depends
// only on the records, so equal inputs give equal graphs.
func BuildGraph(records []model.RawRecord, edgeThreshold float64) GraphBuild {
	merged := dedupe.Merge(records)
	hasFuture := merged.HasSource(model.SourceFuture)

	nodes := make([]model.HarmonizedSystem, 0, len(merged.Systems))
	for _, m := range merged.Systems {
		p := classify.PresenceOf(m.Sources, m.Changed)
		nodes = append(nodes, model.HarmonizedSystem{
			ID:           m.Key,
			Label:        m.Label,
			Domain:       m.Domain,
			SourceOrigin: m.SortedSources(),
			State:        classify.State(p, hasFuture),
			Confidence:   classify.Confidence(p),
			Disposition:  m.Disposition,
		})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	resolver := keys.BuildResolver(merged.Keys(), edgeThreshold)
	accs := make(map[string]*edgeAcc)
	dropped := 0

	add := func(source, target string, from model.Source, score float64) {
		if source == target {
			return
		}
		id := model.EdgeID(source, target)
		acc, ok := accs[id]
		if !ok {
			acc = &edgeAcc{source: source, target: target, minScore: score}
			accs[id] = acc
		}
		if score < acc.minScore {
			acc.minScore = score
		}
		for _, s := range acc.sources {
			if s == from {
				return
			}
		}
		acc.sources = append(acc.sources, from)
	}

	for _, m := range merged.Systems {
		for _, ref := range m.Upstream {
			key, score, ok := resolver.Resolve(ref.Ref)
			if !ok {
				dropped++
				continue
			}
			add(key, m.Key, ref.Source, score)
		}
		for _, ref := range m.Downstream {
			key, score, ok := resolver.Resolve(ref.Ref)
			if !ok {
				dropped++
				continue
			}
			add(m.Key, key, ref.Source, score)
		}
	}

	edges := make([]model.Edge, 0, len(accs))
	for id, acc := range accs {
		p := classify.PresenceOf(acc.sources, false)
		edges = append(edges, model.Edge{
			ID:         id,
			Source:     acc.source,
			Target:     acc.target,
			State:      classify.State(p, hasFuture),
			Confidence: classify.Round2(classify.Confidence(p) * acc.minScore),
		})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	return GraphBuild{
		Graph:             model.HarmonizedGraph{Nodes: nodes, Edges: edges},
		HasFuture:         hasFuture,
		DroppedReferences: dropped,
		Conflicts:         merged.Conflicts,
	}
}

// FilterByMode returns the part of g the mode asks for. ModeAll keeps every
// system that changed, or the whole graph when nothing changed. Edges survive
// only when both endpoints do.
func FilterByMode(g model.HarmonizedGraph, mode model.Mode) model.HarmonizedGraph {
	var keep func(model.HarmonizedSystem) bool
	switch mode {
	case model.ModeCurrent:
		keep = func(n model.HarmonizedSystem) bool { return n.State == model.StateRemoved }
	case model.ModeFuture:
		keep = func(n model.HarmonizedSystem) bool { return n.State == model.StateAdded }
	default:
		keep = func(n model.HarmonizedSystem) bool { return n.State != model.StateUnchanged }
	}

	out := model.HarmonizedGraph{Nodes: []model.HarmonizedSystem{}, Edges: []model.Edge{}}
	kept := make(map[string]struct{})
	for _, n := range g.Nodes {
		if keep(n) {
			out.Nodes = append(out.Nodes, n)
			kept[n.ID] = struct{}{}
		}
	}

	if len(out.Nodes) == 0 && mode != model.ModeCurrent && mode != model.ModeFuture {
		out.Nodes = append(out.Nodes, g.Nodes...)
		for _, n := range g.Nodes {
			kept[n.ID] = struct{}{}
		}
	}

	for _, e := range g.Edges {
		_, okS := kept[e.Source]
		_, okT := kept[e.Target]
		if okS && okT {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// WriteGraph writes g as indented JSON, creating parent directories. The
// file is replaced atomically.
func WriteGraph(path string, g model.HarmonizedGraph) error {
	if g.Nodes == nil {
		g.Nodes = []model.HarmonizedSystem{}
	}
	if g.Edges == nil {
		g.Edges = []model.Edge{}
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create graph directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".graph-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write graph: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace graph: %w", err)
	}
	return nil
}

// ReadGraph loads a graph written by WriteGraph.
func ReadGraph(path string) (model.HarmonizedGraph, error) {
	var g model.HarmonizedGraph
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return g, fuxierr.NewNotFoundError("graph", path)
	}
	if err != nil {
		return g, fmt.Errorf("failed to read graph: %w", err)
	}
	if err := json.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("failed to decode graph: %w", err)
	}
	return g, nil
}
