// Package community groups harmonized systems into clusters of closely
// integrated systems.
package community

import (
	"sort"

	"github.com/agenthands/fuxi/internal/core/model"
)

// Detector splits a graph into clusters of at least two systems. Edge
// direction is ignored.
type Detector interface {
	Detect(nodes []model.HarmonizedSystem, edges []model.Edge) ([][]model.HarmonizedSystem, error)
}

// NewDetector returns the default detector.
func NewDetector() Detector {
	return NewLabelPropagationDetector()
}

// ComponentDetector treats every connected component as one cluster.
type ComponentDetector struct{}

func NewComponentDetector() *ComponentDetector {
	return &ComponentDetector{}
}

func (d *ComponentDetector) Detect(nodes []model.HarmonizedSystem, edges []model.Edge) ([][]model.HarmonizedSystem, error) {
	nodeMap := make(map[string]model.HarmonizedSystem, len(nodes))
	adj := make(map[string][]string)

	for _, n := range nodes {
		nodeMap[n.ID] = n
	}

	for _, e := range edges {
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := make(map[string]bool)
	var clusters [][]model.HarmonizedSystem

	for _, n := range nodes {
		if visited[n.ID] {
			continue
		}
		var ids []string
		d.dfs(n.ID, adj, visited, &ids)

		// singletons are not clusters
		if len(ids) < 2 {
			continue
		}
		cluster := make([]model.HarmonizedSystem, 0, len(ids))
		for _, id := range ids {
			cluster = append(cluster, nodeMap[id])
		}
		clusters = append(clusters, cluster)
	}

	return sortClusters(clusters), nil
}

func (d *ComponentDetector) dfs(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}

// sortClusters orders members by id and clusters by size, largest first,
// then by their first member.
func sortClusters(clusters [][]model.HarmonizedSystem) [][]model.HarmonizedSystem {
	for _, c := range clusters {
		sort.Slice(c, func(i, j int) bool { return c[i].ID < c[j].ID })
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0].ID < clusters[j][0].ID
	})
	return clusters
}
