package community

import (
	"sort"

	"github.com/agenthands/fuxi/internal/core/model"
)

// LabelPropagationDetector finds clusters with asynchronous label
// propagation. Nodes are visited in input order and ties go to the
// lexicographically largest label, so results are deterministic.
type LabelPropagationDetector struct {
	MaxIterations int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationDetector) Detect(nodes []model.HarmonizedSystem, edges []model.Edge) ([][]model.HarmonizedSystem, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	// neighbor weights count parallel edges, so a two-way integration pulls
	// harder than a one-way one
	adj := make(map[string]map[string]int, len(nodes))
	nodeMap := make(map[string]model.HarmonizedSystem, len(nodes))
	ids := make([]string, 0, len(nodes))

	for _, n := range nodes {
		if _, dup := nodeMap[n.ID]; dup {
			continue
		}
		nodeMap[n.ID] = n
		adj[n.ID] = make(map[string]int)
		ids = append(ids, n.ID)
	}

	for _, e := range edges {
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}
		if e.Source == e.Target {
			continue
		}
		adj[e.Source][e.Target]++
		adj[e.Target][e.Source]++
	}

	labels := make(map[string]string, len(ids))
	for _, id := range ids {
		labels[id] = id
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changed := 0

		for _, u := range ids {
			neighbors := adj[u]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			maxCount := 0
			for v, weight := range neighbors {
				label := labels[v]
				counts[label] += weight
				if counts[label] > maxCount {
					maxCount = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[u] != best {
				labels[u] = best
				changed++
			}
		}

		if changed == 0 {
			break
		}
	}

	groups := make(map[string][]model.HarmonizedSystem)
	for _, id := range ids {
		groups[labels[id]] = append(groups[labels[id]], nodeMap[id])
	}

	var clusters [][]model.HarmonizedSystem
	for _, g := range groups {
		if len(g) >= 2 {
			clusters = append(clusters, g)
		}
	}

	return sortClusters(clusters), nil
}
