package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/core/model"
)

func systems(ids ...string) []model.HarmonizedSystem {
	out := make([]model.HarmonizedSystem, len(ids))
	for i, id := range ids {
		out[i] = model.HarmonizedSystem{ID: id, Label: id}
	}
	return out
}

func edge(source, target string) model.Edge {
	return model.Edge{ID: model.EdgeID(source, target), Source: source, Target: target}
}

func ids(cluster []model.HarmonizedSystem) []string {
	out := make([]string, len(cluster))
	for i, n := range cluster {
		out[i] = n.ID
	}
	return out
}

func TestLPA_DisconnectedComponents(t *testing.T) {
	// two triangles with nothing between them
	nodes := systems("1", "2", "3", "4", "5", "6")
	edges := []model.Edge{
		edge("1", "2"), edge("2", "3"), edge("3", "1"),
		edge("4", "5"), edge("5", "6"), edge("6", "4"),
	}

	clusters, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, []string{"1", "2", "3"}, ids(clusters[0]))
	assert.Equal(t, []string{"4", "5", "6"}, ids(clusters[1]))
}

func TestLPA_BridgeNode(t *testing.T) {
	// the 3-4 bridge is weaker than either triangle
	nodes := systems("1", "2", "3", "4", "5", "6")
	edges := []model.Edge{
		edge("1", "2"), edge("2", "3"), edge("3", "1"),
		edge("3", "4"),
		edge("4", "5"), edge("5", "6"), edge("6", "4"),
	}

	clusters, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	assert.Len(t, clusters, 2)
}

func TestLPA_LargeClique(t *testing.T) {
	nodes := systems("1", "2", "3", "4", "5")
	var edges []model.Edge
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			edges = append(edges, edge(nodes[i].ID, nodes[j].ID))
		}
	}

	clusters, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 5)
}

func TestLPA_IgnoresDanglingAndSelfEdges(t *testing.T) {
	nodes := systems("crm", "erp")
	edges := []model.Edge{edge("crm", "crm"), edge("crm", "ghost")}

	clusters, err := NewLabelPropagationDetector().Detect(nodes, edges)
	require.NoError(t, err)
	assert.Empty(t, clusters)

	clusters, err = NewLabelPropagationDetector().Detect(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, clusters)
}
