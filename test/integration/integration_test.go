//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/core"
	"github.com/agenthands/fuxi/internal/core/model"
	"github.com/agenthands/fuxi/internal/driver"
	"github.com/agenthands/fuxi/internal/metrics"
	"github.com/agenthands/fuxi/internal/store"
)

func ids(g model.HarmonizedGraph) ([]string, []string) {
	var nodes, edges []string
	for _, n := range g.Nodes {
		nodes = append(nodes, n.ID)
	}
	for _, e := range g.Edges {
		edges = append(edges, e.ID)
	}
	return nodes, edges
}

func TestFullFlow(t *testing.T) {
	cfg := loadConfig(t)
	d := connect(t, cfg)
	writeEstate(t, cfg)
	ctx := context.Background()

	projectID := fmt.Sprintf("it-%s", uuid.New().String()[:8])
	views := store.NewViews(store.NewMemoryStore())
	h := core.NewHarmonizer(cfg, d, views, metrics.NewRegistry())

	res, err := h.Harmonize(ctx, core.Options{Mode: model.ModeAll, ProjectID: projectID})
	require.NoError(t, err)
	assert.True(t, res.HasFuture)
	t.Logf("Stats: %+v", res.Stats)

	// Memgraph holds exactly the persisted graph for the project
	loaded, err := driver.LoadGraph(ctx, d, projectID)
	require.NoError(t, err)
	wantNodes, wantEdges := ids(res.Full)
	gotNodes, gotEdges := ids(loaded)
	assert.ElementsMatch(t, wantNodes, gotNodes)
	assert.ElementsMatch(t, wantEdges, gotEdges)

	for _, n := range loaded.Nodes {
		full, ok := res.Full.Node(n.ID)
		require.True(t, ok)
		assert.Equal(t, full.State, n.State, n.ID)
		assert.Equal(t, full.SourceOrigin, n.SourceOrigin, n.ID)
	}

	// a second run replaces rather than duplicates the project subgraph
	_, err = h.Harmonize(ctx, core.Options{Mode: model.ModeAll, ProjectID: projectID})
	require.NoError(t, err)
	again, err := driver.LoadGraph(ctx, d, projectID)
	require.NoError(t, err)
	assert.Len(t, again.Nodes, len(loaded.Nodes))
	assert.Len(t, again.Edges, len(loaded.Edges))

	view, err := views.Get(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, res.Stats, view.Stats)

	// Cleanup
	_, _ = d.ExecuteQuery(ctx, driver.DeleteProjectGraphQuery, map[string]interface{}{"project_id": projectID})
}
