package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

func TestBuildGraph_FuzzyReferenceScalesConfidence(t *testing.T) {
	records := []model.RawRecord{
		{Key: "sap ecc", Label: "SAP ECC", Source: model.SourceInventory},
		{Key: "salesforce crm", Label: "Salesforce CRM", Source: model.SourceInventory, Downstream: []string{"SAP ECC Production"}},
	}

	b := BuildGraph(records, 0.5)
	require.Len(t, b.Graph.Edges, 1)
	e := b.Graph.Edges[0]
	assert.Equal(t, "salesforce crm->sap ecc", e.ID)
	assert.Equal(t, model.StateUnchanged, e.State)
	// 0.65 for an inventory-only edge times a 2/3 token match
	assert.Equal(t, 0.43, e.Confidence)

	assert.Empty(t, BuildGraph(records, 0.7).Graph.Edges)
	assert.Equal(t, 1, BuildGraph(records, 0.7).DroppedReferences)
}

func TestBuildGraph_SelfReferencesAreIgnored(t *testing.T) {
	records := []model.RawRecord{
		{Key: "sap ecc", Label: "SAP ECC", Source: model.SourceLucid, Upstream: []string{"sap-ecc"}},
	}
	b := BuildGraph(records, 0.5)
	assert.Empty(t, b.Graph.Edges)
	assert.Zero(t, b.DroppedReferences)
}

func TestBuildGraph_EdgeDeclaredOnBothSides(t *testing.T) {
	records := []model.RawRecord{
		{Key: "crm", Label: "CRM", Source: model.SourceInventory, Downstream: []string{"ERP"}},
		{Key: "erp", Label: "ERP", Source: model.SourceFuture, Upstream: []string{"CRM"}},
	}
	b := BuildGraph(records, 0.5)
	require.Len(t, b.Graph.Edges, 1)
	assert.Equal(t, model.StateUnchanged, b.Graph.Edges[0].State)
	assert.Equal(t, 0.85, b.Graph.Edges[0].Confidence)
}

func TestFilterByMode(t *testing.T) {
	g := model.HarmonizedGraph{
		Nodes: []model.HarmonizedSystem{
			{ID: "a", State: model.StateUnchanged},
			{ID: "b", State: model.StateUnchanged},
		},
		Edges: []model.Edge{{ID: "a->b", Source: "a", Target: "b"}},
	}

	all := FilterByMode(g, model.ModeAll)
	assert.Len(t, all.Nodes, 2, "no deltas falls back to every node")
	assert.Len(t, all.Edges, 1)

	assert.Empty(t, FilterByMode(g, model.ModeCurrent).Nodes)
	assert.Empty(t, FilterByMode(g, model.ModeFuture).Nodes)
}

func TestReadGraph(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadGraph(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, fuxierr.ErrNotFound)

	path := filepath.Join(dir, "out", "graph.json")
	want := model.HarmonizedGraph{
		Nodes: []model.HarmonizedSystem{{ID: "a", Label: "A", SourceOrigin: []model.Source{model.SourceLucid}, State: model.StateUnchanged, Confidence: 0.6}},
		Edges: []model.Edge{},
	}
	require.NoError(t, WriteGraph(path, want))

	got, err := ReadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
