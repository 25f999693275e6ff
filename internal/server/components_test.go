package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core/model"
)

func TestNewComponents_OptionalCollaboratorsOff(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Root = t.TempDir()

	c, err := NewComponents(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close(context.Background())

	assert.Nil(t, c.AI)
	assert.Nil(t, c.Harmonizer.Driver)
	assert.NotNil(t, c.Summarizer)
	assert.NotNil(t, c.Views)
	assert.Equal(t, filepath.Join(cfg.Data.Root, "harmonized", "enterprise_graph.json"), c.Harmonizer.GraphPath())
}

func TestNewComponents_BadgerViewsSurviveReopen(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Root = t.TempDir()
	cfg.Store = config.StoreConfig{Driver: "badger", Path: filepath.Join(t.TempDir(), "store")}
	ctx := context.Background()

	c, err := NewComponents(ctx, cfg)
	require.NoError(t, err)
	_, err = c.Views.Save(ctx, "acme", model.HarmonizedGraph{Nodes: []model.HarmonizedSystem{{ID: "crm", Label: "CRM"}}})
	require.NoError(t, err)
	c.Close(ctx)

	c, err = NewComponents(ctx, cfg)
	require.NoError(t, err)
	defer c.Close(ctx)
	view, err := c.Views.Get(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Stats.Systems)
}
