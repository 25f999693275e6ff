package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/core/model"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadAll_AbsentAndMalformedSourcesAreEmpty(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default().Data
	writeFile(t, root, cfg.Inventory, `[{"System": "SAP ECC", "Domain": "Finance"}]`)
	writeFile(t, root, cfg.FutureState, `{not json`)
	writeFile(t, root, cfg.CurrentStateCSV, "Name,Domain\nCRM,Sales\n")

	datasets, err := LoadAll(context.Background(), root, DefaultSources(cfg))
	require.NoError(t, err)
	require.Len(t, datasets, 5)

	byName := make(map[string]Dataset)
	for _, ds := range datasets {
		byName[ds.Spec.Name] = ds
	}

	assert.False(t, byName["lucid"].Present)
	assert.ErrorIs(t, byName["lucid"].Err, os.ErrNotExist)

	assert.True(t, byName["inventory"].Present)
	assert.Len(t, byName["inventory"].Rows, 1)

	assert.False(t, byName["future_state"].Present)
	var srcErr *fuxierr.SourceError
	assert.ErrorAs(t, byName["future_state"].Err, &srcErr)
	assert.Empty(t, byName["future_state"].Rows)

	assert.True(t, byName["current_state_csv"].Present)
	assert.Equal(t, model.SourceInventory, byName["current_state_csv"].Spec.Origin)
	assert.Equal(t, "CRM", byName["current_state_csv"].Rows[0]["name"])
}

func TestLoadAll_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadAll(ctx, t.TempDir(), DefaultSources(config.Default().Data))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeaderCoverage(t *testing.T) {
	full := Dataset{
		Spec:    SourceSpec{Name: "inventory", Origin: model.SourceInventory},
		Present: true,
		Headers: []string{"system", "label", "domain", "upstream", "downstream", "status"},
	}
	cov := HeaderCoverage(full, 0.7)
	assert.Equal(t, 1.0, cov.Ratio)
	assert.False(t, cov.Warning)
	assert.Empty(t, cov.Missing)

	sparse := Dataset{
		Spec:    SourceSpec{Name: "future_state"},
		Present: true,
		Headers: []string{"system", "domain"},
	}
	cov = HeaderCoverage(sparse, 0.7)
	assert.Equal(t, 0.5, cov.Ratio)
	assert.True(t, cov.Warning)
	assert.Equal(t, []Concern{ConcernUpstream, ConcernDownstream, ConcernDisposition}, cov.Missing)

	absent := HeaderCoverage(Dataset{Spec: SourceSpec{Name: "lucid"}}, 0.7)
	assert.False(t, absent.Present)
	assert.False(t, absent.Warning)
}
