//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/driver"
)

// loadConfig reads the repo config and environment, pointing the data
// directory at a fresh temp dir.
func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg, err := config.LoadOrDefault("../../config/config.toml")
	require.NoError(t, err)
	cfg.ApplyEnv()
	cfg.Data.Root = t.TempDir()
	return cfg
}

// connect skips the test when no Memgraph is configured.
func connect(t *testing.T, cfg *config.Config) *driver.MemgraphDriver {
	t.Helper()
	if cfg.Memgraph.URI == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	d, err := driver.Connect(context.Background(), cfg.Memgraph)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close(context.Background()) })
	return d
}

func writeInput(t *testing.T, cfg *config.Config, rel, content string) {
	t.Helper()
	path := cfg.Data.Path(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeEstate lays out two unrelated groups of systems: a finance estate
// moving from SAP ECC to S/4HANA and a separate HR pair.
func writeEstate(t *testing.T, cfg *config.Config) {
	t.Helper()
	writeInput(t, cfg, cfg.Data.LucidClean, `[
		{"label": "SAP ECC", "domain": "Finance", "downstream": ["General Ledger"]},
		{"label": "General Ledger", "domain": "Finance"}
	]`)
	writeInput(t, cfg, cfg.Data.Inventory, `{"systems": [
		{"system_name": "Workday", "domain": "HR", "consumers": "Payroll"},
		{"system_name": "Payroll", "domain": "HR"}
	]}`)
	writeInput(t, cfg, cfg.Data.FutureState, `[
		{"system": "SAP S/4HANA", "domain": "Finance", "downstream": "General Ledger"},
		{"system": "General Ledger", "domain": "Finance"}
	]`)
}
