package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[data]
root = "/srv/fuxi"

[harmonization]
edge_match_threshold = 0.65

[llm]
provider = "openai"
model = "gpt-4o-mini"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/fuxi", cfg.Data.Root)
	assert.Equal(t, "ingested/lucid_clean.json", cfg.Data.LucidClean)
	assert.Equal(t, 0.65, cfg.Harmonization.EdgeMatchThreshold)
	assert.Equal(t, 0.6, cfg.Harmonization.ConnectionThreshold)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[data\nroot = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FUXI_DATA_ROOT", "/tmp/fuxi-data")
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("FUXI_EDGE_MATCH_THRESHOLD", "0.75")
	t.Setenv("FUXI_CONNECTION_THRESHOLD", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "/tmp/fuxi-data", cfg.Data.Root)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 0.75, cfg.Harmonization.EdgeMatchThreshold)
	assert.Equal(t, 0.6, cfg.Harmonization.ConnectionThreshold)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Harmonization.EdgeMatchThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Store.Driver = "badger"
	assert.Error(t, cfg.Validate(), "badger needs a path")
	cfg.Store.Path = "/var/lib/fuxi"
	assert.NoError(t, cfg.Validate())

	cfg.Harmonization.DefaultMode = "sideways"
	assert.Error(t, cfg.Validate())
}

func TestDataConfig_Path(t *testing.T) {
	d := DataConfig{Root: "/srv/fuxi"}
	assert.Equal(t, "/srv/fuxi/harmonized/enterprise_graph.json", d.Path("harmonized/enterprise_graph.json"))
	assert.Equal(t, "/var/log/conflicts.log", d.Path("/var/log/conflicts.log"))
}
