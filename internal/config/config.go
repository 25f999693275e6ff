package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

// DataConfig locates every input and output file relative to Root.
type DataConfig struct {
	Root            string `toml:"root" validate:"required"`
	LucidClean      string `toml:"lucid_clean"`
	Inventory       string `toml:"inventory"`
	FutureState     string `toml:"future_state"`
	CurrentStateCSV string `toml:"current_state_csv"`
	FutureStateCSV  string `toml:"future_state_csv"`
	GraphFile       string `toml:"graph_file"`
	TelemetryFile   string `toml:"telemetry_file"`
	ConflictLog     string `toml:"conflict_log"`
}

// Path resolves a configured path against Root. Absolute paths are kept.
func (d DataConfig) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(d.Root, rel)
}

type HarmonizationConfig struct {
	// Minimum token-set similarity for resolving a free-text dependency to a system.
	EdgeMatchThreshold float64 `toml:"edge_match_threshold" validate:"gt=0,lte=1"`
	// Default threshold for heuristic and AI connection suggestions.
	ConnectionThreshold float64 `toml:"connection_threshold" validate:"gt=0,lte=1"`
	// Header coverage below this ratio is reported as a warning.
	CoverageWarnRatio float64 `toml:"coverage_warn_ratio" validate:"gte=0,lte=1"`
	DefaultMode       string  `toml:"default_mode" validate:"omitempty,oneof=all current future"`
	WatchInputs       bool    `toml:"watch_inputs"`
	WatchDebounceMS   int     `toml:"watch_debounce_ms" validate:"gte=0"`
}

type TelemetryConfig struct {
	SessionID   string `toml:"session_id"`
	WorkspaceID string `toml:"workspace_id"`
}

type StoreConfig struct {
	Driver string `toml:"driver" validate:"oneof=memory badger"`
	Path   string `toml:"path" validate:"required_if=Driver badger"`
}

type LLMConfig struct {
	Provider  string `toml:"provider" validate:"omitempty,oneof=openai gemini claude anthropic ollama"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int    `toml:"max_tokens" validate:"gte=0"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type PromptsConfig struct {
	AIInference    string `toml:"ai_inference"`
	ClusterName    string `toml:"cluster_name"`
	ClusterSummary string `toml:"cluster_summary"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Data          DataConfig          `toml:"data"`
	Harmonization HarmonizationConfig `toml:"harmonization"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
	Store         StoreConfig         `toml:"store"`
	LLM           LLMConfig           `toml:"llm"`
	Memgraph      MemgraphConfig      `toml:"memgraph"`
	Prompts       PromptsConfig       `toml:"prompts"`
	Logging       LoggingConfig       `toml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Data: DataConfig{
			Root:            "data",
			LucidClean:      "ingested/lucid_clean.json",
			Inventory:       "ingested/inventory_normalized.json",
			FutureState:     "ingested/future_state.json",
			CurrentStateCSV: "ingested/enterprise_current_state.csv",
			FutureStateCSV:  "ingested/enterprise_future_state.csv",
			GraphFile:       "harmonized/enterprise_graph.json",
			TelemetryFile:   "telemetry_events.ndjson",
			ConflictLog:     "harmonization_conflicts.log",
		},
		Harmonization: HarmonizationConfig{
			EdgeMatchThreshold:  0.5,
			ConnectionThreshold: 0.6,
			CoverageWarnRatio:   0.7,
			DefaultMode:         "all",
			WatchDebounceMS:     500,
		},
		Telemetry: TelemetryConfig{WorkspaceID: "default"},
		Store:     StoreConfig{Driver: "memory"},
		Logging:   LoggingConfig{Level: "info", Format: "auto"},
	}
}

// Load reads a TOML file on top of Default, so a partial file only
// overrides the keys it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides config values with environment variables when present.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Data.Root, "FUXI_DATA_ROOT")
	setString(&c.Telemetry.SessionID, "FUXI_SESSION_ID")
	setString(&c.Telemetry.WorkspaceID, "FUXI_WORKSPACE_ID")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.Path, "STORE_PATH")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	if v := os.Getenv("FUXI_EDGE_MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Harmonization.EdgeMatchThreshold = f
		}
	}
	if v := os.Getenv("FUXI_CONNECTION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Harmonization.ConnectionThreshold = f
		}
	}
}

// Validate checks value ranges and required fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fuxierr.NewConfigError("config", err.Error(), err)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
