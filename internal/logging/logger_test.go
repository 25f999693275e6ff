package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSON(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer
	log := New(&buf)

	log.Info().Str("mode", "all").Msg("harmonization started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "all", entry["mode"])
	assert.Equal(t, "harmonization started", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)

	ctx := WithLogger(context.Background(), &log)
	assert.Same(t, &log, FromContext(ctx))
	assert.Same(t, Default(), FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}
