package driver

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/logging"
)

type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string) (*MemgraphDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", uri, err)
	}

	logging.FromContext(ctx).Info().Str("uri", uri).Msg("Connected to Memgraph")
	return &MemgraphDriver{Driver: driver}, nil
}

// Connect returns a driver when Memgraph is configured and nil otherwise.
func Connect(ctx context.Context, cfg config.MemgraphConfig) (*MemgraphDriver, error) {
	if cfg.URI == "" {
		return nil, nil
	}
	d, err := NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password)
	if err != nil {
		return nil, err
	}
	if err := d.BuildIndices(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	log := logging.FromContext(ctx)
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Memgraph errors when the index already exists.
			log.Debug().Err(err).Str("query", q).Msg("Index not created")
		}
	}
	return nil
}
