// Package graphx wraps the Neo4j driver behind a small client that executes
// parametrized Cypher queries, normalizes store-native values into plain Go
// kinds, and manages the pooled connection lifecycle.
package graphx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds the fixed connection settings for the graph store.
type Config struct {
	URI      string
	Username string
	Password string
	// Database is the database name; empty selects the server default.
	Database string

	MaxConnectionPoolSize        int
	MaxConnectionLifetime        time.Duration
	ConnectionAcquisitionTimeout time.Duration
}

// Validate checks the settings required to open a connection.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("%w: graph URI must be set", common.ErrorConfiguration)
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: graph credentials must be set", common.ErrorConfiguration)
	}
	return nil
}

// Record is one result row, keyed by the names in the query's RETURN clause.
// Values are normalized: integers arrive as int64, floats as float64, node
// values as their property maps, temporal values as time.Time.
type Record map[string]any

// Client executes queries against a Neo4j-compatible store. The underlying
// driver (and its connection pool) is created lazily on first use; each call
// acquires its own session and releases it on every exit path. Client is safe
// for concurrent use; a closed client cannot be reopened.
type Client struct {
	cfg Config

	mu     sync.Mutex
	driver neo4j.DriverWithContext
	closed bool
}

// NewClient validates the configuration and returns an unconnected client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) conn() (neo4j.DriverWithContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("%w: client is closed", common.ErrorQuery)
	}
	if c.driver != nil {
		return c.driver, nil
	}

	driver, err := neo4j.NewDriverWithContext(
		c.cfg.URI,
		neo4j.BasicAuth(c.cfg.Username, c.cfg.Password, ""),
		func(conf *neo4j.Config) {
			if c.cfg.MaxConnectionPoolSize > 0 {
				conf.MaxConnectionPoolSize = c.cfg.MaxConnectionPoolSize
			}
			if c.cfg.MaxConnectionLifetime > 0 {
				conf.MaxConnectionLifetime = c.cfg.MaxConnectionLifetime
			}
			if c.cfg.ConnectionAcquisitionTimeout > 0 {
				conf.ConnectionAcquisitionTimeout = c.cfg.ConnectionAcquisitionTimeout
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: opening driver: %v", common.ErrorQuery, err)
	}

	c.driver = driver
	return c.driver, nil
}

func (c *Client) session(ctx context.Context) (neo4j.SessionWithContext, error) {
	driver, err := c.conn()
	if err != nil {
		return nil, err
	}
	return driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.cfg.Database}), nil
}

// Run executes a read query and returns the normalized result rows.
// Failures carry common.ErrorQuery; parameter values are never included in
// the message. Retrying is the caller's concern.
func (c *Client) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	session, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, c.collect(ctx, cypher, params))
	if err != nil {
		return nil, fmt.Errorf("%w: read query failed: %v", common.ErrorQuery, err)
	}

	return result.([]Record), nil
}

// RunWrite executes a query inside a managed write transaction and returns
// the normalized result rows.
func (c *Client) RunWrite(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	session, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, c.collect(ctx, cypher, params))
	if err != nil {
		return nil, fmt.Errorf("%w: write query failed: %v", common.ErrorQuery, err)
	}

	return result.([]Record), nil
}

func (c *Client) collect(ctx context.Context, cypher string, params map[string]any) neo4j.ManagedTransactionWork {
	return func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		rows := make([]Record, 0, len(records))
		for _, record := range records {
			row := make(Record, len(record.Keys))
			for i, key := range record.Keys {
				row[key] = normalizeValue(record.Values[i])
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
}

// VerifyConnectivity checks that the store is reachable with the configured
// credentials.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	driver, err := c.conn()
	if err != nil {
		return err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: connectivity check failed: %v", common.ErrorQuery, err)
	}
	return nil
}

// Close releases the connection pool. The client is unusable afterwards.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.driver == nil {
		return nil
	}

	driver := c.driver
	c.driver = nil
	if err := driver.Close(ctx); err != nil {
		return fmt.Errorf("%w: closing driver: %v", common.ErrorQuery, err)
	}
	return nil
}
