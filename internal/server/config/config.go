// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the credsec server.
//
// Fields:
//   - GraphURI / GraphUser / GraphPassword / GraphDatabase: Neo4j connection.
//   - GraphMaxPoolSize / GraphMaxConnLifetime / GraphAcquisitionTimeout: pool tuning.
//   - EncryptionPassphrase / EncryptionSalt: AES key derivation inputs. An empty
//     passphrase makes the server prompt on startup.
//   - HashSalt: salt for the deterministic email lookup hash.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - IntelxBaseURL / IntelxAPIKey / IntelxMaxResults: external search API.
//   - IntelxRateInterval / IntelxSettleDelay / IntelxMaxAttempts: throttle and retry tuning.
//   - SyncTerms / SyncMode / SyncInterval: periodic sync schedule; a zero interval disables it.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings; an empty
//     bucket switches snapshots to SnapshotLocalDir.
type Config struct {
	GraphURI                string
	GraphUser               string
	GraphPassword           string
	GraphDatabase           string
	GraphMaxPoolSize        int
	GraphMaxConnLifetime    time.Duration
	GraphAcquisitionTimeout time.Duration

	EncryptionPassphrase string
	EncryptionSalt       string
	HashSalt             string
	SecretKey            string

	IntelxBaseURL      string
	IntelxAPIKey       string
	IntelxMaxResults   int
	IntelxRateInterval time.Duration
	IntelxSettleDelay  time.Duration
	IntelxMaxAttempts  int

	SyncTerms    []string
	SyncMode     string
	SyncInterval time.Duration

	S3RootUser       string
	S3RootPassword   string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	SnapshotLocalDir string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.GraphURI = "neo4j://localhost:7687"
	c.GraphUser = "neo4j"
	c.GraphPassword = "neo4j"
	c.GraphDatabase = "neo4j"
	c.GraphMaxPoolSize = 50
	c.GraphMaxConnLifetime = 1 * time.Hour
	c.GraphAcquisitionTimeout = 1 * time.Minute

	c.EncryptionSalt = "devEncryptionSalt"
	c.HashSalt = "devHashSalt"
	c.SecretKey = "secretKey"

	c.IntelxBaseURL = "https://2.intelx.io"
	c.IntelxMaxResults = 100
	c.IntelxRateInterval = 1 * time.Second
	c.IntelxSettleDelay = 2 * time.Second
	c.IntelxMaxAttempts = 3

	c.SyncMode = "auto"

	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.SnapshotLocalDir = "snapshots"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
