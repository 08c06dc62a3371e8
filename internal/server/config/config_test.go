package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, c.GraphURI, "neo4j://localhost:7687")
	assert.Equal(t, c.GraphUser, "neo4j")
	assert.Equal(t, c.GraphDatabase, "neo4j")
	assert.Equal(t, c.GraphMaxPoolSize, 50)
	assert.Equal(t, c.GraphMaxConnLifetime, 1*time.Hour)
	assert.Equal(t, c.GraphAcquisitionTimeout, 1*time.Minute)
	assert.Equal(t, c.SecretKey, "secretKey")
	assert.Equal(t, c.IntelxBaseURL, "https://2.intelx.io")
	assert.Equal(t, c.IntelxMaxResults, 100)
	assert.Equal(t, c.IntelxRateInterval, 1*time.Second)
	assert.Equal(t, c.IntelxSettleDelay, 2*time.Second)
	assert.Equal(t, c.IntelxMaxAttempts, 3)
	assert.Equal(t, c.SyncMode, "auto")
	assert.Equal(t, c.SyncInterval, time.Duration(0))
	assert.Equal(t, c.S3Region, "us-east-1")
	assert.Equal(t, c.S3Bucket, "")
	assert.Equal(t, c.SnapshotLocalDir, "snapshots")

	// No usable key or passphrase ships as a default.
	assert.Empty(t, c.IntelxAPIKey)
	assert.Empty(t, c.EncryptionPassphrase)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c := LoadConfig()

	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, c.GraphURI, "neo4j://localhost:7687")
	assert.Equal(t, c.IntelxMaxResults, 100)
	assert.Equal(t, c.SyncMode, "auto")
	assert.Equal(t, c.SnapshotLocalDir, "snapshots")
}
