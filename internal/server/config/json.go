package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/credsec/internal/flagx"
	"github.com/dmitrijs2005/credsec/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	GraphURI                string         `json:"graph_uri"`
	GraphUser               string         `json:"graph_user"`
	GraphPassword           string         `json:"graph_password"`
	GraphDatabase           string         `json:"graph_database"`
	GraphMaxPoolSize        int            `json:"graph_max_pool_size"`
	GraphMaxConnLifetime    timex.Duration `json:"graph_max_conn_lifetime"`
	GraphAcquisitionTimeout timex.Duration `json:"graph_acquisition_timeout"`

	EncryptionPassphrase string `json:"encryption_passphrase"`
	EncryptionSalt       string `json:"encryption_salt"`
	HashSalt             string `json:"hash_salt"`
	SecretKey            string `json:"secret_key"`

	IntelxBaseURL      string         `json:"intelx_base_url"`
	IntelxAPIKey       string         `json:"intelx_api_key"`
	IntelxMaxResults   int            `json:"intelx_max_results"`
	IntelxRateInterval timex.Duration `json:"intelx_rate_interval"`
	IntelxSettleDelay  timex.Duration `json:"intelx_settle_delay"`
	IntelxMaxAttempts  int            `json:"intelx_max_attempts"`

	SyncTerms    []string       `json:"sync_terms"`
	SyncMode     string         `json:"sync_mode"`
	SyncInterval timex.Duration `json:"sync_interval"`

	S3RootUser       string `json:"s3_root_user"`
	S3RootPassword   string `json:"s3_root_password"`
	S3Bucket         string `json:"s3_bucket"`
	S3Region         string `json:"s3_region"`
	S3BaseEndpoint   string `json:"s3_base_endpoint"`
	SnapshotLocalDir string `json:"snapshot_local_dir"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. Only values actually present in the file override the
// defaults. If the file cannot be read or contains invalid JSON, the
// function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	applyJson(config, c)
}

func applyJson(config *Config, c *JsonConfig) {
	setString(&config.GraphURI, c.GraphURI)
	setString(&config.GraphUser, c.GraphUser)
	setString(&config.GraphPassword, c.GraphPassword)
	setString(&config.GraphDatabase, c.GraphDatabase)
	setInt(&config.GraphMaxPoolSize, c.GraphMaxPoolSize)
	setDuration(&config.GraphMaxConnLifetime, c.GraphMaxConnLifetime)
	setDuration(&config.GraphAcquisitionTimeout, c.GraphAcquisitionTimeout)

	setString(&config.EncryptionPassphrase, c.EncryptionPassphrase)
	setString(&config.EncryptionSalt, c.EncryptionSalt)
	setString(&config.HashSalt, c.HashSalt)
	setString(&config.SecretKey, c.SecretKey)

	setString(&config.IntelxBaseURL, c.IntelxBaseURL)
	setString(&config.IntelxAPIKey, c.IntelxAPIKey)
	setInt(&config.IntelxMaxResults, c.IntelxMaxResults)
	setDuration(&config.IntelxRateInterval, c.IntelxRateInterval)
	setDuration(&config.IntelxSettleDelay, c.IntelxSettleDelay)
	setInt(&config.IntelxMaxAttempts, c.IntelxMaxAttempts)

	if len(c.SyncTerms) > 0 {
		config.SyncTerms = c.SyncTerms
	}
	setString(&config.SyncMode, c.SyncMode)
	setDuration(&config.SyncInterval, c.SyncInterval)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SnapshotLocalDir, c.SnapshotLocalDir)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = time.Duration(v.Duration)
	}
}
