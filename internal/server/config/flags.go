package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/credsec/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   Neo4j URI (e.g., "neo4j://localhost:7687")
//	-n string   Neo4j user
//	-w string   Neo4j password
//	-d string   Neo4j database name
//	-p string   encryption passphrase (empty prompts on startup)
//	-s string   JWT HMAC secret key
//	-k string   intelx API key
//	-x string   intelx base URL
//	-q string   sync terms, comma-separated
//	-m string   sync mode: email, domain or auto
//	-i int      sync interval, minutes (0 disables periodic sync)
//	-b string   S3 bucket name (empty stores snapshots locally)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-o string   local snapshot directory
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The sync interval is accepted as an integer in minutes and converted
//     to a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-n", "-w", "-d", "-p", "-s", "-k", "-x", "-q", "-m", "-i", "-b", "-g", "-e", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.GraphURI, "u", config.GraphURI, "neo4j URI")
	fs.StringVar(&config.GraphUser, "n", config.GraphUser, "neo4j user")
	fs.StringVar(&config.GraphPassword, "w", config.GraphPassword, "neo4j password")
	fs.StringVar(&config.GraphDatabase, "d", config.GraphDatabase, "neo4j database")

	fs.StringVar(&config.EncryptionPassphrase, "p", config.EncryptionPassphrase, "encryption passphrase")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.IntelxAPIKey, "k", config.IntelxAPIKey, "intelx API key")
	fs.StringVar(&config.IntelxBaseURL, "x", config.IntelxBaseURL, "intelx base URL")

	syncTerms := fs.String("q", strings.Join(config.SyncTerms, ","), "sync terms (comma-separated)")
	fs.StringVar(&config.SyncMode, "m", config.SyncMode, "sync mode: email, domain or auto")
	syncInterval := fs.Int("i", int(config.SyncInterval.Minutes()), "sync interval (in minutes, 0 disables)")

	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.SnapshotLocalDir, "o", config.SnapshotLocalDir, "local snapshot directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SyncInterval = time.Duration(*syncInterval) * time.Minute
	config.SyncTerms = splitTerms(*syncTerms)
}

func splitTerms(s string) []string {
	var terms []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
