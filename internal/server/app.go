// Package server initializes and runs the credsec server: it wires the
// graph repository, encryption, search, sync and backup services, handles
// graceful shutdown, and drives the periodic sync schedule.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/dmitrijs2005/credsec/internal/cryptox"
	"github.com/dmitrijs2005/credsec/internal/graphx"
	"github.com/dmitrijs2005/credsec/internal/logging"
	"github.com/dmitrijs2005/credsec/internal/server/backup"
	"github.com/dmitrijs2005/credsec/internal/server/config"
	"github.com/dmitrijs2005/credsec/internal/server/content"
	"github.com/dmitrijs2005/credsec/internal/server/search"
	"github.com/dmitrijs2005/credsec/internal/server/syncx"
)

type App struct {
	config *config.Config
	logger logging.Logger
	graph  *graphx.Client

	contentService *content.Service
	searchEngine   *search.Engine
	syncService    *syncx.Service
	backupService  *backup.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout)

	if c.EncryptionPassphrase == "" {
		return nil, fmt.Errorf("%w: encryption passphrase is not set", common.ErrorConfiguration)
	}

	syncMode, err := syncx.ParseMode(c.SyncMode)
	if err != nil {
		return nil, err
	}
	c.SyncMode = string(syncMode)

	graph, err := graphx.NewClient(graphx.Config{
		URI:                          c.GraphURI,
		Username:                     c.GraphUser,
		Password:                     c.GraphPassword,
		Database:                     c.GraphDatabase,
		MaxConnectionPoolSize:        c.GraphMaxPoolSize,
		MaxConnectionLifetime:        c.GraphMaxConnLifetime,
		ConnectionAcquisitionTimeout: c.GraphAcquisitionTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("graph init error: %w", err)
	}

	enc, err := cryptox.NewEncryptor(c.EncryptionPassphrase, c.EncryptionSalt)
	if err != nil {
		return nil, err
	}

	repo := content.NewGraphRepository(graph)
	contentService := content.NewService(repo, enc, c.HashSalt, logger)
	searchEngine := search.NewEngine(repo, enc, c.HashSalt, logger)

	limiter := syncx.NewIntervalLimiter(c.IntelxRateInterval)
	intelx := syncx.NewIntelxClient(syncx.IntelxConfig{
		BaseURL:     c.IntelxBaseURL,
		APIKey:      c.IntelxAPIKey,
		MaxResults:  c.IntelxMaxResults,
		SettleDelay: c.IntelxSettleDelay,
		MaxAttempts: c.IntelxMaxAttempts,
	}, limiter, logger)
	syncService := syncx.NewService(intelx, contentService, logger)

	backupService := backup.NewService(repo, enc, c.HashSalt, backup.S3Config{
		Region:       c.S3Region,
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
		LocalDir:     c.SnapshotLocalDir,
	}, logger)

	return &App{
		config:         c,
		logger:         logger,
		graph:          graph,
		contentService: contentService,
		searchEngine:   searchEngine,
		syncService:    syncService,
		backupService:  backupService,
	}, nil
}

// Content exposes the content service for embedding callers.
func (app *App) Content() *content.Service { return app.contentService }

// Search exposes the search engine for embedding callers.
func (app *App) Search() *search.Engine { return app.searchEngine }

// Backup exposes the snapshot service for embedding callers.
func (app *App) Backup() *backup.Service { return app.backupService }

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// SyncNow runs one sync pass over the configured terms.
func (app *App) SyncNow(ctx context.Context) (*syncx.Report, error) {
	return app.syncService.Run(ctx, app.config.SyncTerms, syncx.Mode(app.config.SyncMode))
}

func (app *App) runSyncLoop(ctx context.Context) {
	if app.config.SyncInterval <= 0 || len(app.config.SyncTerms) == 0 {
		app.logger.Info(ctx, "periodic sync disabled")
		return
	}

	ticker := time.NewTicker(app.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.SyncNow(ctx); err != nil {
				app.logger.Error(ctx, "sync pass failed", "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	defer app.closeGraph()

	if err := app.graph.VerifyConnectivity(ctx); err != nil {
		app.logger.Error(ctx, "graph connectivity check failed", "error", err)
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSyncLoop(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
}

func (app *App) closeGraph() {
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := app.graph.Close(closeCtx); err != nil {
		app.logger.Error(closeCtx, "closing graph client", "error", err)
	}
	app.logger.Info(closeCtx, "app stopped")
}
