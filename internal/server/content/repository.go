// Package content owns the credential records: the graph-backed repository
// for the TLD → Domain → ContentLine hierarchy and the service that gates
// and orchestrates create, import, update, delete and export.
package content

import (
	"context"

	"github.com/dmitrijs2005/credsec/internal/server/models"
)

// Stats is a coarse summary of the stored graph.
type Stats struct {
	Lines      int     `json:"lines"`
	Domains    int     `json:"domains"`
	TLDs       int     `json:"tlds"`
	AvgQuality float64 `json:"avgQuality"`
}

// Repository is the storage contract for content lines. Implementations
// persist records under the two-level TLD → Domain containment hierarchy;
// the hierarchy chain is always ensured by idempotent merge.
type Repository interface {
	// Create persists a new line under its Domain/TLD chain, creating the
	// chain when missing.
	Create(ctx context.Context, line *models.ContentLine) error

	// Update overwrites a line's fields by MainDataID and re-links the
	// containment edge when the domain changed. Returns ErrorNotFound for
	// an unknown id. MainDataID itself is never changed.
	Update(ctx context.Context, line *models.ContentLine) error

	// DeleteByMainDataID removes the line and its containment edges.
	DeleteByMainDataID(ctx context.Context, mainDataID string) error

	// GetByMainDataID fetches one line or ErrorNotFound.
	GetByMainDataID(ctx context.Context, mainDataID string) (*models.ContentLine, error)

	// FindByEmailHash fetches the lines whose emailHash equals hash exactly,
	// narrowed by the storage-side filters.
	FindByEmailHash(ctx context.Context, hash string, f models.Filters) ([]*models.ContentLine, error)

	// FindByTLD returns every line reachable from the named TLD.
	FindByTLD(ctx context.Context, name string, f models.Filters) ([]*models.ContentLine, error)

	// FindByDomainContains returns distinct lines under domains whose name
	// contains substr, capped at limit.
	FindByDomainContains(ctx context.Context, substr string, f models.Filters, limit int) ([]*models.ContentLine, error)

	// ListRecent returns filter-matching lines ordered newest-first, capped
	// at limit.
	ListRecent(ctx context.Context, f models.Filters, limit int) ([]*models.ContentLine, error)

	// UpsertByEmailHash overwrites the line carrying the same email hash or
	// creates it (with its hierarchy chain) when absent. Reports whether a
	// new node was created. Used by the sync pipeline.
	UpsertByEmailHash(ctx context.Context, line *models.ContentLine) (bool, error)

	// AllLines streams the complete data set in encrypted form, for export
	// and snapshots.
	AllLines(ctx context.Context) ([]*models.ContentLine, error)

	// Stats aggregates node counts and the average quality score.
	Stats(ctx context.Context) (*Stats, error)
}
