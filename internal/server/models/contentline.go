// Package models defines the storage-facing shapes of the credential graph:
// content lines, their filters, sorting and paging requests, and the
// encrypted export record.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
)

// Source tags where a content line came from.
type Source string

const (
	SourceIntelx Source = "intelx"
	SourceManual Source = "manual"
	SourceImport Source = "import"
)

// ParseSource validates a raw source value.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceIntelx, SourceManual, SourceImport:
		return Source(s), nil
	default:
		return "", fmt.Errorf("%w: unknown source %q", common.ErrorValidation, s)
	}
}

// ContentLine is one credential record as stored: the email, password and
// raw line are opaque encrypted blobs, searchable only through EmailHash.
// DomainName and TLDName mirror the containment chain the line hangs from.
type ContentLine struct {
	MainDataID string

	EncryptedEmail string
	// EncryptedPassword is empty when the record has no password.
	EncryptedPassword string
	EncryptedLine     string
	EmailHash         string

	DomainName string
	TLDName    string

	CreatedAt time.Time
	UpdatedAt time.Time
	// LastSyncedAt is the zero time until the line is touched by sync.
	LastSyncedAt time.Time

	Source       Source
	Verified     bool
	QualityScore int
}

// HasPassword reports whether an encrypted password is present.
func (c *ContentLine) HasPassword() bool {
	return c.EncryptedPassword != ""
}

// ExportedRecord is the encrypted export shape: everything a consumer needs
// to re-ingest a line without ever seeing plaintext.
type ExportedRecord struct {
	MainDataID        string    `json:"mainDataId"`
	EncryptedEmail    string    `json:"encryptedEmail"`
	EncryptedPassword *string   `json:"encryptedPassword"`
	EncryptedLine     string    `json:"encryptedLine"`
	EmailHash         string    `json:"emailHash"`
	DomainName        string    `json:"domainName"`
	TLDName           string    `json:"tldName"`
	CreatedAt         time.Time `json:"createdAt"`
	Source            Source    `json:"source"`
	Verified          bool      `json:"verified"`
	QualityScore      int       `json:"qualityScore"`
}

// Exported converts a stored line into its export shape.
func (c *ContentLine) Exported() ExportedRecord {
	rec := ExportedRecord{
		MainDataID:     c.MainDataID,
		EncryptedEmail: c.EncryptedEmail,
		EncryptedLine:  c.EncryptedLine,
		EmailHash:      c.EmailHash,
		DomainName:     c.DomainName,
		TLDName:        c.TLDName,
		CreatedAt:      c.CreatedAt,
		Source:         c.Source,
		Verified:       c.Verified,
		QualityScore:   c.QualityScore,
	}
	if c.HasPassword() {
		p := c.EncryptedPassword
		rec.EncryptedPassword = &p
	}
	return rec
}
