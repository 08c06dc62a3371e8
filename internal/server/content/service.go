package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/dmitrijs2005/credsec/internal/cryptox"
	"github.com/dmitrijs2005/credsec/internal/logging"
	"github.com/dmitrijs2005/credsec/internal/parsex"
	"github.com/dmitrijs2005/credsec/internal/server/auth"
	"github.com/dmitrijs2005/credsec/internal/server/models"
	"github.com/dmitrijs2005/credsec/internal/server/quality"
)

// exportLimit bounds a single export so a runaway data set cannot be
// serialized in one response.
const exportLimit = 10000

// CreateRequest carries the plaintext inputs for a new record. Password and
// Line are optional; an empty Line is synthesized from email and password.
type CreateRequest struct {
	Email    string
	Password string
	Line     string
	Verified bool
}

// UpdatePatch carries partial plaintext updates. Nil fields are left as-is;
// a non-nil empty Password removes the stored password.
type UpdatePatch struct {
	Email    *string
	Password *string
	Verified *bool
}

// Service gates and orchestrates content operations: role checks, plaintext
// validation, encryption, lookup-hash derivation and quality scoring all
// happen here, so the repository only ever sees ciphertext.
type Service struct {
	repo     Repository
	enc      *cryptox.Encryptor
	hashSalt string
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, enc *cryptox.Encryptor, hashSalt string, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		enc:      enc,
		hashSalt: hashSalt,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Create validates, encrypts and persists a new record under its domain
// hierarchy. Requires write permission.
func (s *Service) Create(ctx context.Context, identity auth.Identity, req CreateRequest) (*models.ContentLine, error) {
	if !identity.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot create records", common.ErrorUnauthorized, identity.Role)
	}

	email := cryptox.NormalizeIdentifier(req.Email)
	if !quality.ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, req.Email)
	}

	raw := req.Line
	if raw == "" {
		raw = email
		if req.Password != "" {
			raw = email + ":" + req.Password
		}
	}

	domain, tld := parsex.DomainParts(email)
	now := s.now()

	line := &models.ContentLine{
		MainDataID:     s.newID(),
		EncryptedEmail: s.enc.Encrypt(email),
		EncryptedLine:  s.enc.Encrypt(raw),
		EmailHash:      cryptox.LookupHash(email, s.hashSalt),
		DomainName:     domain + "." + tld,
		TLDName:        tld,
		CreatedAt:      now,
		UpdatedAt:      now,
		Source:         models.SourceManual,
		Verified:       req.Verified,
	}
	if req.Password != "" {
		line.EncryptedPassword = s.enc.Encrypt(req.Password)
	}
	line.QualityScore = s.score(line, email, raw)

	if err := s.repo.Create(ctx, line); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "record created", "mainDataId", line.MainDataID, "domain", line.DomainName)
	return line, nil
}

// Update applies a partial plaintext patch to an existing record. Changing
// the email re-derives the lookup hash and the domain chain; the score is
// recomputed either way. Requires write permission.
func (s *Service) Update(ctx context.Context, identity auth.Identity, mainDataID string, patch UpdatePatch) (*models.ContentLine, error) {
	if !identity.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot update records", common.ErrorUnauthorized, identity.Role)
	}

	line, err := s.repo.GetByMainDataID(ctx, mainDataID)
	if err != nil {
		return nil, err
	}

	email, err := s.enc.Decrypt(line.EncryptedEmail)
	if err != nil {
		return nil, fmt.Errorf("stored email for %s: %w", mainDataID, err)
	}

	if patch.Email != nil {
		next := cryptox.NormalizeIdentifier(*patch.Email)
		if !quality.ValidEmail(next) {
			return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, *patch.Email)
		}
		if next != email {
			email = next
			line.EncryptedEmail = s.enc.Encrypt(email)
			line.EmailHash = cryptox.LookupHash(email, s.hashSalt)
			domain, tld := parsex.DomainParts(email)
			line.DomainName = domain + "." + tld
			line.TLDName = tld
		}
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			line.EncryptedPassword = ""
		} else {
			line.EncryptedPassword = s.enc.Encrypt(*patch.Password)
		}
	}
	if patch.Verified != nil {
		line.Verified = *patch.Verified
	}

	raw, err := s.enc.Decrypt(line.EncryptedLine)
	if err != nil {
		return nil, fmt.Errorf("stored line for %s: %w", mainDataID, err)
	}

	line.UpdatedAt = s.now()
	line.QualityScore = s.score(line, email, raw)

	if err := s.repo.Update(ctx, line); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "record updated", "mainDataId", mainDataID)
	return line, nil
}

// Delete removes a record. Admin only.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, mainDataID string) error {
	if !identity.CanDelete() {
		return fmt.Errorf("%w: role %s cannot delete records", common.ErrorUnauthorized, identity.Role)
	}
	if err := s.repo.DeleteByMainDataID(ctx, mainDataID); err != nil {
		return err
	}
	s.logger.Info(ctx, "record deleted", "mainDataId", mainDataID)
	return nil
}

// Get fetches one record by its id.
func (s *Service) Get(ctx context.Context, mainDataID string) (*models.ContentLine, error) {
	return s.repo.GetByMainDataID(ctx, mainDataID)
}

// Import ingests a batch of raw text lines. Each line is parsed, encrypted
// and upserted on its lookup hash; unparseable or failing lines are counted
// and skipped so one bad line never aborts the batch. Requires write
// permission.
func (s *Service) Import(ctx context.Context, identity auth.Identity, lines []string) (*models.BatchResult, error) {
	if !identity.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot import records", common.ErrorUnauthorized, identity.Role)
	}

	result := &models.BatchResult{}
	for i, raw := range lines {
		cred, ok := parsex.ParseLine(raw)
		if !ok {
			result.AddError(fmt.Sprintf("line %d: no credential found", i+1))
			continue
		}
		if _, err := s.ingest(ctx, cred, models.SourceImport, time.Time{}); err != nil {
			result.AddError(fmt.Sprintf("line %d: %v", i+1, err))
			s.logger.Warn(ctx, "import line failed", "line", i+1, "error", err)
			continue
		}
		result.Succeeded++
	}

	s.logger.Info(ctx, "import finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// Export returns filter-matching records in their encrypted shape, newest
// first, capped at the export limit.
func (s *Service) Export(ctx context.Context, f models.Filters) ([]models.ExportedRecord, error) {
	lines, err := s.repo.ListRecent(ctx, f, exportLimit)
	if err != nil {
		return nil, err
	}
	records := make([]models.ExportedRecord, 0, len(lines))
	for _, line := range lines {
		records = append(records, line.Exported())
	}
	return records, nil
}

// Stats reports coarse totals over the stored graph.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Ingest encrypts a parsed credential and upserts it on its lookup hash.
// syncedAt marks the sync timestamp and is the zero time for plain imports.
// Reports whether a new record was created.
func (s *Service) Ingest(ctx context.Context, cred *parsex.Credential, source models.Source, syncedAt time.Time) (bool, error) {
	return s.ingest(ctx, cred, source, syncedAt)
}

func (s *Service) ingest(ctx context.Context, cred *parsex.Credential, source models.Source, syncedAt time.Time) (bool, error) {
	email := cryptox.NormalizeIdentifier(cred.Email)
	now := s.now()

	line := &models.ContentLine{
		MainDataID:     s.newID(),
		EncryptedEmail: s.enc.Encrypt(email),
		EncryptedLine:  s.enc.Encrypt(cred.Line),
		EmailHash:      cryptox.LookupHash(email, s.hashSalt),
		DomainName:     cred.FullDomain(),
		TLDName:        cred.TLD,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastSyncedAt:   syncedAt,
		Source:         source,
	}
	if cred.Password != "" {
		line.EncryptedPassword = s.enc.Encrypt(cred.Password)
	}
	line.QualityScore = s.score(line, email, cred.Line)

	return s.repo.UpsertByEmailHash(ctx, line)
}

func (s *Service) score(line *models.ContentLine, email, raw string) int {
	age := 0
	if d := s.now().Sub(line.CreatedAt); d > 0 {
		age = int(d.Hours() / 24)
	}
	return quality.Score(quality.Factors{
		HasPassword: line.HasPassword(),
		EmailValid:  quality.ValidEmail(email),
		DomainValid: quality.ValidDomain(line.DomainName),
		TLDValid:    quality.ValidTLD(line.TLDName),
		LineLength:  len(raw),
		Source:      line.Source,
		Verified:    line.Verified,
		AgeDays:     age,
	})
}
