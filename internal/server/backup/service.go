// Package backup exports encrypted snapshots of the credential graph to
// object storage, with a local-directory fallback when no bucket is
// configured. Scheduling is left to the caller.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/credsec/internal/cryptox"
	"github.com/dmitrijs2005/credsec/internal/filex"
	"github.com/dmitrijs2005/credsec/internal/logging"
	"github.com/dmitrijs2005/credsec/internal/netx"
	"github.com/dmitrijs2005/credsec/internal/parsex"
	"github.com/dmitrijs2005/credsec/internal/server/content"
	"github.com/dmitrijs2005/credsec/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadToPresignedURL = netx.UploadToPresignedURL
	writeFileInDir       = filex.WriteFileInDir
)

// S3Config locates the snapshot bucket. An empty Bucket switches the
// service to the local-directory fallback.
type S3Config struct {
	Region       string
	RootUser     string
	RootPassword string
	BaseEndpoint string
	Bucket       string
	// LocalDir receives snapshots when no bucket is configured.
	LocalDir string
}

// store is the content-side surface the service needs: the read half feeds
// snapshots, the upsert half re-ingests them on restore.
type store interface {
	AllLines(ctx context.Context) ([]*models.ContentLine, error)
	Stats(ctx context.Context) (*content.Stats, error)
	UpsertByEmailHash(ctx context.Context, line *models.ContentLine) (bool, error)
}

// Snapshot is the serialized document: every record in its encrypted export
// shape plus the aggregate stats at the time of the export.
type Snapshot struct {
	CreatedAt time.Time               `json:"createdAt"`
	Stats     *content.Stats          `json:"stats"`
	Records   []models.ExportedRecord `json:"records"`
}

type Service struct {
	repo     store
	enc      *cryptox.Encryptor
	hashSalt string
	cfg      S3Config
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo store, enc *cryptox.Encryptor, hashSalt string, cfg S3Config, logger logging.Logger) *Service {
	return &Service{
		repo:     repo,
		enc:      enc,
		hashSalt: hashSalt,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Snapshot exports the full encrypted data set and stores it, returning the
// storage key (or local path) it was written under.
func (s *Service) Snapshot(ctx context.Context) (string, error) {
	lines, err := s.repo.AllLines(ctx)
	if err != nil {
		return "", fmt.Errorf("collecting lines: %w", err)
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("collecting stats: %w", err)
	}

	snap := Snapshot{
		CreatedAt: s.now(),
		Stats:     stats,
		Records:   make([]models.ExportedRecord, 0, len(lines)),
	}
	for _, line := range lines {
		snap.Records = append(snap.Records, line.Exported())
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	if s.cfg.Bucket == "" {
		name := s.newID() + ".json"
		path, err := writeFileInDir(s.cfg.LocalDir, name, data)
		if err != nil {
			return "", err
		}
		s.logger.Info(ctx, "snapshot written locally", "path", path, "records", len(snap.Records))
		return path, nil
	}

	key := s.storageKey()
	if err := s.upload(ctx, key, data); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "snapshot uploaded", "key", key, "records", len(snap.Records))
	return key, nil
}

// Restore re-ingests a snapshot. Every record's email ciphertext is
// decrypted to prove it belongs to the current key, the lookup hash and the
// domain chain are re-derived from the plaintext, and the record is upserted
// on its hash. Records failing decryption or storage are counted and
// skipped; one bad record never aborts the restore.
func (s *Service) Restore(ctx context.Context, snap *Snapshot) (*models.BatchResult, error) {
	result := &models.BatchResult{}

	for i, rec := range snap.Records {
		if err := s.restoreRecord(ctx, rec); err != nil {
			result.AddError(fmt.Sprintf("record %d: %v", i+1, err))
			s.logger.Warn(ctx, "restore record failed", "record", i+1, "error", err)
			continue
		}
		result.Succeeded++
	}

	s.logger.Info(ctx, "restore finished", "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

func (s *Service) restoreRecord(ctx context.Context, rec models.ExportedRecord) error {
	email, err := s.enc.Decrypt(rec.EncryptedEmail)
	if err != nil {
		return fmt.Errorf("verifying email ciphertext: %w", err)
	}
	email = cryptox.NormalizeIdentifier(email)
	domain, tld := parsex.DomainParts(email)

	id := rec.MainDataID
	if id == "" {
		id = s.newID()
	}

	line := &models.ContentLine{
		MainDataID:     id,
		EncryptedEmail: rec.EncryptedEmail,
		EncryptedLine:  rec.EncryptedLine,
		EmailHash:      cryptox.LookupHash(email, s.hashSalt),
		DomainName:     domain + "." + tld,
		TLDName:        tld,
		CreatedAt:      rec.CreatedAt,
		Source:         rec.Source,
		Verified:       rec.Verified,
		QualityScore:   rec.QualityScore,
	}
	if rec.EncryptedPassword != nil {
		line.EncryptedPassword = *rec.EncryptedPassword
	}

	_, err = s.repo.UpsertByEmailHash(ctx, line)
	return err
}

func (s *Service) storageKey() string {
	d := s.now()
	return fmt.Sprintf("snapshots/%d/%d/%d/%v.json", d.Year(), int(d.Month()), d.Day(), s.newID())
}

func (s *Service) upload(ctx context.Context, key string, data []byte) error {
	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return fmt.Errorf("building presign client: %w", err)
	}

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &s.cfg.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return fmt.Errorf("presigning put: %w", err)
	}

	if err := uploadToPresignedURL(ctx, req.URL, data, "application/json"); err != nil {
		return fmt.Errorf("uploading snapshot: %w", err)
	}
	return nil
}

func (s *Service) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.RootUser,
			s.cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
		}
	})

	return newS3PresignClient(client), nil
}
