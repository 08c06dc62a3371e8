package syncx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/credsec/internal/common"
	"github.com/dmitrijs2005/credsec/internal/logging"
	"github.com/dmitrijs2005/credsec/internal/parsex"
	"github.com/dmitrijs2005/credsec/internal/server/models"
)

// Mode selects the selector kind a term is searched as.
type Mode string

const (
	ModeEmail  Mode = "email"
	ModeDomain Mode = "domain"
	// ModeAuto picks email for terms containing '@', domain otherwise.
	ModeAuto Mode = "auto"
)

// ParseMode validates a raw mode value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEmail, ModeDomain, ModeAuto:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown sync mode %q", common.ErrorValidation, s)
	}
}

// searcher is the external API surface the pipeline needs.
type searcher interface {
	Search(ctx context.Context, term string, mode Mode) ([]string, error)
}

// ingester is the content-side surface: parse results are handed over for
// encryption and hash-keyed upsert.
type ingester interface {
	Ingest(ctx context.Context, cred *parsex.Credential, source models.Source, syncedAt time.Time) (bool, error)
}

// Report is the outcome of one pipeline run.
type Report struct {
	models.BatchResult

	Created int `json:"created"`
	Updated int `json:"updated"`
	Terms   int `json:"terms"`
}

// Service drives the sync pipeline: search each term, parse the raw result
// lines and upsert them. Terms run sequentially through the shared rate
// limiter; one failing term or line never aborts the run.
type Service struct {
	client  searcher
	content ingester
	logger  logging.Logger

	now func() time.Time
}

func NewService(client searcher, content ingester, logger logging.Logger) *Service {
	return &Service{
		client:  client,
		content: content,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run syncs all terms and reports per-item outcomes.
func (s *Service) Run(ctx context.Context, terms []string, mode Mode) (*Report, error) {
	report := &Report{Terms: len(terms)}

	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		s.syncTerm(ctx, term, resolveMode(term, mode), report)
	}

	s.logger.Info(ctx, "sync finished",
		"terms", report.Terms,
		"created", report.Created,
		"updated", report.Updated,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *Service) syncTerm(ctx context.Context, term string, mode Mode, report *Report) {
	lines, err := s.client.Search(ctx, term, mode)
	if err != nil {
		report.AddError(fmt.Sprintf("term %q: %v", term, err))
		s.logger.Warn(ctx, "term search failed", "term", term, "error", err)
		return
	}

	syncedAt := s.now()
	for _, raw := range lines {
		cred, ok := parsex.ParseLine(raw)
		if !ok {
			report.AddError(fmt.Sprintf("term %q: unparseable result line", term))
			continue
		}
		created, err := s.content.Ingest(ctx, cred, models.SourceIntelx, syncedAt)
		if err != nil {
			report.AddError(fmt.Sprintf("term %q: %v", term, err))
			s.logger.Warn(ctx, "result line failed", "term", term, "error", err)
			continue
		}
		report.Succeeded++
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}
}

func resolveMode(term string, mode Mode) Mode {
	if mode != ModeAuto {
		return mode
	}
	if strings.Contains(term, "@") {
		return ModeEmail
	}
	return ModeDomain
}
