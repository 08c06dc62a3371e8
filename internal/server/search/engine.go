// Package search resolves query terms against the credential graph through a
// cascade of strategies and returns decrypted, filtered, sorted and paginated
// results.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/credsec/internal/cryptox"
	"github.com/dmitrijs2005/credsec/internal/logging"
	"github.com/dmitrijs2005/credsec/internal/server/models"
)

const (
	// substringCap bounds the domain-substring strategy.
	substringCap = 100
	// recentCap bounds the empty-term listing.
	recentCap = 1000
)

// Request is one search invocation.
type Request struct {
	Term    string
	Filters models.Filters
	Sort    models.Sort
	Page    models.PageRequest
}

// Item is one decrypted search hit.
type Item struct {
	MainDataID string `json:"mainDataId"`

	Email string `json:"email"`
	// Password is empty when the record has none; HasPassword disambiguates
	// an empty password from an absent one.
	Password    string `json:"password,omitempty"`
	HasPassword bool   `json:"hasPassword"`
	Line        string `json:"line"`

	DomainName string `json:"domainName"`
	TLDName    string `json:"tldName"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// LastSyncedAt is nil for records that never came through a sync pass.
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`

	Source       models.Source `json:"source"`
	Verified     bool          `json:"verified"`
	QualityScore int           `json:"qualityScore"`
}

// Result is the paginated outcome: the requested slice plus the total
// post-filter count and the effective paging values.
type Result struct {
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// repository is the read subset of the content store the engine needs.
type repository interface {
	FindByTLD(ctx context.Context, name string, f models.Filters) ([]*models.ContentLine, error)
	FindByEmailHash(ctx context.Context, hash string, f models.Filters) ([]*models.ContentLine, error)
	FindByDomainContains(ctx context.Context, substr string, f models.Filters, limit int) ([]*models.ContentLine, error)
	ListRecent(ctx context.Context, f models.Filters, limit int) ([]*models.ContentLine, error)
}

// Engine evaluates the strategy cascade in fixed order, short-circuiting at
// the first strategy that yields a match. A failing strategy degrades to the
// next one instead of failing the query.
type Engine struct {
	repo     repository
	enc      *cryptox.Encryptor
	hashSalt string
	logger   logging.Logger
}

func NewEngine(repo repository, enc *cryptox.Encryptor, hashSalt string, logger logging.Logger) *Engine {
	return &Engine{repo: repo, enc: enc, hashSalt: hashSalt, logger: logger}
}

// Search resolves the term, decrypts the candidates, applies the plaintext
// suffix filter, sorts and paginates. Identical inputs against unchanged
// data return identical pages.
func (e *Engine) Search(ctx context.Context, req Request) (*Result, error) {
	lines := e.resolve(ctx, req)

	items := e.decryptAll(ctx, lines)
	if suffix := req.Filters.EmailDomainSuffix; suffix != "" {
		items = filterByEmailDomainSuffix(items, suffix)
	}
	sortItems(items, req.Sort.Normalized())

	page := req.Page.Clamped()
	start, end := page.Slice(len(items))

	return &Result{
		Items:   items[start:end],
		Total:   len(items),
		Page:    page.Page,
		PerPage: page.PerPage,
	}, nil
}

func (e *Engine) resolve(ctx context.Context, req Request) []*models.ContentLine {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		lines, err := e.repo.ListRecent(ctx, req.Filters, recentCap)
		if err != nil {
			e.logger.Warn(ctx, "recent listing failed", "error", err)
			return nil
		}
		return lines
	}

	strategies := []struct {
		name string
		run  func() ([]*models.ContentLine, error)
	}{
		{"tld", func() ([]*models.ContentLine, error) {
			return e.repo.FindByTLD(ctx, term, req.Filters)
		}},
		{"hash", func() ([]*models.ContentLine, error) {
			return e.repo.FindByEmailHash(ctx, cryptox.LookupHash(term, e.hashSalt), req.Filters)
		}},
		{"substring", func() ([]*models.ContentLine, error) {
			return e.repo.FindByDomainContains(ctx, term, req.Filters, substringCap)
		}},
	}

	for _, s := range strategies {
		lines, err := s.run()
		if err != nil {
			e.logger.Warn(ctx, "search strategy failed", "strategy", s.name, "error", err)
			continue
		}
		if len(lines) > 0 {
			e.logger.Debug(ctx, "search strategy matched", "strategy", s.name, "matches", len(lines))
			return lines
		}
	}
	return nil
}

// decryptAll converts stored lines to plaintext items, dropping and logging
// any record whose ciphertext fails verification.
func (e *Engine) decryptAll(ctx context.Context, lines []*models.ContentLine) []Item {
	items := make([]Item, 0, len(lines))
	for _, line := range lines {
		item, err := e.decrypt(line)
		if err != nil {
			e.logger.Warn(ctx, "dropping undecryptable record", "mainDataId", line.MainDataID, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (e *Engine) decrypt(line *models.ContentLine) (Item, error) {
	email, err := e.enc.Decrypt(line.EncryptedEmail)
	if err != nil {
		return Item{}, err
	}
	raw, err := e.enc.Decrypt(line.EncryptedLine)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		MainDataID:   line.MainDataID,
		Email:        email,
		HasPassword:  line.HasPassword(),
		Line:         raw,
		DomainName:   line.DomainName,
		TLDName:      line.TLDName,
		CreatedAt:    line.CreatedAt,
		UpdatedAt:    line.UpdatedAt,
		Source:       line.Source,
		Verified:     line.Verified,
		QualityScore: line.QualityScore,
	}
	if !line.LastSyncedAt.IsZero() {
		synced := line.LastSyncedAt
		item.LastSyncedAt = &synced
	}
	if line.HasPassword() {
		item.Password, err = e.enc.Decrypt(line.EncryptedPassword)
		if err != nil {
			return Item{}, err
		}
	}
	return item, nil
}

func filterByEmailDomainSuffix(items []Item, suffix string) []Item {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	kept := items[:0]
	for _, item := range items {
		if matchesDomainSuffix(emailDomain(item.Email), suffix) {
			kept = append(kept, item)
		}
	}
	return kept
}

func matchesDomainSuffix(domain, suffix string) bool {
	return domain == suffix || strings.HasSuffix(domain, "."+suffix)
}

func emailDomain(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return strings.ToLower(email[at+1:])
	}
	return strings.ToLower(email)
}

// sortItems orders items by the requested key. The sort is stable so equal
// keys keep their storage order and identical requests page identically.
func sortItems(items []Item, s models.Sort) {
	var less func(a, b Item) bool
	switch s.Key {
	case models.SortByEmail:
		less = func(a, b Item) bool { return a.Email < b.Email }
	case models.SortByDomain:
		less = func(a, b Item) bool { return emailDomain(a.Email) < emailDomain(b.Email) }
	default:
		less = func(a, b Item) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	sort.SliceStable(items, func(i, j int) bool {
		if s.Order == models.OrderDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
