package models

import "time"

// Filters are the optional predicates applied to searches and listings.
// All but EmailDomainSuffix translate into storage-side conditions; the
// suffix filter needs plaintext and runs after decryption.
type Filters struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// Domain and TLD match node names exactly.
	Domain string
	TLD    string

	HasPassword *bool
	Verified    *bool
	Source      Source

	// EmailDomainSuffix matches the decrypted email's domain part,
	// e.g. "example.com" also matches "mail.example.com".
	EmailDomainSuffix string
}

// SortKey selects the comparison field for search results.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByEmail  SortKey = "email"
	SortByDomain SortKey = "domain"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Sort describes the requested result ordering. A zero value means
// date-descending (newest first).
type Sort struct {
	Key   SortKey
	Order SortOrder
}

// Normalized fills in the defaults for unset fields.
func (s Sort) Normalized() Sort {
	if s.Key == "" {
		s.Key = SortByDate
	}
	if s.Order == "" {
		if s.Key == SortByDate {
			s.Order = OrderDesc
		} else {
			s.Order = OrderAsc
		}
	}
	return s
}

const (
	minPerPage = 1
	maxPerPage = 100
)

// PageRequest is a 1-based page selection. PerPage is clamped to [1, 100].
type PageRequest struct {
	Page    int
	PerPage int
}

// Clamped returns the effective page request.
func (p PageRequest) Clamped() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < minPerPage {
		p.PerPage = minPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

// Slice applies the page request to a total item count and returns the
// half-open [start, end) range of the requested slice.
func (p PageRequest) Slice(total int) (int, int) {
	start := (p.Page - 1) * p.PerPage
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}
	return start, end
}
