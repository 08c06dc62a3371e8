// Package quality computes the 0–100 composite reliability score for a
// credential record. Scoring is a pure function over fixed weighted signals;
// create, import and sync paths all call it the same way.
package quality

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/credsec/internal/server/models"
)

// Factors are the independent signals feeding the score.
type Factors struct {
	HasPassword bool
	EmailValid  bool
	DomainValid bool
	TLDValid    bool
	// LineLength is the raw line length in characters; completeness points
	// grow linearly and saturate at 100.
	LineLength int
	Source     models.Source
	Verified   bool
	// AgeDays is the record age in days; 0 for newly created records.
	AgeDays int
}

const (
	pointsPassword    = 20
	pointsEmailValid  = 15
	pointsDomainValid = 15
	pointsTLDValid    = 10
	pointsVerified    = 10

	maxCompleteness = 10
	lineSaturation  = 100
)

var sourcePoints = map[models.Source]int{
	models.SourceIntelx: 15,
	models.SourceManual: 10,
	models.SourceImport: 5,
}

// Score sums the weighted signals and clamps the result to [0, 100].
// Increasing any single signal never decreases the score.
func Score(f Factors) int {
	score := 0

	if f.HasPassword {
		score += pointsPassword
	}
	if f.EmailValid {
		score += pointsEmailValid
	}
	if f.DomainValid {
		score += pointsDomainValid
	}
	if f.TLDValid {
		score += pointsTLDValid
	}

	length := f.LineLength
	if length < 0 {
		length = 0
	}
	if length > lineSaturation {
		length = lineSaturation
	}
	score += length * maxCompleteness / lineSaturation

	score += sourcePoints[f.Source]

	if f.Verified {
		score += pointsVerified
	}

	switch {
	case f.AgeDays < 30:
		score += 5
	case f.AgeDays < 90:
		score += 3
	case f.AgeDays < 180:
		score += 1
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

var (
	domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9.-]*[a-z0-9])?$`)
	tldPattern    = regexp.MustCompile(`^[a-z]{2,}$`)
)

// ValidEmail reports whether s parses as an address and carries a dotted
// domain part.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at >= 0 && strings.Contains(s[at+1:], ".")
}

// ValidDomain reports whether s looks like a domain label chain.
func ValidDomain(s string) bool {
	return domainPattern.MatchString(strings.ToLower(s))
}

// ValidTLD reports whether s looks like a top-level-domain label.
func ValidTLD(s string) bool {
	return tldPattern.MatchString(strings.ToLower(s))
}
