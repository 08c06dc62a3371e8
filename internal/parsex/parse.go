// Package parsex turns raw harvested text lines into structured credentials.
// The formats in the wild are messy; parsing is best-effort and lines that
// match no known shape are discarded rather than treated as errors.
package parsex

import (
	"regexp"
	"strings"
)

// Credential is one parsed line. Domain holds the label chain without the
// TLD ("example" for user@example.com); FullDomain joins the two back
// together, which is how Domain nodes are named in the graph.
type Credential struct {
	Email    string
	Password string
	Line     string
	Domain   string
	TLD      string
}

// FullDomain returns the complete domain name, e.g. "example.com".
func (c *Credential) FullDomain() string {
	if c.Domain == "" {
		return c.TLD
	}
	return c.Domain + "." + c.TLD
}

var emailSanitizer = regexp.MustCompile(`[^a-zA-Z0-9@._+-]`)

// ParseLine extracts a credential from one raw line. It understands two
// shapes:
//
//	email:password        (colon-separated, the common dump format)
//	col1|col2|...         (pipe- or tab-delimited columns)
//
// For delimited rows the first column containing '@' is the email and the
// column right after it is the password when present (best-effort for rows
// with more than two columns). Lines matching neither shape yield ok=false.
func ParseLine(line string) (*Credential, bool) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return nil, false
	}

	var email, password string

	switch {
	case strings.Contains(raw, "@") && strings.Contains(raw, ":"):
		email, password, _ = strings.Cut(raw, ":")
	case strings.ContainsAny(raw, "|\t"):
		sep := "|"
		if !strings.Contains(raw, sep) {
			sep = "\t"
		}
		email, password = splitColumns(raw, sep)
	case strings.Contains(raw, "@"):
		email = raw
	default:
		return nil, false
	}

	email = emailSanitizer.ReplaceAllString(strings.TrimSpace(email), "")
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return nil, false
	}

	cred := &Credential{
		Email:    strings.ToLower(email),
		Password: strings.TrimSpace(password),
		Line:     raw,
	}
	cred.Domain, cred.TLD = DomainParts(cred.Email)
	return cred, true
}

func splitColumns(raw, sep string) (string, string) {
	cols := strings.Split(raw, sep)

	emailIdx := -1
	for i, col := range cols {
		if strings.Contains(col, "@") {
			emailIdx = i
			break
		}
	}
	if emailIdx == -1 {
		return "", ""
	}

	email := cols[emailIdx]

	// Prefer the column right after the email; otherwise fall back to the
	// first remaining column.
	for _, i := range []int{emailIdx + 1, 0} {
		if i < len(cols) && i != emailIdx && strings.TrimSpace(cols[i]) != "" {
			return email, cols[i]
		}
	}
	return email, ""
}

// DomainParts splits the domain part of an email into the label chain and
// the TLD: "user@mail.example.com" yields ("mail.example", "com"). An email
// without a dotted domain defaults the TLD to "com".
func DomainParts(email string) (string, string) {
	host := email
	if at := strings.LastIndex(email, "@"); at >= 0 {
		host = email[at+1:]
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	segments := strings.Split(host, ".")
	if len(segments) < 2 {
		return host, "com"
	}

	tld := segments[len(segments)-1]
	domain := strings.Join(segments[:len(segments)-1], ".")
	return domain, tld
}
