package parsex

import "testing"

func TestParseLine_ColonFormat(t *testing.T) {
	cred, ok := ParseLine("user@example.com:Secret123")
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred.Email != "user@example.com" {
		t.Fatalf("email = %q", cred.Email)
	}
	if cred.Password != "Secret123" {
		t.Fatalf("password = %q", cred.Password)
	}
	if cred.Domain != "example" || cred.TLD != "com" {
		t.Fatalf("domain/tld = %q/%q, want example/com", cred.Domain, cred.TLD)
	}
	if cred.FullDomain() != "example.com" {
		t.Fatalf("full domain = %q", cred.FullDomain())
	}
}

func TestParseLine_NoMatch(t *testing.T) {
	for _, line := range []string{
		"no-at-symbol-here",
		"",
		"   ",
		"just|columns|without|email",
	} {
		if cred, ok := ParseLine(line); ok {
			t.Fatalf("ParseLine(%q) unexpectedly yielded %+v", line, cred)
		}
	}
}

func TestParseLine_PipeDelimited(t *testing.T) {
	cred, ok := ParseLine("someuser|user@example.org|hunter2")
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred.Email != "user@example.org" {
		t.Fatalf("email = %q", cred.Email)
	}
	if cred.Password != "hunter2" {
		t.Fatalf("password = %q, want the column after the email", cred.Password)
	}
}

func TestParseLine_TabDelimited(t *testing.T) {
	cred, ok := ParseLine("user@example.com\tpassw0rd")
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred.Email != "user@example.com" || cred.Password != "passw0rd" {
		t.Fatalf("got %q / %q", cred.Email, cred.Password)
	}
}

func TestParseLine_EmailAtEndOfColumns(t *testing.T) {
	cred, ok := ParseLine("sometoken|user@example.com")
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred.Email != "user@example.com" {
		t.Fatalf("email = %q", cred.Email)
	}
	if cred.Password != "sometoken" {
		t.Fatalf("password = %q, want best-effort first other column", cred.Password)
	}
}

func TestParseLine_EmailOnly(t *testing.T) {
	cred, ok := ParseLine("user@example.com")
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred.Password != "" {
		t.Fatalf("password = %q, want empty", cred.Password)
	}
}

func TestParseLine_SanitizesAndLowercases(t *testing.T) {
	cred, ok := ParseLine("  User@Example.COM:pw  ")
	if !ok {
		t.Fatal("expected a credential")
	}
	if cred.Email != "user@example.com" {
		t.Fatalf("email = %q", cred.Email)
	}
}

func TestDomainParts(t *testing.T) {
	cases := []struct {
		email  string
		domain string
		tld    string
	}{
		{"user@example.com", "example", "com"},
		{"user@mail.example.co.uk", "mail.example.co", "uk"},
		{"user@localhost", "localhost", "com"},
	}

	for _, tc := range cases {
		domain, tld := DomainParts(tc.email)
		if domain != tc.domain || tld != tc.tld {
			t.Fatalf("DomainParts(%q) = %q/%q, want %q/%q", tc.email, domain, tld, tc.domain, tc.tld)
		}
	}
}
